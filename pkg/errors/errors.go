package errors

import (
	"fmt"
	"sort"
	"strings"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader   = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = fmt.Errorf("неверный формат заголовка авторизации")
	ErrUnauthorized      = fmt.Errorf("учётные данные не были предоставлены или недействительны")
	ErrForbidden         = fmt.Errorf("у вас недостаточно прав для выполнения данного действия")
	ErrUserInactive      = fmt.Errorf("пользователь неактивен или удалён")

	// Импорт
	ErrImportFileMissing = fmt.Errorf("файл не найден или не существует")
	ErrImportParse       = fmt.Errorf("не удалось прочитать Excel файл")

	// Общие
	ErrNotFound       = fmt.Errorf("не найдено")
	ErrInvalidPage    = fmt.Errorf("неправильная страница")
	ErrBadRequest     = fmt.Errorf("неверный запрос")
	ErrConflict       = fmt.Errorf("запись с такими уникальными параметрами уже существует")
	ErrInternalServer = fmt.Errorf("внутренняя ошибка сервера")
)

// HttpError несёт HTTP-код и сообщение для клиента; Err - техническая причина для логов.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, ctx map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: ctx}
}

// ValidationError - ошибки валидации по полям (ключ - json-имя поля).
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "ошибка валидации: " + strings.Join(parts, ", ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add дописывает сообщение к полю.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// ImportParseError - файл импорта не удалось принять или прочитать; строки не обрабатывались.
type ImportParseError struct {
	Err error
}

func (e *ImportParseError) Error() string {
	return "Не удалось прочитать Excel файл: " + e.Err.Error()
}

func (e *ImportParseError) Unwrap() error { return e.Err }

func (e *ImportParseError) Is(target error) bool { return target == ErrImportParse }
