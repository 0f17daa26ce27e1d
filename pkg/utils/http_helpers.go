package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workers-service/internal/dto"
	apperrors "workers-service/pkg/errors"
)

type DetailResponse struct {
	Detail string `json:"detail"`
}

const internalErrorMessage = "Внутренняя ошибка сервера"

// sentinelStatus - коды для ошибок, которые сервисы возвращают без обёртки в HttpError.
var sentinelStatus = []struct {
	err  error
	code int
}{
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrInvalidPage, http.StatusNotFound},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrUserInactive, http.StatusUnauthorized},
	{apperrors.ErrInvalidToken, http.StatusUnauthorized},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrTokenNotYetValid, http.StatusUnauthorized},
	{apperrors.ErrTokenIsNotAccess, http.StatusUnauthorized},
	{apperrors.ErrInvalidSigningMethod, http.StatusUnauthorized},
	{apperrors.ErrInvalidAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrBadRequest, http.StatusBadRequest},
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	logger = LoggerWithRequest(c.Request().Context(), logger)

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			fields := []zap.Field{
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			}
			if httpErr.Code >= http.StatusInternalServerError {
				logger.Error("HTTP Error", fields...)
			} else {
				logger.Warn("HTTP Error", fields...)
			}
		}

		if httpErr.Details != nil {
			return c.JSON(httpErr.Code, httpErr.Details)
		}
		return c.JSON(httpErr.Code, DetailResponse{Detail: httpErr.Message})
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, validationErr.Fields)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return c.JSON(http.StatusBadRequest, ValidationErrorsToFields(validationErrors).Fields)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return c.JSON(echoErr.Code, DetailResponse{Detail: fmt.Sprint(echoErr.Message)})
	}

	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return c.JSON(s.code, DetailResponse{Detail: s.err.Error()})
		}
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, DetailResponse{Detail: internalErrorMessage})
}

// ValidationErrorsToFields переводит ошибки валидатора в ответ вида {"поле": ["сообщение"]}.
func ValidationErrorsToFields(errs validator.ValidationErrors) *apperrors.ValidationError {
	result := &apperrors.ValidationError{}
	for _, e := range errs {
		result.Add(e.Field(), validationMessage(e))
	}
	return result
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Обязательное поле."
	case "not_blank":
		return "Это поле не может быть пустым."
	case "custom_email", "email":
		return "Введите правильный адрес электронной почты."
	case "max":
		return fmt.Sprintf("Убедитесь, что это значение содержит не более %s символов.", e.Param())
	}
	return fmt.Sprintf("Значение не прошло проверку '%s'.", e.Tag())
}

// ParseIDParam читает :id из пути. Нечисловой id считается несуществующим.
func ParseIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.ErrNotFound
	}
	return id, nil
}

// ReadSentFields определяет, какие поля реально пришли в теле запроса, и возвращает тело обратно в запрос для Bind.
// nulls - поля, переданные явным JSON null.
func ReadSentFields(c echo.Context) (sent dto.FieldSet, nulls dto.FieldSet, err error) {
	sent = dto.FieldSet{}
	nulls = dto.FieldSet{}

	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		body, readErr := io.ReadAll(req.Body)
		if readErr != nil {
			return nil, nil, apperrors.NewHttpError(http.StatusBadRequest, "не удалось прочитать тело запроса", readErr, nil)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		if len(bytes.TrimSpace(body)) == 0 {
			return sent, nulls, nil
		}

		var raw map[string]json.RawMessage
		if jsonErr := json.Unmarshal(body, &raw); jsonErr != nil {
			return nil, nil, apperrors.NewHttpError(http.StatusBadRequest, "JSON parse error - "+jsonErr.Error(), jsonErr, nil)
		}
		for key, value := range raw {
			sent[key] = true
			if string(bytes.TrimSpace(value)) == "null" {
				nulls[key] = true
			}
		}
		return sent, nulls, nil
	}

	form, formErr := c.FormParams()
	if formErr != nil {
		return sent, nulls, nil
	}
	for key := range form {
		sent[key] = true
	}
	return sent, nulls, nil
}
