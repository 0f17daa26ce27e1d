package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"workers-service/internal/controllers"
	"workers-service/internal/dto"
	"workers-service/internal/services"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/middleware"
	"workers-service/pkg/service"
	"workers-service/pkg/utils"
	"workers-service/pkg/validation"
)

const (
	testSecret  = "test-secret"
	staffUserID = 1
	plainUserID = 2
)

// --- фейки сервисов ---

type stubWorkerService struct {
	lastFilter dto.WorkerListFilter
	lastSent   dto.FieldSet
	lastPatch  dto.UpdateWorkerDTO
	createdBy  string
	deleted    []uint64
}

func (s *stubWorkerService) GetWorkers(ctx context.Context, filter dto.WorkerListFilter) ([]dto.WorkerListItemDTO, uint64, error) {
	s.lastFilter = filter
	return []dto.WorkerListItemDTO{{ID: 1, FirstName: "Иван", LastName: "Петров", Position: "Инженер", IsActive: true}}, 1, nil
}

func (s *stubWorkerService) FindWorker(ctx context.Context, id uint64) (*dto.WorkerDTO, error) {
	if id != 1 {
		return nil, apperrors.ErrNotFound
	}
	return &dto.WorkerDTO{ID: 1, FirstName: "Иван", LastName: "Петров", Email: "ivan@example.com"}, nil
}

func (s *stubWorkerService) CreateWorker(ctx context.Context, payload dto.CreateWorkerDTO) (*dto.WorkerDTO, error) {
	s.createdBy = utils.GetPrincipalFromCtx(ctx).String()
	if payload.Email == "taken@example.com" {
		return nil, apperrors.NewValidationError("email", "Сотрудник с таким email уже существует.")
	}
	return &dto.WorkerDTO{ID: 7, FirstName: payload.FirstName, LastName: payload.LastName, Email: payload.Email, IsActive: true}, nil
}

func (s *stubWorkerService) UpdateWorker(ctx context.Context, id uint64, payload dto.UpdateWorkerDTO, sent dto.FieldSet) (*dto.WorkerDTO, error) {
	s.lastPatch = payload
	s.lastSent = sent
	return &dto.WorkerDTO{ID: id}, nil
}

func (s *stubWorkerService) ReplaceWorker(ctx context.Context, id uint64, payload dto.CreateWorkerDTO, sent dto.FieldSet) (*dto.WorkerDTO, error) {
	s.lastSent = sent
	return &dto.WorkerDTO{ID: id, FirstName: payload.FirstName}, nil
}

func (s *stubWorkerService) DeleteWorker(ctx context.Context, id uint64) error {
	for _, d := range s.deleted {
		if d == id {
			return apperrors.ErrNotFound
		}
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubImportService struct {
	received []byte
}

func (s *stubImportService) ImportWorkers(ctx context.Context, upload services.ImportUpload) (*dto.ImportReportDTO, error) {
	data, err := io.ReadAll(upload.File)
	if err != nil {
		return nil, err
	}
	s.received = data
	if string(data) == "broken" {
		return nil, &apperrors.ImportParseError{Err: apperrors.ErrBadRequest}
	}
	return &dto.ImportReportDTO{Created: 2, Errors: []string{"Строка 3: отсутствуют обязательные поля"}}, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, userID uint64) (*dto.Principal, error) {
	switch userID {
	case staffUserID:
		return &dto.Principal{UserID: staffUserID, Username: "admin", IsStaff: true, IsActive: true}, nil
	case plainUserID:
		return &dto.Principal{UserID: plainUserID, Username: "viewer", IsActive: true}, nil
	}
	return nil, apperrors.ErrNotFound
}

// --- сьют ---

type RouterTestSuite struct {
	suite.Suite
	e         *echo.Echo
	jwtSvc    service.JWTService
	workers   *stubWorkerService
	importSvc *stubImportService
}

func (s *RouterTestSuite) SetupTest() {
	logger := zap.NewNop()
	s.e = echo.New()
	s.e.Validator = validation.New()

	s.jwtSvc = service.NewJWTService(testSecret, time.Hour, logger)
	s.workers = &stubWorkerService{}
	s.importSvc = &stubImportService{}

	loggers := &Loggers{Main: logger, Auth: logger, Worker: logger, Import: logger}
	authMW := middleware.NewAuthMiddleware(s.jwtSvc, stubResolver{}, logger)
	mountAPI(s.e, authMW,
		controllers.NewWorkerController(s.workers, logger),
		controllers.NewWorkerImportController(s.importSvc, logger),
		loggers,
	)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) token(userID uint64) string {
	tok, err := s.jwtSvc.GenerateAccessToken(userID)
	s.Require().NoError(err)
	return "Bearer " + tok
}

func (s *RouterTestSuite) do(method, target, auth string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) doJSON(method, target, auth, body string) *httptest.ResponseRecorder {
	return s.do(method, target, auth, strings.NewReader(body), echo.MIMEApplicationJSON)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *RouterTestSuite) TestAnonymousCanList() {
	rec := s.do(http.MethodGet, "/api/workers?search=иван&is_active=true", "", nil, "")
	s.Equal(http.StatusOK, rec.Code)

	page := decode[map[string]interface{}](s.T(), rec)
	s.EqualValues(1, page["count"])
	s.Nil(page["next"])
	s.Nil(page["previous"])
	s.Len(page["results"], 1)

	s.Equal("иван", s.workers.lastFilter.Search)
	s.Require().NotNil(s.workers.lastFilter.IsActive)
	s.True(*s.workers.lastFilter.IsActive)
}

func (s *RouterTestSuite) TestTrailingSlashIsOptional() {
	rec := s.do(http.MethodGet, "/api/workers/", "", nil, "")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/workers/1/", "", nil, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestInvalidIsActiveFilter() {
	rec := s.do(http.MethodGet, "/api/workers?is_active=maybe", "", nil, "")
	s.Equal(http.StatusBadRequest, rec.Code)

	body := decode[map[string][]string](s.T(), rec)
	s.Contains(body, "is_active")
}

func (s *RouterTestSuite) TestDetailNotFound() {
	rec := s.do(http.MethodGet, "/api/workers/99", "", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/workers/abc", "", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "detail")
}

func (s *RouterTestSuite) TestAnonymousCannotWrite() {
	rec := s.doJSON(http.MethodPost, "/api/workers", "", `{"first_name":"A"}`)
	s.Equal(http.StatusForbidden, rec.Code)

	body := decode[map[string]string](s.T(), rec)
	s.Equal(apperrors.ErrForbidden.Error(), body["detail"])

	rec = s.do(http.MethodDelete, "/api/workers/1", "", nil, "")
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *RouterTestSuite) TestNonStaffCannotWrite() {
	rec := s.doJSON(http.MethodPatch, "/api/workers/1", s.token(plainUserID), `{"position":"X"}`)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *RouterTestSuite) TestInvalidTokenIsRejected() {
	rec := s.do(http.MethodGet, "/api/workers", "Bearer not-a-token", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/workers", "Token abc", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/workers", s.token(404), nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestStaffCreatesWorker() {
	rec := s.doJSON(http.MethodPost, "/api/workers", s.token(staffUserID),
		`{"first_name":"Иван","last_name":"Петров","email":"ivan@example.com","position":"Инженер"}`)
	s.Equal(http.StatusCreated, rec.Code)

	body := decode[dto.WorkerDTO](s.T(), rec)
	s.EqualValues(7, body.ID)
	s.Equal("admin", s.workers.createdBy)
}

func (s *RouterTestSuite) TestCreateValidationShape() {
	rec := s.doJSON(http.MethodPost, "/api/workers", s.token(staffUserID),
		`{"first_name":"","last_name":"Петров","email":"bad","position":"Инженер"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	body := decode[map[string][]string](s.T(), rec)
	s.Equal([]string{"Обязательное поле."}, body["first_name"])
	s.Contains(body, "email")
	s.NotContains(body, "last_name")
}

func (s *RouterTestSuite) TestCreateDuplicateEmail() {
	rec := s.doJSON(http.MethodPost, "/api/workers", s.token(staffUserID),
		`{"first_name":"Иван","last_name":"Петров","email":"taken@example.com","position":"Инженер"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	body := decode[map[string][]string](s.T(), rec)
	s.Equal([]string{"Сотрудник с таким email уже существует."}, body["email"])
}

func (s *RouterTestSuite) TestCreateRejectsNullForRequiredField() {
	rec := s.doJSON(http.MethodPost, "/api/workers", s.token(staffUserID),
		`{"first_name":null,"last_name":"Петров","email":"ivan@example.com","position":"Инженер"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	body := decode[map[string][]string](s.T(), rec)
	s.Equal([]string{"Это поле не может быть null."}, body["first_name"])
}

func (s *RouterTestSuite) TestMalformedJSON() {
	rec := s.doJSON(http.MethodPost, "/api/workers", s.token(staffUserID), `{"first_name":`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "detail")
}

func (s *RouterTestSuite) TestPatchPassesSentFields() {
	rec := s.doJSON(http.MethodPatch, "/api/workers/3", s.token(staffUserID), `{"position":"Лид","middle_name":null}`)
	s.Equal(http.StatusOK, rec.Code)

	s.True(s.workers.lastSent.Has("position"))
	s.True(s.workers.lastSent.Has("middle_name"))
	s.False(s.workers.lastSent.Has("email"))
	s.Require().NotNil(s.workers.lastPatch.Position)
	s.Equal("Лид", *s.workers.lastPatch.Position)
	s.Equal(null.String{}, s.workers.lastPatch.MiddleName)
}

func (s *RouterTestSuite) TestPutRequiresAllRequiredFields() {
	rec := s.doJSON(http.MethodPut, "/api/workers/3", s.token(staffUserID), `{"position":"Лид"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	body := decode[map[string][]string](s.T(), rec)
	s.Contains(body, "first_name")
	s.Contains(body, "email")
}

func (s *RouterTestSuite) TestDeleteTwice() {
	rec := s.do(http.MethodDelete, "/api/workers/5", s.token(staffUserID), nil, "")
	s.Equal(http.StatusNoContent, rec.Code)
	s.Empty(rec.Body.String())

	rec = s.do(http.MethodDelete, "/api/workers/5", s.token(staffUserID), nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterTestSuite) TestImportHint() {
	rec := s.do(http.MethodGet, "/api/workers/import", "", nil, "")
	s.Equal(http.StatusOK, rec.Code)

	body := decode[map[string]string](s.T(), rec)
	s.Equal("Загрузите Excel файл для импорта сотрудников", body["message"])
}

func multipartBody(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func (s *RouterTestSuite) TestImportUpload() {
	body, contentType := multipartBody(s.T(), "file", "workers.xlsx", []byte("payload"))
	rec := s.do(http.MethodPost, "/api/workers/import", s.token(staffUserID), body, contentType)
	s.Equal(http.StatusCreated, rec.Code)
	s.Equal("payload", string(s.importSvc.received))

	report := decode[map[string]interface{}](s.T(), rec)
	s.EqualValues(2, report["Создан"])
	s.Len(report["Ошибки"], 1)
}

func (s *RouterTestSuite) TestImportWithoutFile() {
	body, contentType := multipartBody(s.T(), "other", "workers.xlsx", []byte("payload"))
	rec := s.do(http.MethodPost, "/api/workers/import", s.token(staffUserID), body, contentType)
	s.Equal(http.StatusBadRequest, rec.Code)

	resp := decode[map[string]string](s.T(), rec)
	s.Equal(apperrors.ErrImportFileMissing.Error(), resp["Ошибка"])
}

func (s *RouterTestSuite) TestImportBrokenFile() {
	body, contentType := multipartBody(s.T(), "file", "workers.xlsx", []byte("broken"))
	rec := s.do(http.MethodPost, "/api/workers/import", s.token(staffUserID), body, contentType)
	s.Equal(http.StatusBadRequest, rec.Code)

	resp := decode[map[string]string](s.T(), rec)
	s.True(strings.HasPrefix(resp["Ошибка"], "Не удалось прочитать Excel файл"))
}

func (s *RouterTestSuite) TestImportRequiresStaff() {
	body, contentType := multipartBody(s.T(), "file", "workers.xlsx", []byte("payload"))
	rec := s.do(http.MethodPost, "/api/workers/import", "", body, contentType)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Nil(s.importSvc.received)
}

type pingStub struct{ err error }

func (p pingStub) Ping(ctx context.Context) error { return p.err }

func TestHealthRouter(t *testing.T) {
	e := echo.New()
	runHealthRouter(e, pingStub{}, zap.NewNop())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	e = echo.New()
	runHealthRouter(e, pingStub{err: apperrors.ErrInternalServer}, zap.NewNop())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
