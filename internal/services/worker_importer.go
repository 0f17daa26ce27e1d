package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"workers-service/config"
	"workers-service/internal/dto"
	"workers-service/internal/entities"
	"workers-service/internal/events"
	"workers-service/internal/repositories"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/eventbus"
	"workers-service/pkg/utils"
	"workers-service/pkg/validation"
)

// importColumn - заголовок колонки в первой строке листа.
type importColumn string

const (
	colFirstName  importColumn = "first_name"
	colMiddleName importColumn = "middle_name"
	colLastName   importColumn = "last_name"
	colEmail      importColumn = "email"
	colPosition   importColumn = "position"
	colIsActive   importColumn = "is_active"
)

var importColumns = []importColumn{colFirstName, colMiddleName, colLastName, colEmail, colPosition, colIsActive}

const missingRequiredMessage = "отсутствуют обязательные поля"

// importRow - одна строка листа после разбора по заголовкам.
type importRow struct {
	FirstName  string `json:"first_name" validate:"required,not_blank,max=150"`
	MiddleName string `json:"middle_name" validate:"max=150"`
	LastName   string `json:"last_name" validate:"required,not_blank,max=150"`
	Email      string `json:"email" validate:"required,custom_email,max=254"`
	Position   string `json:"position" validate:"required,not_blank,max=200"`
	IsActive   string `json:"is_active"`
}

func (r importRow) hasRequired() bool {
	return r.FirstName != "" && r.LastName != "" && r.Email != "" && r.Position != ""
}

// ImportUpload - загруженный файл вместе с метаданными multipart.
type ImportUpload struct {
	FileName string
	Size     int64
	File     io.ReadSeeker
}

type WorkerImportServiceInterface interface {
	ImportWorkers(ctx context.Context, upload ImportUpload) (*dto.ImportReportDTO, error)
}

type WorkerImportService struct {
	workerRepo repositories.WorkerRepositoryInterface
	validate   *validator.Validate
	bus        eventbus.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewWorkerImportService(
	workerRepo repositories.WorkerRepositoryInterface,
	validate *validator.Validate,
	bus eventbus.Publisher,
	logger *zap.Logger,
) *WorkerImportService {
	return &WorkerImportService{
		workerRepo: workerRepo,
		validate:   validate,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
	}
}

// ImportWorkers читает первый лист книги и создаёт сотрудника на каждую строку.
// Ошибки строк копятся в отчёте; ошибка возвращается, только если не удалось прочитать сам файл.
// Начатый импорт доходит до последней строки: уже вставленные строки не откатываются.
func (s *WorkerImportService) ImportWorkers(ctx context.Context, upload ImportUpload) (*dto.ImportReportDTO, error) {
	if upload.File == nil {
		return nil, apperrors.ErrImportFileMissing
	}

	runID := uuid.NewString()
	logger := utils.LoggerWithRequest(ctx, s.logger).With(zap.String("run_id", runID), zap.String("file", upload.FileName))

	rows, err := s.readRows(upload)
	if err != nil {
		logger.Warn("Не удалось прочитать файл импорта", zap.Error(err))
		return nil, err
	}

	report := &dto.ImportReportDTO{Errors: make([]string, 0)}
	if len(rows) == 0 {
		return report, nil
	}

	principal := utils.GetPrincipalFromCtx(ctx)
	header := buildHeaderIndex(rows[0])

	for i := 1; i < len(rows); i++ {
		rowNum := i + 1
		row := extractImportRow(rows[i], header)

		if !row.hasRequired() {
			report.Errors = append(report.Errors, fmt.Sprintf("Строка %d: %s", rowNum, missingRequiredMessage))
			continue
		}

		if err := s.importRow(ctx, row, principal); err != nil {
			logger.Debug("Строка импорта отклонена", zap.Int("row", rowNum), zap.Error(err))
			report.Errors = append(report.Errors, fmt.Sprintf("Строка %d: Ошибка: %s", rowNum, rowErrorMessage(err)))
			continue
		}
		report.Created++
	}

	logger.Info("Импорт сотрудников завершён",
		zap.Int("created", report.Created),
		zap.Int("failed", len(report.Errors)),
	)

	event := events.WorkersImportedEvent{
		RunID:     runID,
		FileName:  upload.FileName,
		Created:   report.Created,
		Failed:    len(report.Errors),
		ActorName: principal.String(),
		At:        s.now(),
	}
	if principal != nil {
		event.ActorID = &principal.UserID
	}
	s.bus.Publish(ctx, event)

	return report, nil
}

// readRows проверяет файл и возвращает строки первого листа целиком в памяти.
func (s *WorkerImportService) readRows(upload ImportUpload) ([][]string, error) {
	if err := validation.ValidateFile(upload.Size, upload.File, config.WorkersImportContext); err != nil {
		return nil, &apperrors.ImportParseError{Err: err}
	}

	data, err := io.ReadAll(upload.File)
	if err != nil {
		return nil, &apperrors.ImportParseError{Err: err}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &apperrors.ImportParseError{Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &apperrors.ImportParseError{Err: errors.New("в книге нет листов")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &apperrors.ImportParseError{Err: err}
	}
	return rows, nil
}

func (s *WorkerImportService) importRow(ctx context.Context, row importRow, principal *dto.Principal) error {
	if err := s.validate.Struct(row); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return utils.ValidationErrorsToFields(validationErrors)
		}
		return err
	}

	now := s.now()
	worker := entities.Worker{
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Position:  row.Position,
		IsActive:  parseImportBool(row.IsActive),
		HiredDate: dateOnly(now),
	}
	if row.MiddleName != "" {
		worker.MiddleName = null.StringFrom(row.MiddleName)
	}
	if principal != nil {
		worker.CreatedBy = &principal.UserID
	}
	worker.CreatedAt = now
	worker.UpdatedAt = now

	_, err := s.workerRepo.Create(ctx, nil, worker)
	return err
}

// buildHeaderIndex сопоставляет известным колонкам их позицию; неизвестные заголовки игнорируются.
func buildHeaderIndex(header []string) map[importColumn]int {
	index := make(map[importColumn]int, len(importColumns))
	for i, name := range header {
		col := importColumn(strings.TrimSpace(name))
		for _, known := range importColumns {
			if col == known {
				if _, seen := index[col]; !seen {
					index[col] = i
				}
				break
			}
		}
	}
	return index
}

func extractImportRow(cells []string, header map[importColumn]int) importRow {
	get := func(col importColumn) string {
		idx, ok := header[col]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	return importRow{
		FirstName:  get(colFirstName),
		MiddleName: get(colMiddleName),
		LastName:   get(colLastName),
		Email:      get(colEmail),
		Position:   get(colPosition),
		IsActive:   get(colIsActive),
	}
}

// parseImportBool: пустая ячейка - активен; false/0/no/нет/ложь - неактивен; остальное - активен.
func parseImportBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false", "0", "no", "нет", "ложь":
		return false
	}
	return true
}

func rowErrorMessage(err error) string {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return err.Error()
}
