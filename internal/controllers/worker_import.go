package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workers-service/internal/dto"
	"workers-service/internal/services"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/utils"
)

const importHint = "Загрузите Excel файл для импорта сотрудников"

type WorkerImportController struct {
	importService services.WorkerImportServiceInterface
	logger        *zap.Logger
}

func NewWorkerImportController(service services.WorkerImportServiceInterface, logger *zap.Logger) *WorkerImportController {
	return &WorkerImportController{
		importService: service,
		logger:        logger,
	}
}

func (c *WorkerImportController) ImportHint(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dto.MessageDTO{Message: importHint})
}

func (c *WorkerImportController) ImportWorkers(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		c.logger.Warn("ImportWorkers: файл не передан", zap.Error(err))
		return c.importError(ctx, apperrors.ErrImportFileMissing.Error(), err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.importError(ctx, apperrors.ErrImportFileMissing.Error(), err)
	}
	defer src.Close()

	report, err := c.importService.ImportWorkers(ctx.Request().Context(), services.ImportUpload{
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		File:     src,
	})
	if err != nil {
		var parseErr *apperrors.ImportParseError
		switch {
		case errors.As(err, &parseErr):
			return c.importError(ctx, parseErr.Error(), err)
		case errors.Is(err, apperrors.ErrImportFileMissing):
			return c.importError(ctx, apperrors.ErrImportFileMissing.Error(), err)
		}
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusCreated, report)
}

func (c *WorkerImportController) importError(ctx echo.Context, message string, cause error) error {
	httpErr := apperrors.NewHttpError(http.StatusBadRequest, message, cause, nil)
	httpErr.Details = dto.ImportErrorDTO{Error: message}
	return utils.ErrorResponse(ctx, httpErr, c.logger)
}
