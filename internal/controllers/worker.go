package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workers-service/internal/dto"
	"workers-service/internal/services"
	"workers-service/pkg/api"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/utils"
)

// nullableWorkerFields - поля, которым разрешён явный null.
var nullableWorkerFields = map[string]bool{"middle_name": true}

type WorkerController struct {
	workerService services.WorkerServiceInterface
	logger        *zap.Logger
}

func NewWorkerController(
	service services.WorkerServiceInterface,
	logger *zap.Logger,
) *WorkerController {
	return &WorkerController{
		workerService: service,
		logger:        logger,
	}
}

// ----- РАБОЧИЕ МЕТОДЫ КОНТРОЛЛЕРА -----

func (c *WorkerController) GetWorkers(ctx echo.Context) error {
	filter, err := utils.ParseWorkerFilter(ctx.Request().URL.Query())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, total, err := c.workerService.GetWorkers(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Warn("GetWorkers: ошибка при получении списка сотрудников", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessPage(ctx, res, total, filter.Page, filter.Limit)
}

func (c *WorkerController) FindWorker(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.workerService.FindWorker(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessOne(ctx, http.StatusOK, res)
}

func (c *WorkerController) CreateWorker(ctx echo.Context) error {
	_, nulls, err := utils.ReadSentFields(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := rejectNulls(nulls); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateWorkerDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Warn("CreateWorker: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := ctx.Validate(&payload); err != nil {
		c.logger.Debug("CreateWorker: ошибка валидации данных", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.workerService.CreateWorker(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessOne(ctx, http.StatusCreated, res)
}

// UpdateWorker - PATCH: меняются только присланные поля.
func (c *WorkerController) UpdateWorker(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	sent, nulls, err := utils.ReadSentFields(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := rejectNulls(nulls); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateWorkerDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Warn("UpdateWorker: ошибка привязки данных", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.workerService.UpdateWorker(ctx.Request().Context(), id, payload, sent)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessOne(ctx, http.StatusOK, res)
}

// ReplaceWorker - PUT: обязательные поля должны прийти все.
func (c *WorkerController) ReplaceWorker(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	sent, nulls, err := utils.ReadSentFields(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := rejectNulls(nulls); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateWorkerDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Warn("ReplaceWorker: ошибка привязки данных", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.workerService.ReplaceWorker(ctx.Request().Context(), id, payload, sent)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessOne(ctx, http.StatusOK, res)
}

func (c *WorkerController) DeleteWorker(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.workerService.DeleteWorker(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func rejectNulls(nulls dto.FieldSet) error {
	var validationErr *apperrors.ValidationError
	for field := range nulls {
		if nullableWorkerFields[field] {
			continue
		}
		if validationErr == nil {
			validationErr = &apperrors.ValidationError{}
		}
		validationErr.Add(field, "Это поле не может быть null.")
	}
	if validationErr != nil {
		return validationErr
	}
	return nil
}
