package services

import (
	"context"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"workers-service/internal/dto"
	"workers-service/internal/entities"
	"workers-service/internal/events"
	"workers-service/internal/repositories"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/eventbus"
	"workers-service/pkg/types"
	"workers-service/pkg/utils"
)

type WorkerServiceInterface interface {
	GetWorkers(ctx context.Context, filter dto.WorkerListFilter) ([]dto.WorkerListItemDTO, uint64, error)
	FindWorker(ctx context.Context, id uint64) (*dto.WorkerDTO, error)
	CreateWorker(ctx context.Context, payload dto.CreateWorkerDTO) (*dto.WorkerDTO, error)
	UpdateWorker(ctx context.Context, id uint64, payload dto.UpdateWorkerDTO, sent dto.FieldSet) (*dto.WorkerDTO, error)
	ReplaceWorker(ctx context.Context, id uint64, payload dto.CreateWorkerDTO, sent dto.FieldSet) (*dto.WorkerDTO, error)
	DeleteWorker(ctx context.Context, id uint64) error
}

type WorkerService struct {
	workerRepo repositories.WorkerRepositoryInterface
	txManager  repositories.TxManagerInterface
	bus        eventbus.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewWorkerService(
	workerRepo repositories.WorkerRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus eventbus.Publisher,
	logger *zap.Logger,
) *WorkerService {
	return &WorkerService{
		workerRepo: workerRepo,
		txManager:  txManager,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *WorkerService) GetWorkers(ctx context.Context, filter dto.WorkerListFilter) ([]dto.WorkerListItemDTO, uint64, error) {
	query := types.Filter{
		Search: filter.Search,
		Filter: make(map[string]interface{}),
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Page:   filter.Page,
	}
	if filter.IsActive != nil {
		query.Filter["is_active"] = *filter.IsActive
	}
	if filter.Position != nil {
		query.Filter["position"] = *filter.Position
	}

	workers, total, err := s.workerRepo.GetAll(ctx, query)
	if err != nil {
		s.logger.Error("Ошибка при получении списка сотрудников", zap.Error(err))
		return nil, 0, err
	}

	// Страница за концом списка; первая страница существует всегда
	if filter.Page > 1 && uint64(filter.Offset) >= total {
		return nil, 0, apperrors.ErrInvalidPage
	}

	result := make([]dto.WorkerListItemDTO, 0, len(workers))
	for _, w := range workers {
		result = append(result, dto.NewWorkerListItemDTO(w))
	}
	return result, total, nil
}

func (s *WorkerService) FindWorker(ctx context.Context, id uint64) (*dto.WorkerDTO, error) {
	worker, err := s.workerRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return dto.NewWorkerDTO(worker), nil
}

func (s *WorkerService) CreateWorker(ctx context.Context, payload dto.CreateWorkerDTO) (*dto.WorkerDTO, error) {
	principal := utils.GetPrincipalFromCtx(ctx)
	now := s.now()

	worker := entities.Worker{
		FirstName:  strings.TrimSpace(payload.FirstName),
		MiddleName: trimNullString(payload.MiddleName),
		LastName:   strings.TrimSpace(payload.LastName),
		Email:      strings.TrimSpace(payload.Email),
		Position:   strings.TrimSpace(payload.Position),
		IsActive:   true,
		HiredDate:  dateOnly(now),
	}
	if payload.IsActive != nil {
		worker.IsActive = *payload.IsActive
	}
	worker.CreatedAt = now
	worker.UpdatedAt = now
	if principal != nil {
		worker.CreatedBy = &principal.UserID
		worker.CreatedByName = &principal.Username
	}

	id, err := s.workerRepo.Create(ctx, nil, worker)
	if err != nil {
		s.logger.Warn("Ошибка при создании сотрудника", zap.String("email", worker.Email), zap.Error(err))
		return nil, err
	}
	worker.ID = id

	s.logger.Info("Сотрудник успешно создан", zap.Uint64("id", id), zap.String("by", principal.String()))
	s.bus.Publish(ctx, events.WorkerCreatedEvent{
		WorkerID:  id,
		Email:     worker.Email,
		ActorID:   worker.CreatedBy,
		ActorName: principal.String(),
		At:        now,
	})

	return dto.NewWorkerDTO(&worker), nil
}

// UpdateWorker меняет только присланные поля; строка блокируется на время транзакции.
func (s *WorkerService) UpdateWorker(ctx context.Context, id uint64, payload dto.UpdateWorkerDTO, sent dto.FieldSet) (*dto.WorkerDTO, error) {
	var updated *entities.Worker

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.workerRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		merged := applyWorkerChanges(*current, payload, sent)
		merged.UpdatedAt = s.now()

		if err := s.workerRepo.Update(ctx, tx, merged); err != nil {
			return err
		}
		updated = &merged
		return nil
	})
	if err != nil {
		s.logger.Warn("Ошибка при обновлении сотрудника", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Сотрудник обновлён", zap.Uint64("id", id), zap.Strings("fields", sentKeys(sent)))
	return dto.NewWorkerDTO(updated), nil
}

// ReplaceWorker - полная замена: обязательные поля присланы всегда, необязательные берутся, если пришли.
func (s *WorkerService) ReplaceWorker(ctx context.Context, id uint64, payload dto.CreateWorkerDTO, sent dto.FieldSet) (*dto.WorkerDTO, error) {
	fields := dto.FieldSet{"first_name": true, "last_name": true, "email": true, "position": true}
	for k := range sent {
		fields[k] = true
	}

	return s.UpdateWorker(ctx, id, dto.UpdateWorkerDTO{
		FirstName:  &payload.FirstName,
		MiddleName: payload.MiddleName,
		LastName:   &payload.LastName,
		Email:      &payload.Email,
		Position:   &payload.Position,
		IsActive:   payload.IsActive,
	}, fields)
}

func (s *WorkerService) DeleteWorker(ctx context.Context, id uint64) error {
	if err := s.workerRepo.SoftDelete(ctx, nil, id); err != nil {
		return err
	}
	principal := utils.GetPrincipalFromCtx(ctx)
	s.logger.Info("Сотрудник помечен удалённым", zap.Uint64("id", id), zap.String("by", principal.String()))
	return nil
}

func applyWorkerChanges(w entities.Worker, payload dto.UpdateWorkerDTO, sent dto.FieldSet) entities.Worker {
	if sent.Has("first_name") && payload.FirstName != nil {
		w.FirstName = strings.TrimSpace(*payload.FirstName)
	}
	if sent.Has("middle_name") {
		w.MiddleName = trimNullString(payload.MiddleName)
	}
	if sent.Has("last_name") && payload.LastName != nil {
		w.LastName = strings.TrimSpace(*payload.LastName)
	}
	if sent.Has("email") && payload.Email != nil {
		w.Email = strings.TrimSpace(*payload.Email)
	}
	if sent.Has("position") && payload.Position != nil {
		w.Position = strings.TrimSpace(*payload.Position)
	}
	if sent.Has("is_active") && payload.IsActive != nil {
		w.IsActive = *payload.IsActive
	}
	return w
}

func trimNullString(s null.String) null.String {
	if !s.Valid {
		return s
	}
	return null.StringFrom(strings.TrimSpace(s.String))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sentKeys(sent dto.FieldSet) []string {
	keys := make([]string, 0, len(sent))
	for k := range sent {
		keys = append(keys, k)
	}
	return keys
}
