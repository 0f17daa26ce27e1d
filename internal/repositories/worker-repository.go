package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"workers-service/internal/entities"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/types"
)

const (
	workerTable       = "workers"
	workerFromJoin    = "workers w LEFT JOIN users u ON u.id = w.created_by"
	workerEmailUnique = "workers_email_key"
	uniqueViolation   = "23505"

	DuplicateEmailMessage = "Сотрудник с таким email уже существует."
)

var workerSelectFields = []string{
	"w.id", "w.first_name", "w.middle_name", "w.last_name", "w.email", "w.position",
	"w.is_active", "w.hired_date", "w.created_by", "u.username", "w.is_deleted",
	"w.created_at", "w.updated_at",
}

// allowedWorkerFilters - БЕЛЫЙ СПИСОК для фильтрации (защита от SQL Injection)
var allowedWorkerFilters = map[string]string{
	"is_active": "w.is_active",
	"position":  "w.position",
}

var workerSearchColumns = []string{"w.first_name", "w.middle_name", "w.last_name", "w.email", "w.position"}

type WorkerRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]entities.Worker, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Worker, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Worker, error)
	Create(ctx context.Context, tx pgx.Tx, w entities.Worker) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, w entities.Worker) error
	SoftDelete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type WorkerRepository struct {
	storage DB
	logger  *zap.Logger
}

func NewWorkerRepository(storage DB, logger *zap.Logger) WorkerRepositoryInterface {
	return &WorkerRepository{storage: storage, logger: logger}
}

// getQuerier - возвращает транзакцию или пул соединений
func (r *WorkerRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

// scanWorker - сканирование одной строки в сущность
func scanWorker(row pgx.Row) (*entities.Worker, error) {
	var w entities.Worker
	var middleName, createdByName sql.NullString
	var createdBy sql.NullInt64

	err := row.Scan(
		&w.ID, &w.FirstName, &middleName, &w.LastName, &w.Email, &w.Position,
		&w.IsActive, &w.HiredDate, &createdBy, &createdByName, &w.IsDeleted,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования workers: %w", err)
	}

	w.MiddleName = null.NewString(middleName.String, middleName.Valid)
	if createdBy.Valid {
		id := uint64(createdBy.Int64)
		w.CreatedBy = &id
	}
	if createdByName.Valid {
		w.CreatedByName = &createdByName.String
	}

	return &w, nil
}

// translateWorkerPgError - нарушение уникальности email превращается в ошибку валидации поля.
// Для прочих ошибок возвращает nil.
func translateWorkerPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == "" || pgErr.ConstraintName == workerEmailUnique {
			return apperrors.NewValidationError("email", DuplicateEmailMessage)
		}
		return apperrors.ErrConflict
	}
	return nil
}

func (r *WorkerRepository) applyFilter(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	builder = builder.Where(sq.Eq{"w.is_deleted": false})

	for key, value := range filter.Filter {
		column, ok := allowedWorkerFilters[key]
		if !ok {
			continue
		}
		builder = builder.Where(sq.Eq{column: value})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions := make(sq.Or, 0, len(workerSearchColumns))
		for _, col := range workerSearchColumns {
			conditions = append(conditions, sq.ILike{col: pattern})
		}
		builder = builder.Where(conditions)
	}

	return builder
}

func (r *WorkerRepository) GetAll(ctx context.Context, filter types.Filter) ([]entities.Worker, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countQuery, countArgs, err := r.applyFilter(psql.Select("COUNT(w.id)").From(workerFromJoin), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL для подсчета сотрудников: %w", err)
	}
	r.logger.Debug("Выполнение SQL-запроса на подсчет сотрудников", zap.String("query", countQuery), zap.Any("args", countArgs))

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета сотрудников: %w", err)
	}
	if total == 0 {
		return []entities.Worker{}, 0, nil
	}

	builder := r.applyFilter(psql.Select(workerSelectFields...).From(workerFromJoin), filter).
		OrderBy("w.created_at ASC", "w.id ASC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL для списка сотрудников: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка сотрудников: %w", err)
	}
	defer rows.Close()

	workers := make([]entities.Worker, 0)
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, 0, err
		}
		workers = append(workers, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации по сотрудникам: %w", err)
	}

	return workers, total, nil
}

func (r *WorkerRepository) findOne(ctx context.Context, querier Querier, id uint64, forUpdate bool) (*entities.Worker, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(workerSelectFields...).
		From(workerFromJoin).
		Where(sq.Eq{"w.id": id, "w.is_deleted": false})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE OF w")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для поиска сотрудника: %w", err)
	}
	return scanWorker(querier.QueryRow(ctx, query, args...))
}

func (r *WorkerRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Worker, error) {
	return r.findOne(ctx, r.getQuerier(tx), id, false)
}

// FindByIDForUpdate блокирует строку до конца транзакции.
func (r *WorkerRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Worker, error) {
	return r.findOne(ctx, r.getQuerier(tx), id, true)
}

func (r *WorkerRepository) Create(ctx context.Context, tx pgx.Tx, w entities.Worker) (uint64, error) {
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = now
	}

	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert(workerTable).
		Columns("first_name", "middle_name", "last_name", "email", "position", "is_active",
			"hired_date", "created_by", "is_deleted", "created_at", "updated_at").
		Values(w.FirstName, w.MiddleName.Ptr(), w.LastName, w.Email, w.Position, w.IsActive,
			w.HiredDate, w.CreatedBy, false, w.CreatedAt, w.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL для создания сотрудника: %w", err)
	}

	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if translated := translateWorkerPgError(err); translated != nil {
			return 0, translated
		}
		return 0, fmt.Errorf("ошибка создания сотрудника: %w", err)
	}

	return id, nil
}

// Update пишет только изменяемые клиентом поля; hired_date и created_by не трогаются.
func (r *WorkerRepository) Update(ctx context.Context, tx pgx.Tx, w entities.Worker) error {
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = time.Now()
	}

	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(workerTable).
		Set("first_name", w.FirstName).
		Set("middle_name", w.MiddleName.Ptr()).
		Set("last_name", w.LastName).
		Set("email", w.Email).
		Set("position", w.Position).
		Set("is_active", w.IsActive).
		Set("updated_at", w.UpdatedAt).
		Where(sq.Eq{"id": w.ID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для обновления сотрудника: %w", err)
	}

	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		if translated := translateWorkerPgError(err); translated != nil {
			return translated
		}
		return fmt.Errorf("ошибка обновления сотрудника: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SoftDelete помечает запись удалённой. Повторное удаление даёт ErrNotFound.
func (r *WorkerRepository) SoftDelete(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(workerTable).
		Set("is_deleted", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для удаления сотрудника: %w", err)
	}

	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления сотрудника: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
