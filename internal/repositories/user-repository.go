package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"workers-service/internal/entities"
	apperrors "workers-service/pkg/errors"
)

const (
	userTable        = "users"
	userSelectFields = "id, username, is_staff, is_active, created_at"
)

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	UpsertUser(ctx context.Context, user entities.User) (*entities.User, error)
}

type UserRepository struct {
	storage DB
	logger  *zap.Logger
}

func NewUserRepository(storage DB, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(&user.ID, &user.Username, &user.IsStaff, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования users: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(userSelectFields).
		From(userTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для поиска пользователя: %w", err)
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

// UpsertUser создаёт пользователя или обновляет флаги существующего с тем же username.
func (r *UserRepository) UpsertUser(ctx context.Context, user entities.User) (*entities.User, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert(userTable).
		Columns("username", "is_staff", "is_active").
		Values(user.Username, user.IsStaff, user.IsActive).
		Suffix("ON CONFLICT (username) DO UPDATE SET is_staff = EXCLUDED.is_staff, is_active = EXCLUDED.is_active RETURNING " + userSelectFields).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для сохранения пользователя: %w", err)
	}

	r.logger.Debug("Сохранение пользователя", zap.String("username", user.Username), zap.Bool("is_staff", user.IsStaff))
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}
