package repositories

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workers-service/internal/entities"
	apperrors "workers-service/pkg/errors"
)

func TestUserRepository_FindUserByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock, zap.NewNop())
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, username, is_staff, is_active, created_at FROM users WHERE id = \$1`).
		WithArgs(uint64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "is_staff", "is_active", "created_at"}).
			AddRow(uint64(1), "admin", true, true, now))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(uint64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "is_staff", "is_active", "created_at"}))

	user, err := repo.FindUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsStaff)

	_, err = repo.FindUserByID(context.Background(), 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpsertUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock, zap.NewNop())
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO users \(username,is_staff,is_active\) VALUES \(\$1,\$2,\$3\) ON CONFLICT \(username\) DO UPDATE`).
		WithArgs("manager", true, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "is_staff", "is_active", "created_at"}).
			AddRow(uint64(3), "manager", true, true, now))

	user, err := repo.UpsertUser(context.Background(), entities.User{Username: "manager", IsStaff: true, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
