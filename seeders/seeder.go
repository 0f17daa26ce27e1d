package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workers-service/internal/entities"
	"workers-service/internal/repositories"
	"workers-service/pkg/service"
)

// SeedUser создаёт пользователя или обновляет его флаги. Повторный запуск безопасен.
func SeedUser(ctx context.Context, db *pgxpool.Pool, username string, isStaff bool, logger *zap.Logger) (*entities.User, error) {
	log.Printf("  - Сохранение пользователя %q (staff=%t)...", username, isStaff)

	userRepo := repositories.NewUserRepository(db, logger)
	user, err := userRepo.UpsertUser(ctx, entities.User{
		Username: username,
		IsStaff:  isStaff,
		IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось сохранить пользователя %s: %w", username, err)
	}

	log.Printf("    ✅ Пользователь %q готов (id=%d)", user.Username, user.ID)
	return user, nil
}

// IssueToken выпускает access-токен для локальной проверки API.
func IssueToken(user *entities.User, jwtSvc service.JWTService) (string, error) {
	token, err := jwtSvc.GenerateAccessToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("не удалось выпустить токен для %s: %w", user.Username, err)
	}
	return token, nil
}
