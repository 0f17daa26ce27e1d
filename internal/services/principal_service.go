package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"workers-service/internal/dto"
	"workers-service/internal/repositories"
	apperrors "workers-service/pkg/errors"
)

type PrincipalServiceInterface interface {
	Resolve(ctx context.Context, userID uint64) (*dto.Principal, error)
	Invalidate(ctx context.Context, userID uint64) error
}

// PrincipalService находит пользователя токена: сначала в Redis, потом в таблице users.
type PrincipalService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cacheTTL  time.Duration
}

func NewPrincipalService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) PrincipalServiceInterface {
	return &PrincipalService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

func principalCacheKey(userID uint64) string {
	return fmt.Sprintf("auth:principal:%d", userID)
}

func (s *PrincipalService) Resolve(ctx context.Context, userID uint64) (*dto.Principal, error) {
	cacheKey := principalCacheKey(userID)

	// 1. Попытка получить данные из Redis-кеша
	if cached, errGet := s.cacheRepo.Get(ctx, cacheKey); errGet == nil {
		var principal dto.Principal
		if err := json.Unmarshal([]byte(cached), &principal); err == nil {
			s.logger.Debug("PrincipalService: Пользователь найден в кеше", zap.Uint64("userID", userID))
			return checkActive(&principal)
		} else {
			s.logger.Warn("PrincipalService: Ошибка при десериализации пользователя из кеша", zap.Error(err), zap.String("key", cacheKey))
		}
	} else if !errors.Is(errGet, repositories.ErrCacheMiss) {
		s.logger.Warn("PrincipalService: Кеш недоступен, запрос к БД", zap.Uint64("userID", userID), zap.Error(errGet))
	}

	// 2. Получаем из базы данных
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("PrincipalService: Не удалось получить пользователя из БД", zap.Uint64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("поиск пользователя %d: %w", userID, err)
	}

	principal := &dto.Principal{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
		IsActive: user.IsActive,
	}

	// 3. Кешируем полученные данные
	if payload, errMarshal := json.Marshal(principal); errMarshal == nil {
		if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheTTL); errSet != nil {
			s.logger.Error("PrincipalService: Не удалось сохранить пользователя в кеш", zap.Uint64("userID", userID), zap.Error(errSet))
		}
	}

	return checkActive(principal)
}

func checkActive(p *dto.Principal) (*dto.Principal, error) {
	if !p.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	return p, nil
}

func (s *PrincipalService) Invalidate(ctx context.Context, userID uint64) error {
	if err := s.cacheRepo.Del(ctx, principalCacheKey(userID)); err != nil {
		s.logger.Error("PrincipalService: Ошибка инвалидации кеша пользователя", zap.Uint64("userID", userID), zap.Error(err))
		return err
	}
	s.logger.Info("PrincipalService: Кеш пользователя инвалидирован", zap.Uint64("userID", userID))
	return nil
}
