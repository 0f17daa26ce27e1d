package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss - ключа нет в кеше.
var ErrCacheMiss = errors.New("cache miss")

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
}

// noopCacheRepository используется, когда Redis не настроен.
type noopCacheRepository struct{}

func NewNoopCacheRepository() CacheRepositoryInterface {
	return noopCacheRepository{}
}

func (noopCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (noopCacheRepository) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheMiss
}

func (noopCacheRepository) Del(ctx context.Context, key ...string) error {
	return nil
}
