package utils

import (
	"context"

	"go.uber.org/zap"

	"workers-service/internal/dto"
	"workers-service/pkg/contextkeys"
)

// GetPrincipalFromCtx возвращает пользователя запроса или nil для анонимного.
func GetPrincipalFromCtx(ctx context.Context) *dto.Principal {
	principal, ok := ctx.Value(contextkeys.PrincipalKey).(*dto.Principal)
	if !ok {
		return nil
	}
	return principal
}

func WithPrincipal(ctx context.Context, principal *dto.Principal) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, principal.UserID)
	return context.WithValue(ctx, contextkeys.PrincipalKey, principal)
}

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.RequestIDKey).(string)
	return id
}

// LoggerWithRequest добавляет к логгеру request_id и пользователя, если они есть в контексте.
func LoggerWithRequest(ctx context.Context, logger *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if id := GetRequestIDFromCtx(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if p := GetPrincipalFromCtx(ctx); p != nil {
		fields = append(fields, zap.Uint64("user_id", p.UserID))
	}
	return logger.With(fields...)
}
