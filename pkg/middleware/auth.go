package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workers-service/internal/dto"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/service"
	"workers-service/pkg/utils"
)

// PrincipalResolver находит пользователя по id из токена.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID uint64) (*dto.Principal, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	principals PrincipalResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, principals PrincipalResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		principals: principals,
		logger:     logger,
	}
}

// Auth - необязательная аутентификация: без заголовка запрос идёт дальше анонимно,
// а неверный заголовок или токен сразу дают 401.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// 1. Извлекаем токен из заголовка
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return next(c)
		}

		// 2. Проверяем формат заголовка "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return m.unauthorized(c, apperrors.ErrInvalidAuthHeader)
		}

		// 3. Валидируем токен
		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return m.unauthorized(c, err)
		}

		// 4. Убеждаемся, что это не refresh токен
		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном")
			return m.unauthorized(c, apperrors.ErrTokenIsNotAccess)
		}

		// 5. Находим пользователя
		ctx := c.Request().Context()
		principal, err := m.principals.Resolve(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUserInactive) {
				m.logger.Warn("AuthMiddleware: Пользователь не найден или неактивен", zap.Uint64("userID", claims.UserID))
				return m.unauthorized(c, apperrors.ErrUserInactive)
			}
			return utils.ErrorResponse(c, err, m.logger)
		}

		// 6. Записываем пользователя в контекст запроса
		c.SetRequest(c.Request().WithContext(utils.WithPrincipal(ctx, principal)))

		m.logger.Debug("AuthMiddleware: Пользователь успешно аутентифицирован",
			zap.Uint64("userID", principal.UserID),
			zap.Bool("isStaff", principal.IsStaff),
		)

		return next(c)
	}
}

func (m *AuthMiddleware) unauthorized(c echo.Context, err error) error {
	return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusUnauthorized, err.Error(), nil, nil), m.logger)
}
