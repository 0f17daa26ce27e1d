package authz

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/utils"
)

// StaffOrReadOnly отвечает 403, если Allow запрещает запрос.
func StaffOrReadOnly(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			principal := utils.GetPrincipalFromCtx(req.Context())

			if !Allow(req.Method, principal) {
				logger.Warn("Доступ запрещён",
					zap.String("method", req.Method),
					zap.String("path", req.URL.Path),
					zap.String("user", principal.String()),
				)
				return utils.ErrorResponse(c,
					apperrors.NewHttpError(http.StatusForbidden, apperrors.ErrForbidden.Error(), nil, nil),
					logger)
			}
			return next(c)
		}
	}
}
