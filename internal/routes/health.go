package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func runHealthRouter(e *echo.Echo, db Pinger, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("Health: база данных недоступна", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// InitHealthRouter - liveness-проба, пингует пул соединений.
func InitHealthRouter(e *echo.Echo, db Pinger, logger *zap.Logger) {
	runHealthRouter(e, db, logger)
}
