// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"workers-service/internal/listeners"
	"workers-service/internal/repositories"
	"workers-service/internal/routes"
	"workers-service/pkg/config"
	"workers-service/pkg/database/postgresql"
	apperrors "workers-service/pkg/errors"
	"workers-service/pkg/eventbus"
	applogger "workers-service/pkg/logger"
	"workers-service/pkg/middleware"
	"workers-service/pkg/service"
	"workers-service/pkg/utils"
	"workers-service/pkg/validation"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true

	// 2. Middleware
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.InjectLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	validator := validation.New()
	e.Validator = validator

	// 3. База данных
	ctx := context.Background()
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к базе данных", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.AutoMigrate {
		if err := postgresql.Migrate(ctx, dbConn, logger); err != nil {
			logger.Fatal("ошибка миграции базы данных", zap.Error(err))
		}
	}

	// 4. Redis (необязателен: без адреса кеш пользователей отключён)
	cacheRepo := repositories.NewNoopCacheRepository()
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logger.Warn("Redis недоступен, кеш пользователей отключён", zap.Error(err), zap.String("address", cfg.Redis.Address))
		} else {
			cacheRepo = repositories.NewRedisCacheRepository(redisClient)
		}
	}

	// 5. Сервисы и события
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger)

	bus := eventbus.New(logger.Named("eventbus"))
	listeners.NewWorkerAuditListener(logger.Named("audit")).Register(bus)

	// 6. Маршруты
	loggers := &routes.Loggers{
		Main:   logger,
		Auth:   logger.Named("auth"),
		Worker: logger.Named("workers"),
		Import: logger.Named("import"),
	}
	routes.InitRouter(e, dbConn, cacheRepo, jwtSvc, bus, validator, loggers, cfg)
	routes.InitHealthRouter(e, dbConn, logger)

	// 7. Запуск и корректная остановка
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("🚀 Сервер запущен", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	bus.Wait()
	logger.Info("Сервер остановлен")
}
