package routes

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"workers-service/internal/authz"
	"workers-service/internal/controllers"
	"workers-service/internal/repositories"
	"workers-service/internal/services"
	"workers-service/pkg/config"
	"workers-service/pkg/eventbus"
	"workers-service/pkg/middleware"
	"workers-service/pkg/service"
	"workers-service/pkg/validation"
)

type Loggers struct {
	Main   *zap.Logger
	Auth   *zap.Logger
	Worker *zap.Logger
	Import *zap.Logger
}

func InitRouter(
	e *echo.Echo,
	dbConn repositories.DB,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	validator *validation.CustomValidator,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	txManager := repositories.NewTxManager(dbConn)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, loggers.Auth)
	workerRepo := repositories.NewWorkerRepository(dbConn, loggers.Worker)

	// --- 2. СЕРВИСЫ ---
	principalService := services.NewPrincipalService(userRepo, cacheRepo, loggers.Auth, cfg.Redis.PrincipalTTL)
	workerService := services.NewWorkerService(workerRepo, txManager, bus, loggers.Worker)
	importService := services.NewWorkerImportService(workerRepo, validator.Engine(), bus, loggers.Import)

	// --- 3. КОНТРОЛЛЕРЫ ---
	workerCtrl := controllers.NewWorkerController(workerService, loggers.Worker)
	importCtrl := controllers.NewWorkerImportController(importService, loggers.Import)

	// --- 4. РОУТЕРЫ ---
	authMW := middleware.NewAuthMiddleware(jwtSvc, principalService, loggers.Auth)
	mountAPI(e, authMW, workerCtrl, importCtrl, loggers)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}

// mountAPI вешает группу /api: сначала аутентификация, затем проверка прав.
func mountAPI(
	e *echo.Echo,
	authMW *middleware.AuthMiddleware,
	workerCtrl *controllers.WorkerController,
	importCtrl *controllers.WorkerImportController,
	loggers *Loggers,
) {
	// /api/workers и /api/workers/ - один и тот же маршрут
	e.Pre(echomw.RemoveTrailingSlash())

	api := e.Group("/api", authMW.Auth, authz.StaffOrReadOnly(loggers.Auth))
	runWorkerRouter(api, workerCtrl, importCtrl)
}
