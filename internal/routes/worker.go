package routes

import (
	"github.com/labstack/echo/v4"

	"workers-service/internal/controllers"
)

func runWorkerRouter(api *echo.Group, workerCtrl *controllers.WorkerController, importCtrl *controllers.WorkerImportController) {
	workers := api.Group("/workers")

	// Статический путь import должен быть объявлен до :id
	workers.GET("/import", importCtrl.ImportHint)
	workers.POST("/import", importCtrl.ImportWorkers)

	workers.GET("", workerCtrl.GetWorkers)
	workers.POST("", workerCtrl.CreateWorker)
	workers.GET("/:id", workerCtrl.FindWorker)
	workers.PATCH("/:id", workerCtrl.UpdateWorker)
	workers.PUT("/:id", workerCtrl.ReplaceWorker)
	workers.DELETE("/:id", workerCtrl.DeleteWorker)
}
