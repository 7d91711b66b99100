package http

import (
	"sailclub/internal/adapter/http/handlers"
	"sailclub/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, healthHandler *handlers.HealthHandler, taskHandler *handlers.TaskHandler, auth gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(middleware.LanguageMiddleware())
	{
		api.GET("/health", healthHandler.CheckHealth)
		api.GET("/health/report", healthHandler.CheckHealthReport)
	}

	helpers := api.Group("/helpers")
	helpers.Use(auth)
	{
		helpers.GET("/categories", taskHandler.ListCategories)
		helpers.GET("/tasks", taskHandler.ListTasks)
		helpers.POST("/tasks", taskHandler.CreateTask)
		helpers.GET("/tasks/:id", taskHandler.GetTask)
		helpers.PUT("/tasks/:id", taskHandler.UpdateTask)
		helpers.POST("/tasks/:id/sign-up-as-captain", taskHandler.SignUpAsCaptain)
		helpers.POST("/tasks/:id/sign-up-as-helper", taskHandler.SignUpAsHelper)
		helpers.DELETE("/tasks/:id/captain", taskHandler.RemoveCaptain)
		helpers.DELETE("/tasks/:id/helpers/:member_id", taskHandler.RemoveHelper)
		helpers.POST("/tasks/:id/mark-as-done", taskHandler.MarkAsDone)
		helpers.POST("/tasks/:id/validate", taskHandler.ValidateTask)
	}
}
