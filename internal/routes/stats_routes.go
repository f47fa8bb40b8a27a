package routes

import (
	"github.com/gin-gonic/gin"

	"zaplog/internal/controllers"
	"zaplog/internal/middleware"
)

func StatsRoutes(r *gin.Engine) {
	stats := r.Group("/api/stats")
	stats.Use(middleware.RequireAuth())
	{
		stats.GET("", controllers.GetStats)
	}
}
