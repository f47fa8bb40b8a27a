package routes

import (
	"github.com/gin-gonic/gin"

	"zaplog/internal/controllers"
	"zaplog/internal/middleware"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.GET("/me", middleware.RequireAuth(), controllers.Me)
		auth.PUT("/me", middleware.RequireAuth(), controllers.UpdateMe)
	}
}
