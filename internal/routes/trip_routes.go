package routes

import (
	"github.com/gin-gonic/gin"

	"zaplog/internal/controllers"
	"zaplog/internal/middleware"
)

func TripRoutes(r *gin.Engine) {
	trips := r.Group("/api/trips")
	trips.Use(middleware.RequireAuth())
	{
		trips.GET("", controllers.ListTrips)
		trips.POST("", controllers.CreateTrip)
		trips.PUT("/:id", controllers.UpdateTrip)
		trips.DELETE("/:id", controllers.DeleteTrip)
		trips.POST("/:id/location", controllers.AddTripLocation)
		trips.GET("/:id/locations", controllers.ListTripLocations)
	}
}
