package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zaplog/internal/config"
	"zaplog/internal/repository"
)

// GetStats returns the caller's aggregate trip counts for the dashboard.
func GetStats(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	stats, err := repository.NewTripRepository(config.DB).Stats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error computing stats: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
