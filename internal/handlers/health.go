package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodify/internal/middleware"
)

func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			middleware.LoggerFrom(c).WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
