package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/archiv-tools/linkliste/models"
)

// Health returns a handler for GET /api/v1/health.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := 0
		crawlStore.Range(func(_, value any) bool {
			e := value.(*jobEntry)
			e.mu.Lock()
			if e.job.Status == models.StatusProcessing {
				active++
			}
			e.mu.Unlock()
			return true
		})

		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"uptime":      time.Since(startTime).Round(time.Second).String(),
			"active_jobs": active,
			"version":     "1.0.0",
		})
	}
}
