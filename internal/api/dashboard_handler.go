package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getDashboardOverview returns the health verdict plus queue depth for the
// operations dashboard.
// GET /api/v1/dashboard/overview
func (r *Router) getDashboardOverview(c *gin.Context) {
	ctx := c.Request.Context()

	health, err := r.monitor.CheckSystemHealth(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute system health",
		})
		return
	}

	depth, err := r.queue.Depth(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read queue depth",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"overall_status": health.OverallStatus,
		"issues":         health.Issues,
		"metrics":        health.Metrics,
		"queue_depth":    depth,
	})
}

// getSystemHealth returns the raw health check verdict.
// GET /api/v1/dashboard/health
func (r *Router) getSystemHealth(c *gin.Context) {
	health, err := r.monitor.CheckSystemHealth(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute system health",
		})
		return
	}

	c.JSON(http.StatusOK, health)
}
