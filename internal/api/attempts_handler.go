package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/feedgate/internal/models"
)

// listAttempts returns publish attempts matching the filter
// GET /api/v1/attempts?destination_name=msn_news&status=failed&limit=50
func (r *Router) listAttempts(c *gin.Context) {
	ctx := c.Request.Context()

	var filter models.AttemptFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid filter parameters",
			"details": err.Error(),
		})
		return
	}

	attempts, err := r.repo.ListAttempts(ctx, &filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list attempts",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

// getAttempt retrieves a publish attempt by ID
// GET /api/v1/attempts/:id
func (r *Router) getAttempt(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseUUID(c, "id", "attempt")
	if !ok {
		return
	}

	attempt, err := r.repo.GetAttemptByID(ctx, id)
	if err != nil {
		handleRepositoryError(c, err, "attempt", "get")
		return
	}

	c.JSON(http.StatusOK, attempt)
}
