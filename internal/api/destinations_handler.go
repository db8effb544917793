//nolint:dupl // Similar structure to rules_handler.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/feedgate/internal/models"
)

// listDestinations returns all destinations
// GET /api/v1/destinations?active_only=true
func (r *Router) listDestinations(c *gin.Context) {
	ctx := c.Request.Context()

	const queryTrue = "true"
	activeOnly := c.Query("active_only") == queryTrue

	destinations, err := r.repo.ListDestinations(ctx, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list destinations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"destinations": destinations,
		"count":        len(destinations),
	})
}

// createDestination registers a new destination
// POST /api/v1/destinations
func (r *Router) createDestination(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.DestinationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	if !models.ValidFamily(req.Family) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown destination family: " + req.Family,
		})
		return
	}

	dest, err := r.registry.Register(ctx, &req)
	if err != nil {
		handleRepositoryError(c, err, "destination", "create")
		return
	}

	c.JSON(http.StatusCreated, dest)
}

// getDestination retrieves a destination by name
// GET /api/v1/destinations/:name
func (r *Router) getDestination(c *gin.Context) {
	ctx := c.Request.Context()

	dest, err := r.registry.Resolve(ctx, c.Param("name"))
	if err != nil {
		handleRepositoryError(c, err, "destination", "get")
		return
	}

	c.JSON(http.StatusOK, dest)
}

// updateDestination updates a destination
// PUT /api/v1/destinations/:name
func (r *Router) updateDestination(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.DestinationUpdateRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": bindErr.Error(),
		})
		return
	}

	if validateErr := req.Validate(); validateErr != nil {
		handleValidationError(c, validateErr)
		return
	}
	if req.Family != nil && !models.ValidFamily(*req.Family) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown destination family: " + *req.Family,
		})
		return
	}

	dest, err := r.registry.Update(ctx, c.Param("name"), &req)
	if err != nil {
		handleRepositoryError(c, err, "destination", "update")
		return
	}

	c.JSON(http.StatusOK, dest)
}

// deleteDestination deletes a destination
// DELETE /api/v1/destinations/:name
func (r *Router) deleteDestination(c *gin.Context) {
	ctx := c.Request.Context()

	if err := r.registry.Delete(ctx, c.Param("name")); err != nil {
		handleRepositoryError(c, err, "destination", "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Destination deleted successfully",
	})
}
