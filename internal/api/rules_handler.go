package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/validator"
)

// listRules returns all compliance rules
// GET /api/v1/rules?active_only=true
func (r *Router) listRules(c *gin.Context) {
	ctx := c.Request.Context()

	const queryTrue = "true"
	activeOnly := c.Query("active_only") == queryTrue

	rules, err := r.repo.ListRules(ctx, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list rules",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rules": rules,
		"count": len(rules),
	})
}

// listValidators returns the registered validator kinds
// GET /api/v1/rules/validators
func (r *Router) listValidators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"validators": validator.Kinds(),
	})
}

// createRule creates a new compliance rule
// POST /api/v1/rules
func (r *Router) createRule(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.RuleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	// Unknown validator kinds are rejected here, at configuration time,
	// never mid-pipeline.
	if err := validator.CheckKind(req.Validator); err != nil {
		handleRuleValidationError(c, err)
		return
	}

	rule, err := r.repo.CreateRule(ctx, &req)
	if err != nil {
		handleRepositoryError(c, err, "rule", "create")
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// getRule retrieves a rule by name
// GET /api/v1/rules/:name
func (r *Router) getRule(c *gin.Context) {
	ctx := c.Request.Context()

	rule, err := r.repo.GetRuleByName(ctx, c.Param("name"))
	if err != nil {
		handleRepositoryError(c, err, "rule", "get")
		return
	}

	c.JSON(http.StatusOK, rule)
}

// updateRule updates a rule
// PUT /api/v1/rules/:name
func (r *Router) updateRule(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.RuleUpdateRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": bindErr.Error(),
		})
		return
	}

	if validateErr := req.Validate(); validateErr != nil {
		handleRuleValidationError(c, validateErr)
		return
	}
	if req.Validator != nil {
		if kindErr := validator.CheckKind(*req.Validator); kindErr != nil {
			handleRuleValidationError(c, kindErr)
			return
		}
	}

	rule, err := r.repo.UpdateRule(ctx, c.Param("name"), &req)
	if err != nil {
		handleRepositoryError(c, err, "rule", "update")
		return
	}

	c.JSON(http.StatusOK, rule)
}

// deleteRule deletes a rule
// DELETE /api/v1/rules/:name
func (r *Router) deleteRule(c *gin.Context) {
	ctx := c.Request.Context()

	if err := r.repo.DeleteRule(ctx, c.Param("name")); err != nil {
		handleRepositoryError(c, err, "rule", "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rule deleted successfully",
	})
}

// handleRuleValidationError surfaces the registered validator kinds on an
// unknown-validator error so the caller can self-correct.
func handleRuleValidationError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrUnknownValidator) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      err.Error(),
			"validators": validator.Kinds(),
		})
		return
	}
	handleValidationError(c, err)
}
