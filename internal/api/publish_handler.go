package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/feedgate/internal/errfmt"
	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/publisher"
)

// publishRequest names one or many destinations for a publish trigger.
type publishRequest struct {
	Destination  string   `json:"destination"`
	Destinations []string `json:"destinations"`
}

func (p *publishRequest) targets() []string {
	if len(p.Destinations) > 0 {
		return p.Destinations
	}
	if p.Destination != "" {
		return []string{p.Destination}
	}
	return nil
}

// complianceCheckRequest names the destination whose rule set to run.
type complianceCheckRequest struct {
	Destination string `binding:"required" json:"destination"`
}

// checkCompliance runs a destination's rule set against an article without
// touching attempt or article state.
// POST /api/v1/articles/:id/compliance-check
func (r *Router) checkCompliance(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseUUID(c, "id", "article")
	if !ok {
		return
	}

	var req complianceCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	article, err := r.repo.GetArticleByID(ctx, id)
	if err != nil {
		handleRepositoryError(c, err, "article", "get")
		return
	}

	dest, err := r.registry.Resolve(ctx, req.Destination)
	if err != nil {
		handleRepositoryError(c, err, "destination", "get")
		return
	}

	results, err := r.engine.ValidateArticle(ctx, article, dest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Compliance check failed",
		})
		return
	}

	response := gin.H{
		"article_id":  article.ID,
		"destination": dest.Name,
		"passed":      results.AllPassed(),
		"results":     results,
	}
	if !results.AllPassed() {
		response["formatted_errors"] = errfmt.FormatComplianceErrors(results)
		response["report"] = errfmt.GenerateEditorReport(article, results)
	}

	c.JSON(http.StatusOK, response)
}

// publishArticle runs the full publish pipeline synchronously for one or
// many destinations.
// POST /api/v1/articles/:id/publish
func (r *Router) publishArticle(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseUUID(c, "id", "article")
	if !ok {
		return
	}

	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	targets := req.targets()
	if len(targets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "At least one destination is required",
		})
		return
	}

	article, err := r.repo.GetArticleByID(ctx, id)
	if err != nil {
		handleRepositoryError(c, err, "article", "get")
		return
	}

	if len(targets) == 1 {
		r.publishSingle(c, article, targets[0])
		return
	}

	results := r.service.PublishToMany(ctx, article, targets)
	status := http.StatusOK
	if !results.AnySucceeded() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{
		"article_id":    article.ID,
		"results":       results,
		"any_succeeded": results.AnySucceeded(),
	})
}

func (r *Router) publishSingle(c *gin.Context, article *models.Article, destination string) {
	attempt, err := r.service.Publish(c.Request.Context(), article, destination)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"article_id": article.ID,
			"attempt":    attempt,
		})
		return
	}

	response := gin.H{
		"article_id": article.ID,
		"error":      err.Error(),
	}
	if attempt != nil {
		response["attempt"] = attempt
	}

	var complianceErr *publisher.ComplianceError
	if errors.As(err, &complianceErr) && attempt != nil {
		response["formatted_errors"] = errfmt.FormatComplianceErrors(attempt.ComplianceResults)
		response["report"] = errfmt.GenerateEditorReport(article, attempt.ComplianceResults)
		c.JSON(http.StatusUnprocessableEntity, response)
		return
	}

	var configErr *publisher.ConfigError
	if errors.As(err, &configErr) {
		c.JSON(http.StatusConflict, response)
		return
	}

	var protocolErr *publisher.ProtocolError
	if errors.As(err, &protocolErr) {
		c.JSON(http.StatusBadGateway, response)
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to publish article",
	})
}

// enqueuePublish queues background publish jobs for the destinations.
// POST /api/v1/articles/:id/publish-async
func (r *Router) enqueuePublish(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseUUID(c, "id", "article")
	if !ok {
		return
	}

	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	targets := req.targets()
	if len(targets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "At least one destination is required",
		})
		return
	}

	// The article must exist before anything is queued.
	if _, err := r.repo.GetArticleByID(ctx, id); err != nil {
		handleRepositoryError(c, err, "article", "get")
		return
	}

	for _, destination := range targets {
		if err := r.queue.Enqueue(ctx, id, destination); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to enqueue publish job",
			})
			return
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"article_id":   id,
		"destinations": targets,
		"queued":       len(targets),
	})
}
