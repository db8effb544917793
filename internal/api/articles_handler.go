package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/feedgate/internal/models"
)

const defaultListLimit = 100

// createArticle creates a new article
// POST /api/v1/articles
func (r *Router) createArticle(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.ArticleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	article, err := r.repo.CreateArticle(ctx, &req)
	if err != nil {
		handleRepositoryError(c, err, "article", "create")
		return
	}

	c.JSON(http.StatusCreated, article)
}

// listArticles returns articles, optionally filtered by status
// GET /api/v1/articles?status=ready&limit=50
func (r *Router) listArticles(c *gin.Context) {
	ctx := c.Request.Context()

	status := models.ArticleStatus(c.Query("status"))
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit parameter",
			})
			return
		}
		limit = parsed
	}

	articles, err := r.repo.ListArticles(ctx, status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list articles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

// getArticle retrieves an article by ID
// GET /api/v1/articles/:id
func (r *Router) getArticle(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseUUID(c, "id", "article")
	if !ok {
		return
	}

	article, err := r.repo.GetArticleByID(ctx, id)
	if err != nil {
		handleRepositoryError(c, err, "article", "get")
		return
	}

	c.JSON(http.StatusOK, article)
}

// getArticleAudit returns the audit trail for an article
// GET /api/v1/articles/:id/audit?limit=50
func (r *Router) getArticleAudit(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseUUID(c, "id", "article")
	if !ok {
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit parameter",
			})
			return
		}
		limit = parsed
	}

	events, err := r.repo.ListAuditEventsForArticle(ctx, id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list audit events",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}
