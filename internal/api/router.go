// Package api exposes the HTTP surface: article intake, compliance checks,
// publish triggers, configuration CRUD, and the operations dashboard.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/feedgate/internal/compliance"
	"github.com/jonesrussell/feedgate/internal/config"
	"github.com/jonesrussell/feedgate/internal/database"
	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/monitor"
	"github.com/jonesrussell/feedgate/internal/publisher"
	"github.com/jonesrussell/feedgate/internal/queue"
	"github.com/jonesrussell/feedgate/internal/registry"
)

const (
	healthStatusHealthy  = "healthy"
	healthStatusDegraded = "degraded"
	healthCheckTimeout   = 2 * time.Second
	serviceVersion       = "1.0.0"
)

// Router holds the API dependencies
type Router struct {
	repo        *database.Repository
	registry    *registry.Registry
	engine      *compliance.Engine
	service     *publisher.Service
	monitor     *monitor.Monitor
	queue       *queue.Queue
	redisClient redis.UniversalClient
	gatherer    prometheus.Gatherer
	cfg         *config.Config
	logger      logger.Logger
}

// NewRouter creates a new API router
func NewRouter(
	repo *database.Repository,
	reg *registry.Registry,
	engine *compliance.Engine,
	service *publisher.Service,
	mon *monitor.Monitor,
	q *queue.Queue,
	redisClient redis.UniversalClient,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
	log logger.Logger,
) *Router {
	return &Router{
		repo:        repo,
		registry:    reg,
		engine:      engine,
		service:     service,
		monitor:     mon,
		queue:       q,
		redisClient: redisClient,
		gatherer:    gatherer,
		cfg:         cfg,
		logger:      log,
	}
}

// SetupRoutes builds the gin engine with middleware and all service routes.
func (r *Router) SetupRoutes() *gin.Engine {
	// Set Gin mode based on config
	if !r.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger(r.logger))

	// Health check and metrics (public)
	router.GET("/health", r.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	r.setupServiceRoutes(router)

	return router
}

// setupServiceRoutes configures the service-specific API routes.
func (r *Router) setupServiceRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Articles
	articles := v1.Group("/articles")
	articles.POST("", r.createArticle)
	articles.GET("", r.listArticles)
	articles.GET("/:id", r.getArticle)
	articles.GET("/:id/audit", r.getArticleAudit)
	articles.POST("/:id/compliance-check", r.checkCompliance)
	articles.POST("/:id/publish", r.publishArticle)
	articles.POST("/:id/publish-async", r.enqueuePublish)

	// Compliance rules
	rules := v1.Group("/rules")
	rules.GET("", r.listRules)
	rules.POST("", r.createRule)
	rules.GET("/validators", r.listValidators) // More specific route before :name
	rules.GET("/:name", r.getRule)
	rules.PUT("/:name", r.updateRule)
	rules.DELETE("/:name", r.deleteRule)

	// Destinations
	destinations := v1.Group("/destinations")
	destinations.GET("", r.listDestinations)
	destinations.POST("", r.createDestination)
	destinations.GET("/:name", r.getDestination)
	destinations.PUT("/:name", r.updateDestination)
	destinations.DELETE("/:name", r.deleteDestination)

	// Publish attempts
	attempts := v1.Group("/attempts")
	attempts.GET("", r.listAttempts)
	attempts.GET("/:id", r.getAttempt)

	// Dashboard
	dashboard := v1.Group("/dashboard")
	dashboard.GET("/overview", r.getDashboardOverview)
	dashboard.GET("/health", r.getSystemHealth)
}

// healthCheck returns the service health status
func (r *Router) healthCheck(c *gin.Context) {
	health := gin.H{
		"status":  healthStatusHealthy,
		"service": "feedgate",
		"version": serviceVersion,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	dbConnected := true
	if err := r.repo.Ping(ctx); err != nil {
		dbConnected = false
		health["status"] = healthStatusDegraded
	}
	health["database"] = gin.H{
		"connected": dbConnected,
	}

	redisConnected := true
	if err := r.redisClient.Ping(ctx).Err(); err != nil {
		redisConnected = false
		health["status"] = healthStatusDegraded
	}
	health["redis"] = gin.H{
		"connected": redisConnected,
	}

	c.JSON(http.StatusOK, health)
}
