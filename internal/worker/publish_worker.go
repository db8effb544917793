// Package worker provides the background publish worker that drains the
// job queue and drives attempts through the publishing service.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/feedgate/internal/database"
	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/publisher"
	"github.com/jonesrussell/feedgate/internal/queue"
)

const (
	defaultMaxAttempts    = 3
	defaultDequeueTimeout = 5 * time.Second
	defaultPublishTimeout = 30 * time.Second
)

// Config holds the publish worker options.
type Config struct {
	// MaxAttempts caps deliveries per job, the first run included.
	MaxAttempts int

	// RetryProtocolRejections requeues attempts a destination explicitly
	// rejected. Off by default: a rejected payload rarely fixes itself.
	RetryProtocolRejections bool

	DequeueTimeout time.Duration
	PublishTimeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    defaultMaxAttempts,
		DequeueTimeout: defaultDequeueTimeout,
		PublishTimeout: defaultPublishTimeout,
	}
}

// PublishWorker consumes publish jobs and retries the transient failures.
type PublishWorker struct {
	queue   *queue.Queue
	repo    *database.Repository
	service *publisher.Service
	cfg     Config
	logger  logger.Logger
	tracer  trace.Tracer

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewPublishWorker creates a new publish worker
func NewPublishWorker(q *queue.Queue, repo *database.Repository, service *publisher.Service, cfg Config, log logger.Logger) *PublishWorker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = defaultDequeueTimeout
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}

	return &PublishWorker{
		queue:    q,
		repo:     repo,
		service:  service,
		cfg:      cfg,
		logger:   log,
		tracer:   otel.Tracer("publish-worker"),
		stopChan: make(chan struct{}),
	}
}

// Start begins the queue consumption loop
func (w *PublishWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("publish worker started",
		logger.Int("max_attempts", w.cfg.MaxAttempts),
		logger.Bool("retry_protocol_rejections", w.cfg.RetryProtocolRejections))
}

// Stop gracefully stops the worker
func (w *PublishWorker) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("publish worker stopped")
}

// IsRunning returns whether the worker is currently running
func (w *PublishWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

func (w *PublishWorker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx, w.cfg.DequeueTimeout)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to dequeue publish job", logger.Error(err))
			continue
		}

		w.processJob(ctx, job)
	}
}

func (w *PublishWorker) processJob(ctx context.Context, job *queue.Job) {
	ctx, span := w.tracer.Start(ctx, "worker.publish",
		trace.WithAttributes(
			attribute.String("article_id", job.ArticleID.String()),
			attribute.String("destination", job.Destination),
			attribute.Int("attempt", job.Attempt),
		))
	defer span.End()

	pubCtx, cancel := context.WithTimeout(ctx, w.cfg.PublishTimeout)
	defer cancel()

	article, err := w.repo.GetArticleByID(pubCtx, job.ArticleID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			w.logger.Warn("dropping job for missing article",
				logger.String("article_id", job.ArticleID.String()),
				logger.String("destination", job.Destination))
			return
		}
		w.retryOrDrop(ctx, job, err)
		return
	}

	attempt, err := w.service.Publish(pubCtx, article, job.Destination)
	if err == nil {
		w.logger.Info("publish job succeeded",
			logger.String("article_id", job.ArticleID.String()),
			logger.String("destination", job.Destination),
			logger.String("attempt_id", attempt.ID.String()),
			logger.Int("job_attempt", job.Attempt))
		return
	}

	if !publisher.Retryable(err, w.cfg.RetryProtocolRejections) {
		w.logger.Warn("publish job failed terminally",
			logger.String("article_id", job.ArticleID.String()),
			logger.String("destination", job.Destination),
			logger.Int("job_attempt", job.Attempt),
			logger.Error(err))
		return
	}

	w.retryOrDrop(ctx, job, err)
}

// retryOrDrop requeues the job while the attempt budget holds, otherwise
// abandons it.
func (w *PublishWorker) retryOrDrop(ctx context.Context, job *queue.Job, cause error) {
	if job.Attempt >= w.cfg.MaxAttempts {
		w.logger.Error("publish job exhausted its retries",
			logger.String("article_id", job.ArticleID.String()),
			logger.String("destination", job.Destination),
			logger.Int("job_attempt", job.Attempt),
			logger.Error(cause))
		return
	}

	if err := w.queue.Requeue(ctx, *job); err != nil {
		w.logger.Error("failed to requeue publish job",
			logger.String("article_id", job.ArticleID.String()),
			logger.String("destination", job.Destination),
			logger.Error(err))
		return
	}

	w.logger.Info("publish job requeued",
		logger.String("article_id", job.ArticleID.String()),
		logger.String("destination", job.Destination),
		logger.Int("job_attempt", job.Attempt),
		logger.Error(cause))
}
