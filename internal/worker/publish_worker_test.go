package worker_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgate/internal/database"
	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/queue"
	"github.com/jonesrussell/feedgate/internal/worker"
)

type workerFixture struct {
	worker *worker.PublishWorker
	queue  *queue.Queue
	mock   sqlmock.Sqlmock
}

func newWorkerFixture(t *testing.T, cfg worker.Config) *workerFixture {
	t.Helper()

	db, mock, setupErr := sqlmock.New()
	require.NoError(t, setupErr)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewNopLogger()
	repo := database.NewRepository(sqlx.NewDb(db, "sqlmock"))
	q := queue.NewQueue(client, "")

	return &workerFixture{
		worker: worker.NewPublishWorker(q, repo, nil, cfg, log),
		queue:  q,
		mock:   mock,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := worker.DefaultConfig()

	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.False(t, cfg.RetryProtocolRejections)
	assert.Equal(t, 5*time.Second, cfg.DequeueTimeout)
	assert.Equal(t, 30*time.Second, cfg.PublishTimeout)
}

func TestWorkerStartStop(t *testing.T) {
	f := newWorkerFixture(t, worker.DefaultConfig())

	assert.False(t, f.worker.IsRunning())

	f.worker.Start(t.Context())
	assert.True(t, f.worker.IsRunning())

	// Second start is a no-op, not a second consumer loop.
	f.worker.Start(t.Context())

	f.worker.Stop()
}

func TestWorkerDropsJobForMissingArticle(t *testing.T) {
	cfg := worker.DefaultConfig()
	cfg.DequeueTimeout = 100 * time.Millisecond
	f := newWorkerFixture(t, cfg)
	ctx := t.Context()

	f.mock.ExpectQuery("SELECT (.+) FROM articles").
		WillReturnError(sql.ErrNoRows)

	require.NoError(t, f.queue.Enqueue(ctx, uuid.New(), "msn_news"))

	f.worker.Start(ctx)
	defer f.worker.Stop()

	require.Eventually(t, func() bool {
		return f.mock.ExpectationsWereMet() == nil
	}, 2*time.Second, 20*time.Millisecond, "worker should look up the article")

	// The job is gone and was not requeued.
	assert.Eventually(t, func() bool {
		depth, err := f.queue.Depth(ctx)
		return err == nil && depth == 0
	}, time.Second, 20*time.Millisecond)
}

func TestWorkerExhaustsRetryBudget(t *testing.T) {
	cfg := worker.DefaultConfig()
	cfg.DequeueTimeout = 100 * time.Millisecond
	f := newWorkerFixture(t, cfg)
	ctx := t.Context()

	// An infrastructure failure on the article read is retryable; the job
	// runs MaxAttempts times and is then abandoned.
	for range cfg.MaxAttempts {
		f.mock.ExpectQuery("SELECT (.+) FROM articles").
			WillReturnError(sql.ErrConnDone)
	}

	require.NoError(t, f.queue.Enqueue(ctx, uuid.New(), "msn_news"))

	f.worker.Start(ctx)
	defer f.worker.Stop()

	require.Eventually(t, func() bool {
		return f.mock.ExpectationsWereMet() == nil
	}, 3*time.Second, 20*time.Millisecond, "worker should retry until the budget is spent")

	assert.Eventually(t, func() bool {
		depth, err := f.queue.Depth(ctx)
		return err == nil && depth == 0
	}, time.Second, 20*time.Millisecond)
}
