package queue_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgate/internal/queue"
)

func newTestQueue(t *testing.T) *queue.Queue {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return queue.NewQueue(client, "")
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := newTestQueue(t)
	ctx := t.Context()

	first := uuid.New()
	second := uuid.New()

	require.NoError(t, q.Enqueue(ctx, first, "msn_news"))
	require.NoError(t, q.Enqueue(ctx, second, "google_news"))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first, job.ArticleID)
	assert.Equal(t, "msn_news", job.Destination)
	assert.Equal(t, 1, job.Attempt)
	assert.False(t, job.EnqueuedAt.IsZero())

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second, job.ArticleID)

	depth, err = q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), depth)
}

func TestDequeueEmpty(t *testing.T) {
	q := newTestQueue(t)

	job, err := q.Dequeue(t.Context(), 100*time.Millisecond)
	assert.ErrorIs(t, err, queue.ErrEmpty)
	assert.Nil(t, job)
}

func TestRequeueAdvancesAttempt(t *testing.T) {
	q := newTestQueue(t)
	ctx := t.Context()

	require.NoError(t, q.Enqueue(ctx, uuid.New(), "msn_news"))

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, job.Attempt)

	require.NoError(t, q.Requeue(ctx, *job))

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, job.Attempt)

	require.NoError(t, q.Requeue(ctx, *job))

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, job.Attempt)
}
