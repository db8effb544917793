// Package queue implements the Redis-backed publish job queue.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis list the publish jobs live on.
const DefaultKey = "feedgate:publish_jobs"

// ErrEmpty signals that no job was available within the dequeue timeout.
var ErrEmpty = errors.New("queue: empty")

// Job is one queued publish request. Attempt counts deliveries of this job
// to a worker, starting at 1.
type Job struct {
	ArticleID   uuid.UUID `json:"article_id"`
	Destination string    `json:"destination"`
	Attempt     int       `json:"attempt"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// Queue is a FIFO job queue on a Redis list. Producers push to the head,
// workers block-pop from the tail.
type Queue struct {
	redis redis.UniversalClient
	key   string
}

// NewQueue creates a queue on the given list key. An empty key uses
// DefaultKey.
func NewQueue(client redis.UniversalClient, key string) *Queue {
	if key == "" {
		key = DefaultKey
	}
	return &Queue{redis: client, key: key}
}

// Enqueue adds a first-attempt job for the article/destination pair.
func (q *Queue) Enqueue(ctx context.Context, articleID uuid.UUID, destination string) error {
	return q.push(ctx, Job{
		ArticleID:   articleID,
		Destination: destination,
		Attempt:     1,
		EnqueuedAt:  time.Now(),
	})
}

// Requeue puts a failed job back with its attempt counter advanced. The
// caller decides whether the failure warrants another attempt.
func (q *Queue) Requeue(ctx context.Context, job Job) error {
	job.Attempt++
	return q.push(ctx, job)
}

func (q *Queue) push(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.redis.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job. Returns ErrEmpty when the
// timeout elapses with nothing queued.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	values, err := q.redis.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	// BRPop returns [key, value].
	if len(values) != 2 {
		return nil, fmt.Errorf("dequeue job: unexpected reply length %d", len(values))
	}

	var job Job
	if err := json.Unmarshal([]byte(values[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Depth returns the number of queued jobs.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	depth, err := q.redis.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return depth, nil
}
