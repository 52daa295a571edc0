package worker

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// RedisQueue is a reliable automation queue on Redis lists.
// Enqueue: LPUSH queue
// Claim:   BLMOVE queue -> processing
// Ack:     LREM processing
// Ids left in processing by a crashed runner go back to the queue via
// RequeueStale.
type RedisQueue struct {
	rdb           redis.UniversalClient
	queueKey      string
	processingKey string
	// slot bounds each blocking pop so ctx cancellation is noticed.
	slot time.Duration
}

func NewRedisQueue(rdb redis.UniversalClient, prefix string) *RedisQueue {
	return &RedisQueue{
		rdb:           rdb,
		queueKey:      prefix + ":queue",
		processingKey: prefix + ":processing",
		slot:          time.Second,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, jobID string) error {
	if err := q.rdb.LPush(ctx, q.queueKey, jobID).Err(); err != nil {
		return errors.Wrapf(err, "enqueue %s", jobID)
	}
	return nil
}

func (q *RedisQueue) Claim(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id, err := q.rdb.BLMove(ctx, q.queueKey, q.processingKey, "RIGHT", "LEFT", q.slot).Result()
		if err == nil {
			return id, nil
		}
		if errors.Is(err, redis.Nil) {
			// nothing queued during this slot
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", errors.Wrap(err, "claim automation")
	}
}

func (q *RedisQueue) Ack(ctx context.Context, jobID string) error {
	return q.rdb.LRem(ctx, q.processingKey, 1, jobID).Err()
}

// RequeueStale moves up to limit ids from processing back to the queue
// (at-least-once delivery).
func (q *RedisQueue) RequeueStale(ctx context.Context, limit int64) (int64, error) {
	var moved int64
	for moved < limit {
		_, err := q.rdb.LMove(ctx, q.processingKey, q.queueKey, "RIGHT", "LEFT").Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.queueKey).Result()
}
