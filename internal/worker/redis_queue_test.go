package worker_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfaceflow/internal/worker"
)

func newRedisQueue(t *testing.T) *worker.RedisQueue {
	t.Helper()
	addr := os.Getenv("SURFACEFLOW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SURFACEFLOW_TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	prefix := "surfaceflow-test:" + uuid.NewString()
	t.Cleanup(func() {
		_ = rdb.Del(context.Background(), prefix+":queue", prefix+":processing").Err()
	})
	return worker.NewRedisQueue(rdb, prefix)
}

func TestRedisQueue_FIFOAndAck(t *testing.T) {
	q := newRedisQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "a"))
	require.NoError(t, q.Enqueue(ctx, "b"))

	id, err := q.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	require.NoError(t, q.Ack(ctx, id))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisQueue_RequeueStale(t *testing.T) {
	q := newRedisQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "a"))
	_, err := q.Claim(ctx)
	require.NoError(t, err)

	// claimed but never acked
	moved, err := q.RequeueStale(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	id, err := q.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
}

func TestRedisQueue_ClaimHonoursContext(t *testing.T) {
	q := newRedisQueue(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Claim(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
