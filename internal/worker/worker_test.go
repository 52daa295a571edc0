package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/service"
	"surfaceflow/internal/worker"
)

func TestQueue_FullIsReported(t *testing.T) {
	q := worker.NewQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "a"))
	err := q.Enqueue(ctx, "b")
	assert.True(t, errors.Is(err, worker.ErrQueueFull))
	assert.Equal(t, 1, q.Len())

	id, err := q.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
}

func TestQueue_ClaimHonoursContext(t *testing.T) {
	q := worker.NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Claim(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_CompletesTriggeredAutomations(t *testing.T) {
	log := zaptest.NewLogger(t)
	queue := worker.NewQueue(16)
	svc := service.NewAutomationService(service.NewAutomationRegistry(), queue, log)
	pool := worker.NewPool(queue, worker.NewProcessor(svc, time.Millisecond, log), 2, log)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	var ids []string
	for i := 0; i < 3; i++ {
		job, err := svc.Trigger(ctx, service.TriggerRequest{Module: "AM-001", Action: "sync"})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	require.Eventually(t, func() bool {
		for _, id := range ids {
			job, err := svc.Get(id)
			if err != nil || job.Status != entity.StatusCompleted {
				return false
			}
		}
		return true
	}, 5*time.Second, 5*time.Millisecond)

	job, err := svc.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 100, job.Result.Progress)
	assert.NotEmpty(t, job.FieldString("completed_at"))
}

func TestProcessor_LeavesCancelledJobAlone(t *testing.T) {
	log := zaptest.NewLogger(t)
	svc := service.NewAutomationService(service.NewAutomationRegistry(), nil, log)
	job, err := svc.Trigger(context.Background(), service.TriggerRequest{Module: "AM-001", Action: "sync"})
	require.NoError(t, err)
	_, err = svc.Cancel(job.ID)
	require.NoError(t, err)

	err = worker.NewProcessor(svc, time.Millisecond, log).Process(context.Background(), job.ID)
	require.NoError(t, err)

	got, err := svc.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, got.Status)
	assert.Equal(t, 0, got.Result.Progress)
}

func TestPool_DisabledReturnsImmediately(t *testing.T) {
	log := zaptest.NewLogger(t)
	pool := worker.NewPool(worker.NewQueue(1), nil, 0, log)

	done := make(chan struct{})
	go func() {
		pool.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled pool did not return")
	}
}

// flakySource fails its first claim the way a dropped Redis connection does,
// then hands out from the wrapped queue.
type flakySource struct {
	*worker.Queue
	claims atomic.Int32
}

func (s *flakySource) Claim(ctx context.Context) (string, error) {
	if s.claims.Add(1) == 1 {
		return "", errors.New("redis: connection reset")
	}
	return s.Queue.Claim(ctx)
}

func TestPool_SurvivesClaimErrors(t *testing.T) {
	log := zaptest.NewLogger(t)
	queue := worker.NewQueue(4)
	source := &flakySource{Queue: queue}
	svc := service.NewAutomationService(service.NewAutomationRegistry(), queue, log)
	pool := worker.NewPool(source, worker.NewProcessor(svc, time.Millisecond, log), 1, log).
		WithClaimBackoff(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(stopped)
	}()

	job, err := svc.Trigger(ctx, service.TriggerRequest{Module: "AM-001", Action: "sync"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := svc.Get(job.ID)
		return err == nil && got.Status == entity.StatusCompleted
	}, 5*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, source.claims.Load(), int32(2))

	select {
	case <-stopped:
		t.Fatal("pool stopped before cancel")
	default:
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after cancel")
	}
}
