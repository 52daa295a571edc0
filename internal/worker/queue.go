package worker

import (
	"context"

	"github.com/cockroachdb/errors"
)

var ErrQueueFull = errors.New("worker: automation queue is full")

// Queue is an in-process, bounded FIFO of automation job ids.
type Queue struct {
	ch chan string
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{ch: make(chan string, size)}
}

// Enqueue never blocks: a full queue is reported instead.
func (q *Queue) Enqueue(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- jobID:
		return nil
	default:
		return errors.Wrapf(ErrQueueFull, "job %s", jobID)
	}
}

// Claim blocks until a job id is available or ctx is done.
func (q *Queue) Claim(ctx context.Context) (string, error) {
	select {
	case id := <-q.ch:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *Queue) Len() int { return len(q.ch) }

// Ack is a no-op: a claimed id has already left the channel.
func (q *Queue) Ack(ctx context.Context, jobID string) error { return nil }
