package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Source hands out automation ids. Ack is called once an id has been
// processed, whatever the outcome.
type Source interface {
	Claim(ctx context.Context) (string, error)
	Ack(ctx context.Context, jobID string) error
}

// DefaultClaimBackoff is how long a worker waits after a failed claim.
const DefaultClaimBackoff = time.Second

type Pool struct {
	queue     Source
	processor *Processor
	workers   int
	backoff   time.Duration
	log       *zap.Logger
}

func NewPool(queue Source, processor *Processor, workers int, log *zap.Logger) *Pool {
	if workers < 0 {
		workers = 0
	}
	return &Pool{
		queue:     queue,
		processor: processor,
		workers:   workers,
		backoff:   DefaultClaimBackoff,
		log:       log,
	}
}

// WithClaimBackoff overrides DefaultClaimBackoff.
func (p *Pool) WithClaimBackoff(d time.Duration) *Pool {
	p.backoff = d
	return p
}

// Run claims jobs until ctx is cancelled and waits for in-flight jobs to
// notice the cancellation before returning.
func (p *Pool) Run(ctx context.Context) {
	if p.workers == 0 {
		p.log.Info("automation runner disabled")
		return
	}
	p.log.Info("worker pool started", zap.Int("workers", p.workers))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for {
				jobID, err := p.queue.Claim(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					// connection resets and the like are not fatal
					p.log.Warn("claim automation failed", zap.Int("worker", n), zap.Error(err))
					select {
					case <-ctx.Done():
						return
					case <-time.After(p.backoff):
					}
					continue
				}
				if err := p.processor.Process(ctx, jobID); err != nil {
					p.log.Warn("process automation failed",
						zap.Int("worker", n),
						zap.String("job_id", jobID),
						zap.Error(err),
					)
				}
				if ctx.Err() != nil {
					// left unacked so a restart can requeue it
					return
				}
				if err := p.queue.Ack(ctx, jobID); err != nil {
					p.log.Warn("ack automation failed", zap.String("job_id", jobID), zap.Error(err))
				}
			}
		}(i + 1)
	}

	wg.Wait()
	p.log.Info("worker pool stopped")
}
