package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"surfaceflow/internal/service"
)

// ProgressStep is how far one tick moves an automation, in percent.
const ProgressStep = 25

type Advancer interface {
	Advance(id string, step int) (service.Automation, bool, error)
}

// Processor drives one automation from running to completed, one step per
// interval. Jobs cancelled in the meantime are dropped at the next step.
type Processor struct {
	jobs     Advancer
	interval time.Duration
	log      *zap.Logger
}

func NewProcessor(jobs Advancer, interval time.Duration, log *zap.Logger) *Processor {
	return &Processor{jobs: jobs, interval: interval, log: log}
}

func (p *Processor) Process(ctx context.Context, jobID string) error {
	start := time.Now()
	ticker := time.NewTicker(max(p.interval, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		job, done, err := p.jobs.Advance(jobID, ProgressStep)
		if err != nil {
			return err
		}
		if !done {
			continue
		}

		p.log.Info("automation finished",
			zap.String("job_id", jobID),
			zap.String("status", string(job.Status)),
			zap.Int("progress", job.Result.Progress),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}
}
