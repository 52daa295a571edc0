package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/registry"
)

type AutomationPayload struct {
	Module string         `json:"module"`
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type AutomationResult struct {
	Progress int        `json:"progress"`
	Logs     []LogEntry `json:"logs"`
}

type (
	Automation         = entity.Record[AutomationPayload, AutomationResult]
	AutomationRegistry = registry.Registry[AutomationPayload, AutomationResult]
)

func NewAutomationRegistry(opts ...registry.Option) *AutomationRegistry {
	return registry.New[AutomationPayload, AutomationResult](entity.KindAutomation, entity.AutomationTransitions, opts...)
}

type AutomationService struct {
	reg   *AutomationRegistry
	queue AutomationQueue
	log   *zap.Logger
	now   func() time.Time
}

// NewAutomationService wires the automation workflow. queue may be nil, in
// which case triggered jobs stay running until cancelled.
func NewAutomationService(reg *AutomationRegistry, queue AutomationQueue, log *zap.Logger) *AutomationService {
	return &AutomationService{reg: reg, queue: queue, log: log, now: utcNow}
}

type TriggerRequest struct {
	Module string
	Action string
	Params map[string]any
}

func (s *AutomationService) Trigger(ctx context.Context, req TriggerRequest) (Automation, error) {
	if req.Module == "" || req.Action == "" {
		return Automation{}, validationError("module and action are required")
	}
	if req.Params == nil {
		req.Params = map[string]any{}
	}

	now := s.now()
	job, err := s.reg.Create(
		AutomationPayload{Module: req.Module, Action: req.Action, Params: req.Params},
		entity.StatusRunning,
		AutomationResult{Logs: []LogEntry{{Timestamp: isoTime(now), Message: "Automation started"}}},
		map[string]string{"module": req.Module, "action": req.Action},
	)
	if err != nil {
		return Automation{}, err
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, job.ID); err != nil {
			// The job is still visible and cancellable; it just won't progress.
			s.log.Warn("automation enqueue failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	s.log.Info("automation triggered",
		zap.String("job_id", job.ID),
		zap.String("module", req.Module),
		zap.String("action", req.Action),
	)
	return job, nil
}

func (s *AutomationService) Get(id string) (Automation, error) {
	return s.reg.Get(id)
}

type AutomationFilter struct {
	Status entity.Status
	Module string
}

func (s *AutomationService) List(f AutomationFilter, p registry.Page) ([]Automation, int) {
	filter := registry.Filter{Status: f.Status}
	if f.Module != "" {
		filter.Tags = map[string]string{"module": f.Module}
	}
	return s.reg.List(filter, p)
}

// Cancel stops a running automation. Cancelling an already terminal job
// returns it unchanged together with registry.ErrTerminal.
func (s *AutomationService) Cancel(id string) (Automation, error) {
	job, err := s.reg.Transition(id, entity.StatusCancelled, map[string]any{
		"cancelled_at": isoTime(s.now()),
	})
	if err != nil {
		return job, err
	}
	s.log.Info("automation cancelled", zap.String("job_id", id))
	return job, nil
}

// Advance moves a running automation forward by step percent and logs the
// step. Reaching 100 completes it. done reports that the job needs no further
// steps, either because it completed or because it was already terminal.
func (s *AutomationService) Advance(id string, step int) (job Automation, done bool, err error) {
	now := s.now()
	job, err = s.reg.Update(id, func(rec *Automation) error {
		rec.Result.Progress = min(rec.Result.Progress+step, 100)
		rec.Result.Logs = append(rec.Result.Logs, LogEntry{
			Timestamp: isoTime(now),
			Message:   fmt.Sprintf("%s: %d%% complete", rec.Payload.Action, rec.Result.Progress),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, registry.ErrTerminal) {
			return job, true, nil
		}
		return job, true, err
	}
	if job.Result.Progress < 100 {
		return job, false, nil
	}

	job, err = s.reg.Transition(id, entity.StatusCompleted, map[string]any{"completed_at": isoTime(now)})
	if err != nil && errors.Is(err, registry.ErrTerminal) {
		return job, true, nil
	}
	return job, true, err
}
