package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"surfaceflow/internal/entity"
)

// Ledger is the durable audit trail port (implementations: csvfile,
// postgresql, redis LedgerRepository).
type Ledger interface {
	Append(ctx context.Context, kind entity.LedgerKind, row entity.LedgerRow) error
	ReadAll(ctx context.Context, kind entity.LedgerKind) ([]entity.LedgerRow, error)
}

// AutomationQueue hands triggered automations to the runner.
type AutomationQueue interface {
	Enqueue(ctx context.Context, jobID string) error
}

// ErrValidation marks a request rejected before any state was touched.
var ErrValidation = errors.New("validation failed")

func validationError(msg string) error {
	return errors.Mark(errors.New(msg), ErrValidation)
}

func utcNow() time.Time { return time.Now().UTC() }

func isoTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// appendLedger writes one audit row. Failures are logged and swallowed: the
// audit trail never decides whether a request succeeds.
func appendLedger(ctx context.Context, ledger Ledger, log *zap.Logger, kind entity.LedgerKind, row entity.LedgerRow) bool {
	if ledger == nil {
		return false
	}
	if err := ledger.Append(ctx, kind, row); err != nil {
		log.Warn("ledger append failed",
			zap.String("ledger", string(kind)),
			zap.String("row_id", row.Get("id")),
			zap.Bool("io_failure", errors.Is(err, entity.ErrLedgerIO)),
			zap.Error(err),
		)
		return false
	}
	log.Debug("ledger append", zap.String("ledger", string(kind)), zap.String("row_id", row.Get("id")))
	return true
}
