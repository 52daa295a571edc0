package postgresql

import (
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"surfaceflow/internal/entity"
)

// NewPool opens and pings a pgx pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return pool, nil
}

// LedgerRepository stores ledger rows in two tables: ledger_schemas fixes the
// column list per kind on first insert, ledger_rows holds the values.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS ledger_schemas (
	kind    TEXT PRIMARY KEY,
	columns TEXT[] NOT NULL
);
CREATE TABLE IF NOT EXISTS ledger_rows (
	id         BIGSERIAL PRIMARY KEY,
	kind       TEXT NOT NULL REFERENCES ledger_schemas(kind),
	row_values TEXT[] NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ledger_rows_kind_id ON ledger_rows (kind, id);
`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		return errors.Mark(errors.Wrap(err, "migrate ledger tables"), entity.ErrLedgerIO)
	}
	return nil
}

func (r *LedgerRepository) Append(ctx context.Context, kind entity.LedgerKind, row entity.LedgerRow) error {
	if len(row) == 0 {
		return errors.Wrapf(entity.ErrLedgerSchema, "%s: empty row", kind)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "begin"), entity.ErrLedgerIO)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// one writer per kind at a time
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, string(kind)); err != nil {
		return errors.Mark(errors.Wrapf(err, "lock %s", kind), entity.ErrLedgerIO)
	}

	names := row.Names()
	const insertSchema = `
INSERT INTO ledger_schemas (kind, columns)
VALUES ($1, $2)
ON CONFLICT (kind) DO NOTHING;
`
	if _, err := tx.Exec(ctx, insertSchema, string(kind), names); err != nil {
		return errors.Mark(errors.Wrapf(err, "insert schema %s", kind), entity.ErrLedgerIO)
	}

	var header []string
	if err := tx.QueryRow(ctx, `SELECT columns FROM ledger_schemas WHERE kind = $1;`, string(kind)).Scan(&header); err != nil {
		return errors.Mark(errors.Wrapf(err, "select schema %s", kind), entity.ErrLedgerIO)
	}
	if !slices.Equal(header, names) {
		return errors.Wrapf(entity.ErrLedgerSchema, "%s: got %v, header %v", kind, names, header)
	}

	const insertRow = `INSERT INTO ledger_rows (kind, row_values, created_at) VALUES ($1, $2, $3);`
	if _, err := tx.Exec(ctx, insertRow, string(kind), row.Values(), time.Now().UTC()); err != nil {
		return errors.Mark(errors.Wrapf(err, "insert row %s", kind), entity.ErrLedgerIO)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Mark(errors.Wrap(err, "commit"), entity.ErrLedgerIO)
	}
	return nil
}

func (r *LedgerRepository) ReadAll(ctx context.Context, kind entity.LedgerKind) ([]entity.LedgerRow, error) {
	var header []string
	err := r.pool.QueryRow(ctx, `SELECT columns FROM ledger_schemas WHERE kind = $1;`, string(kind)).Scan(&header)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []entity.LedgerRow{}, nil
		}
		return nil, errors.Wrapf(err, "select schema %s", kind)
	}

	const q = `
SELECT row_values
FROM ledger_rows
WHERE kind = $1
ORDER BY id;
`
	rows, err := r.pool.Query(ctx, q, string(kind))
	if err != nil {
		return nil, errors.Wrapf(err, "select rows %s", kind)
	}
	defer rows.Close()

	out := []entity.LedgerRow{}
	for rows.Next() {
		var values []string
		if err := rows.Scan(&values); err != nil {
			return nil, errors.Wrapf(err, "scan %s", kind)
		}
		out = append(out, entity.ZipRow(header, values))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s", kind)
	}
	return out, nil
}
