package redis

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"

	"surfaceflow/internal/entity"
)

// LedgerRepository keeps each ledger kind in two keys:
//
//	<prefix>:<kind>:columns  JSON array, written once with SETNX
//	<prefix>:<kind>:rows     list of JSON arrays, RPUSH'd in append order
type LedgerRepository struct {
	rdb    goredis.UniversalClient
	prefix string
}

func NewLedgerRepository(rdb goredis.UniversalClient, prefix string) *LedgerRepository {
	if prefix == "" {
		prefix = "surfaceflow:ledger"
	}
	return &LedgerRepository{rdb: rdb, prefix: prefix}
}

func (r *LedgerRepository) columnsKey(kind entity.LedgerKind) string {
	return r.prefix + ":" + string(kind) + ":columns"
}

func (r *LedgerRepository) rowsKey(kind entity.LedgerKind) string {
	return r.prefix + ":" + string(kind) + ":rows"
}

func (r *LedgerRepository) Append(ctx context.Context, kind entity.LedgerKind, row entity.LedgerRow) error {
	if len(row) == 0 {
		return errors.Wrapf(entity.ErrLedgerSchema, "%s: empty row", kind)
	}

	names := row.Names()
	rawNames, err := json.Marshal(names)
	if err != nil {
		return errors.Wrap(err, "encode columns")
	}

	// First writer wins the header; everybody else must match it.
	if err := r.rdb.SetNX(ctx, r.columnsKey(kind), rawNames, 0).Err(); err != nil {
		return errors.Mark(errors.Wrapf(err, "setnx %s", r.columnsKey(kind)), entity.ErrLedgerIO)
	}
	header, err := r.header(ctx, kind)
	if err != nil {
		return err
	}
	if !slices.Equal(header, names) {
		return errors.Wrapf(entity.ErrLedgerSchema, "%s: got %v, header %v", kind, names, header)
	}

	rawValues, err := json.Marshal(row.Values())
	if err != nil {
		return errors.Wrap(err, "encode values")
	}
	if err := r.rdb.RPush(ctx, r.rowsKey(kind), rawValues).Err(); err != nil {
		return errors.Mark(errors.Wrapf(err, "rpush %s", r.rowsKey(kind)), entity.ErrLedgerIO)
	}
	return nil
}

func (r *LedgerRepository) header(ctx context.Context, kind entity.LedgerKind) ([]string, error) {
	raw, err := r.rdb.Get(ctx, r.columnsKey(kind)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, errors.Mark(errors.Wrapf(err, "get %s", r.columnsKey(kind)), entity.ErrLedgerIO)
	}
	var header []string
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, errors.Wrapf(err, "decode %s", r.columnsKey(kind))
	}
	return header, nil
}

func (r *LedgerRepository) ReadAll(ctx context.Context, kind entity.LedgerKind) ([]entity.LedgerRow, error) {
	header, err := r.header(ctx, kind)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return []entity.LedgerRow{}, nil
	}

	items, err := r.rdb.LRange(ctx, r.rowsKey(kind), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "lrange %s", r.rowsKey(kind))
	}

	out := make([]entity.LedgerRow, 0, len(items))
	for _, item := range items {
		var values []string
		if err := json.Unmarshal([]byte(item), &values); err != nil {
			return nil, errors.Wrapf(err, "decode row of %s", kind)
		}
		out = append(out, entity.ZipRow(header, values))
	}
	return out, nil
}
