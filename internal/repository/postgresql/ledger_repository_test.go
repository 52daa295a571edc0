package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/registry"
	"surfaceflow/internal/repository/postgresql"
)

func TestPostgresLedger_AppendReadAll(t *testing.T) {
	dsn := os.Getenv("SURFACEFLOW_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SURFACEFLOW_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := postgresql.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := postgresql.NewLedgerRepository(pool)
	require.NoError(t, repo.Migrate(ctx))

	kind := entity.LedgerKind("test_" + registry.NewShortID())
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM ledger_rows WHERE kind = $1`, string(kind))
		_, _ = pool.Exec(ctx, `DELETE FROM ledger_schemas WHERE kind = $1`, string(kind))
	})

	rows, err := repo.ReadAll(ctx, kind)
	require.NoError(t, err)
	assert.Empty(t, rows)

	first := entity.LedgerRow{{Name: "id", Value: "a1"}, {Name: "total_price", Value: "267.00"}}
	second := entity.LedgerRow{{Name: "id", Value: "a2"}, {Name: "total_price", Value: "0.00"}}
	require.NoError(t, repo.Append(ctx, kind, first))
	require.NoError(t, repo.Append(ctx, kind, second))

	err = repo.Append(ctx, kind, entity.LedgerRow{{Name: "total_price", Value: "1"}, {Name: "id", Value: "a3"}})
	assert.True(t, errors.Is(err, entity.ErrLedgerSchema))

	rows, err = repo.ReadAll(ctx, kind)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first, rows[0])
	assert.Equal(t, second, rows[1])
}
