package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/repository/csvfile"
)

func TestRedactDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://sf:secret@db:5432/sf?sslmode=disable", "postgres://sf:****@db:5432/sf?sslmode=disable"},
		{"postgres://sf@db/sf", "postgres://sf@db/sf"},
		{"postgres://db/sf", "postgres://db/sf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, redactDSN(tt.in))
	}
}

func TestLedgerShow_JSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SURFACEFLOW_LEDGER_DIR", dir)

	repo := csvfile.NewLedgerRepository(dir)
	require.NoError(t, repo.Append(context.Background(), entity.LedgerBookingApprovals, entity.LedgerRow{
		{Name: "id", Value: "r1"},
		{Name: "hotel_id", Value: "hotel-001"},
	}))

	var out bytes.Buffer
	LedgerCmd.SetOut(&out)
	LedgerCmd.SetArgs([]string{"show", "booking_approvals", "--json"})
	t.Cleanup(func() {
		LedgerCmd.SetOut(nil)
		LedgerCmd.SetArgs(nil)
	})

	require.NoError(t, LedgerCmd.ExecuteContext(context.Background()))

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "hotel-001", rows[0]["hotel_id"])
}

func TestLedgerShow_UnknownKind(t *testing.T) {
	LedgerCmd.SetArgs([]string{"show", "payroll"})
	t.Cleanup(func() { LedgerCmd.SetArgs(nil) })

	err := LedgerCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ledger")
}
