package csvfile_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/repository/csvfile"
)

func approvalRow(id, hotel string) entity.LedgerRow {
	return entity.LedgerRow{
		{Name: "id", Value: id},
		{Name: "hotel_name", Value: hotel},
		{Name: "total_price", Value: "267.00"},
	}
}

func TestLedger_ReadAllNeverWritten(t *testing.T) {
	repo := csvfile.NewLedgerRepository(filepath.Join(t.TempDir(), "missing"))

	rows, err := repo.ReadAll(context.Background(), entity.LedgerBookingApprovals)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestLedger_AppendCreatesFileWithHeader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	repo := csvfile.NewLedgerRepository(dir)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, entity.LedgerBookingApprovals, approvalRow("a1", "Comfort Suites Tampa")))
	require.NoError(t, repo.Append(ctx, entity.LedgerBookingApprovals, approvalRow("a2", `Inn "The Bay", Tampa`)))

	raw, err := os.ReadFile(filepath.Join(dir, "booking_approvals.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,hotel_name,total_price", lines[0])
	assert.Equal(t, `a2,"Inn ""The Bay"", Tampa",267.00`, lines[2])

	rows, err := repo.ReadAll(ctx, entity.LedgerBookingApprovals)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, approvalRow("a1", "Comfort Suites Tampa"), rows[0])
	assert.Equal(t, `Inn "The Bay", Tampa`, rows[1].Get("hotel_name"))
}

func TestLedger_HeaderIsFixedAfterFirstWrite(t *testing.T) {
	repo := csvfile.NewLedgerRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, entity.LedgerHotelSearches, approvalRow("a1", "x")))

	reordered := entity.LedgerRow{
		{Name: "hotel_name", Value: "x"},
		{Name: "id", Value: "a2"},
		{Name: "total_price", Value: "1"},
	}
	err := repo.Append(ctx, entity.LedgerHotelSearches, reordered)
	assert.True(t, errors.Is(err, entity.ErrLedgerSchema))

	missing := entity.LedgerRow{{Name: "id", Value: "a3"}}
	err = repo.Append(ctx, entity.LedgerHotelSearches, missing)
	assert.True(t, errors.Is(err, entity.ErrLedgerSchema))

	rows, err := repo.ReadAll(ctx, entity.LedgerHotelSearches)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLedger_HeaderSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := csvfile.NewLedgerRepository(dir)
	require.NoError(t, first.Append(ctx, entity.LedgerLeadEnrichments, approvalRow("a1", "x")))

	second := csvfile.NewLedgerRepository(dir)
	err := second.Append(ctx, entity.LedgerLeadEnrichments, entity.LedgerRow{{Name: "other", Value: "y"}})
	assert.True(t, errors.Is(err, entity.ErrLedgerSchema))

	require.NoError(t, second.Append(ctx, entity.LedgerLeadEnrichments, approvalRow("a2", "y")))
	rows, err := second.ReadAll(ctx, entity.LedgerLeadEnrichments)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a2", rows[1].Get("id"))
}

func TestLedger_KindsAreSeparateFiles(t *testing.T) {
	repo := csvfile.NewLedgerRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, entity.LedgerHotelSearches, entity.LedgerRow{{Name: "id", Value: "s1"}}))
	require.NoError(t, repo.Append(ctx, entity.LedgerBookingApprovals, approvalRow("a1", "x")))

	searches, err := repo.ReadAll(ctx, entity.LedgerHotelSearches)
	require.NoError(t, err)
	approvals, err := repo.ReadAll(ctx, entity.LedgerBookingApprovals)
	require.NoError(t, err)
	assert.Len(t, searches, 1)
	assert.Len(t, approvals, 1)
}

func TestLedger_UnwritableDirIsIOFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	repo := csvfile.NewLedgerRepository(filepath.Join(dir, "data"))
	err := repo.Append(context.Background(), entity.LedgerBookingApprovals, approvalRow("a1", "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrLedgerIO))
}

func TestLedger_ConcurrentAppendsDoNotInterleave(t *testing.T) {
	repo := csvfile.NewLedgerRepository(t.TempDir())
	ctx := context.Background()
	long := strings.Repeat("x", 4096)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Append(ctx, entity.LedgerBookingApprovals, approvalRow("a", long))
		}()
	}
	wg.Wait()

	rows, err := repo.ReadAll(ctx, entity.LedgerBookingApprovals)
	require.NoError(t, err)
	require.Len(t, rows, 40)
	for _, row := range rows {
		assert.Equal(t, long, row.Get("hotel_name"))
		assert.Equal(t, "267.00", row.Get("total_price"))
	}
}
