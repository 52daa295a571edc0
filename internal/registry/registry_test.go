package registry_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/registry"
)

type payload struct {
	JobID string
	City  string
}

type result struct {
	Logs []string
}

func newBookings(opts ...registry.Option) *registry.Registry[payload, result] {
	return registry.New[payload, result](entity.KindBooking, entity.BookingTransitions, opts...)
}

func TestRegistry_CreateThenGet(t *testing.T) {
	fixed := time.Date(2025, 12, 5, 10, 30, 0, 0, time.UTC)
	reg := newBookings(registry.WithClock(func() time.Time { return fixed }))

	created, err := reg.Create(payload{JobID: "J1", City: "Tampa"}, entity.StatusPendingApproval, result{}, map[string]string{"job_id": "J1"})
	require.NoError(t, err)
	require.Len(t, created.ID, 8)

	got, err := reg.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, entity.KindBooking, got.Kind)
	assert.Equal(t, entity.StatusPendingApproval, got.Status)
	assert.Equal(t, fixed, got.CreatedAt)
	assert.Equal(t, payload{JobID: "J1", City: "Tampa"}, got.Payload)
	assert.Equal(t, "J1", got.Tags["job_id"])
}

func TestRegistry_IDsAreUnique(t *testing.T) {
	reg := newBookings()
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		rec, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
		require.NoError(t, err)
		require.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
	assert.Equal(t, 500, reg.Len())
}

func TestRegistry_CollisionRegeneratesInsteadOfOverwriting(t *testing.T) {
	ids := []string{"aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
	var n int
	reg := newBookings(registry.WithIDFunc(func() string {
		id := ids[n%len(ids)]
		n++
		return id
	}))

	first, err := reg.Create(payload{City: "first"}, entity.StatusPendingApproval, result{}, nil)
	require.NoError(t, err)
	second, err := reg.Create(payload{City: "second"}, entity.StatusPendingApproval, result{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "aaaaaaaa", first.ID)
	assert.Equal(t, "bbbbbbbb", second.ID)

	got, err := reg.Get("aaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Payload.City)
}

func TestRegistry_CollisionExhausted(t *testing.T) {
	reg := newBookings(registry.WithIDFunc(func() string { return "samesame" }))

	_, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
	require.NoError(t, err)

	_, err = reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrDuplicateID))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_GetMissing(t *testing.T) {
	reg := newBookings()
	_, err := reg.Get("nope")
	assert.True(t, errors.Is(err, registry.ErrNotFound))
}

func TestRegistry_ListFiltersAndKeepsInsertionOrder(t *testing.T) {
	reg := newBookings()
	var ids []string
	for i := 0; i < 6; i++ {
		rec, err := reg.Create(payload{JobID: fmt.Sprintf("J%d", i)}, entity.StatusPendingApproval, result{}, map[string]string{"job_id": fmt.Sprintf("J%d", i%2)})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	for _, i := range []int{1, 4} {
		_, err := reg.Transition(ids[i], entity.StatusApproved, nil)
		require.NoError(t, err)
	}

	all, total := reg.List(registry.Filter{}, registry.Page{})
	require.Equal(t, 6, total)
	for i, rec := range all {
		assert.Equal(t, ids[i], rec.ID)
	}

	approved, total := reg.List(registry.Filter{Status: entity.StatusApproved}, registry.Page{})
	require.Equal(t, 2, total)
	assert.Equal(t, ids[1], approved[0].ID)
	assert.Equal(t, ids[4], approved[1].ID)

	pendingJ0, total := reg.List(registry.Filter{
		Status: entity.StatusPendingApproval,
		Tags:   map[string]string{"job_id": "J0"},
	}, registry.Page{})
	require.Equal(t, 2, total)
	assert.Equal(t, ids[0], pendingJ0[0].ID)
	assert.Equal(t, ids[2], pendingJ0[1].ID)
}

func TestRegistry_ListPaging(t *testing.T) {
	reg := newBookings()
	var ids []string
	for i := 0; i < 5; i++ {
		rec, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	tests := []struct {
		name string
		page registry.Page
		want []string
	}{
		{"first page", registry.Page{Offset: 0, Limit: 2}, ids[0:2]},
		{"middle page", registry.Page{Offset: 2, Limit: 2}, ids[2:4]},
		{"short last page", registry.Page{Offset: 4, Limit: 2}, ids[4:5]},
		{"out of range", registry.Page{Offset: 10, Limit: 2}, nil},
		{"no limit", registry.Page{Offset: 3}, ids[3:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total := reg.List(registry.Filter{}, tt.page)
			assert.Equal(t, 5, total)
			require.NotNil(t, got)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i].ID)
			}
		})
	}
}

func TestRegistry_TransitionMergesFields(t *testing.T) {
	reg := newBookings()
	rec, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
	require.NoError(t, err)

	got, err := reg.Transition(rec.ID, entity.StatusApproved, map[string]any{
		"approved_at":       "2025-12-05T10:30:00Z",
		"selected_hotel_id": "hotel-002",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Equal(t, "hotel-002", got.FieldString("selected_hotel_id"))
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
}

func TestRegistry_TransitionTwiceKeepsFirstTerminal(t *testing.T) {
	reg := newBookings()
	rec, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
	require.NoError(t, err)

	_, err = reg.Transition(rec.ID, entity.StatusApproved, map[string]any{"selected_hotel_id": "hotel-001"})
	require.NoError(t, err)

	again, err := reg.Transition(rec.ID, entity.StatusApproved, map[string]any{"selected_hotel_id": "hotel-005"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrTerminal))
	assert.Equal(t, entity.StatusApproved, again.Status)
	assert.Equal(t, "hotel-001", again.FieldString("selected_hotel_id"))
}

func TestRegistry_TransitionIllegal(t *testing.T) {
	reg := newBookings()
	rec, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
	require.NoError(t, err)

	got, err := reg.Transition(rec.ID, entity.StatusCancelled, nil)
	assert.True(t, errors.Is(err, registry.ErrIllegalTransition))
	assert.Equal(t, entity.StatusPendingApproval, got.Status)
}

func TestRegistry_TransitionMissingLeavesOthersAlone(t *testing.T) {
	reg := newBookings()
	rec, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
	require.NoError(t, err)

	_, err = reg.Transition("missing", entity.StatusApproved, map[string]any{"x": 1})
	assert.True(t, errors.Is(err, registry.ErrNotFound))

	got, err := reg.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingApproval, got.Status)
	assert.Empty(t, got.Fields)
}

func TestRegistry_ReturnedCopiesAreIsolated(t *testing.T) {
	reg := newBookings()
	rec, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, map[string]string{"job_id": "J1"})
	require.NoError(t, err)

	rec.Fields["approved_at"] = "tampered"
	rec.Tags["job_id"] = "tampered"

	got, err := reg.Get(rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Fields)
	assert.Equal(t, "J1", got.Tags["job_id"])
}

func TestRegistry_UpdateRejectsStatusChange(t *testing.T) {
	reg := registry.New[payload, result](entity.KindAutomation, entity.AutomationTransitions)
	rec, err := reg.Create(payload{}, entity.StatusRunning, result{}, nil)
	require.NoError(t, err)

	got, err := reg.Update(rec.ID, func(r *entity.Record[payload, result]) error {
		r.Result.Logs = append(r.Result.Logs, "step")
		r.Status = entity.StatusCompleted
		return nil
	})
	assert.True(t, errors.Is(err, registry.ErrStatusChange))
	assert.Equal(t, entity.StatusRunning, got.Status)
	assert.Empty(t, got.Result.Logs)

	got, err = reg.Update(rec.ID, func(r *entity.Record[payload, result]) error {
		r.Result.Logs = append(r.Result.Logs, "step")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"step"}, got.Result.Logs)
}

func TestRegistry_UpdateSkipsTerminal(t *testing.T) {
	reg := registry.New[payload, result](entity.KindAutomation, entity.AutomationTransitions)
	rec, err := reg.Create(payload{}, entity.StatusRunning, result{}, nil)
	require.NoError(t, err)
	_, err = reg.Transition(rec.ID, entity.StatusCancelled, nil)
	require.NoError(t, err)

	called := false
	_, err = reg.Update(rec.ID, func(r *entity.Record[payload, result]) error {
		called = true
		return nil
	})
	assert.True(t, errors.Is(err, registry.ErrTerminal))
	assert.False(t, called)
}

func TestRegistry_ConcurrentCreateAndTransition(t *testing.T) {
	reg := newBookings()
	const writers = 50

	var wg sync.WaitGroup
	idCh := make(chan string, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := reg.Create(payload{}, entity.StatusPendingApproval, result{}, nil)
			if err == nil {
				idCh <- rec.ID
			}
		}()
	}
	wg.Wait()
	close(idCh)

	var ids []string
	for id := range idCh {
		ids = append(ids, id)
	}
	require.Len(t, ids, writers)

	// Race many approvals per id; exactly one must win for each.
	var mu sync.Mutex
	wins := make(map[string]int)
	for _, id := range ids {
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(id string, j int) {
				defer wg.Done()
				_, err := reg.Transition(id, entity.StatusApproved, map[string]any{"attempt": j})
				if err == nil {
					mu.Lock()
					wins[id]++
					mu.Unlock()
				}
			}(id, j)
		}
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, 1, wins[id], "id %s", id)
	}
}
