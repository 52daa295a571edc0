// Package registry holds the in-memory, per-workflow store of job records.
//
// A Registry is process-local and ephemeral: records live until restart and
// are never evicted. All mutations are serialised by one mutex per registry;
// readers always receive copies.
package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"surfaceflow/internal/entity"
)

var (
	ErrNotFound          = errors.New("registry: record not found")
	ErrDuplicateID       = errors.New("registry: record already exists")
	ErrTerminal          = errors.New("registry: record is in a terminal status")
	ErrIllegalTransition = errors.New("registry: illegal status transition")
	ErrStatusChange      = errors.New("registry: update must not change status")
)

// maxIDAttempts bounds regeneration when a short id collides.
const maxIDAttempts = 8

// NewShortID returns the first 8 hex characters of a random UUID.
func NewShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

type Filter struct {
	Status entity.Status
	Tags   map[string]string
}

func (f Filter) match(status entity.Status, tags map[string]string) bool {
	if f.Status != "" && f.Status != status {
		return false
	}
	for k, v := range f.Tags {
		if tags[k] != v {
			return false
		}
	}
	return true
}

// Page is an offset/limit window over insertion order. Limit <= 0 means all.
type Page struct {
	Offset int
	Limit  int
}

type Option func(*options)

type options struct {
	newID func() string
	now   func() time.Time
}

// WithIDFunc overrides id generation (tests use it to force collisions).
func WithIDFunc(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(o *options) { o.now = fn }
}

type Registry[P, R any] struct {
	kind  entity.Kind
	rules entity.Transitions
	newID func() string
	now   func() time.Time

	mu      sync.RWMutex
	records map[string]*entity.Record[P, R]
	order   []string
}

func New[P, R any](kind entity.Kind, rules entity.Transitions, opts ...Option) *Registry[P, R] {
	o := options{
		newID: NewShortID,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[P, R]{
		kind:    kind,
		rules:   rules,
		newID:   o.newID,
		now:     o.now,
		records: make(map[string]*entity.Record[P, R]),
	}
}

func (r *Registry[P, R]) Kind() entity.Kind { return r.kind }

// Create stores a new record under a fresh id and returns a copy of it.
func (r *Registry[P, R]) Create(payload P, status entity.Status, result R, tags map[string]string) (entity.Record[P, R], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.freshIDLocked()
	if err != nil {
		return entity.Record[P, R]{}, err
	}

	now := r.now()
	rec := &entity.Record[P, R]{
		ID:        id,
		Kind:      r.kind,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		Payload:   payload,
		Result:    result,
		Fields:    map[string]any{},
		Tags:      map[string]string{},
	}
	for k, v := range tags {
		rec.Tags[k] = v
	}

	r.records[id] = rec
	r.order = append(r.order, id)
	return rec.Clone(), nil
}

func (r *Registry[P, R]) freshIDLocked() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := r.newID()
		if _, exists := r.records[id]; !exists {
			return id, nil
		}
	}
	return "", errors.Wrapf(ErrDuplicateID, "%s: no free id after %d attempts", r.kind, maxIDAttempts)
}

func (r *Registry[P, R]) Get(id string) (entity.Record[P, R], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return entity.Record[P, R]{}, errors.Wrapf(ErrNotFound, "%s %q", r.kind, id)
	}
	return rec.Clone(), nil
}

// List returns the page of matching records and the total number of matches.
func (r *Registry[P, R]) List(f Filter, p Page) ([]entity.Record[P, R], int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*entity.Record[P, R], 0, len(r.order))
	for _, id := range r.order {
		rec := r.records[id]
		if f.match(rec.Status, rec.Tags) {
			matched = append(matched, rec)
		}
	}

	total := len(matched)
	start := max(p.Offset, 0)
	if start >= total {
		return []entity.Record[P, R]{}, total
	}
	end := total
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}

	out := make([]entity.Record[P, R], 0, end-start)
	for _, rec := range matched[start:end] {
		out = append(out, rec.Clone())
	}
	return out, total
}

// Transition moves a record to status `to`, merging fields in the same
// critical section. When the record is already terminal or the move is not
// in the workflow's table, the unchanged record is returned with ErrTerminal
// or ErrIllegalTransition.
func (r *Registry[P, R]) Transition(id string, to entity.Status, fields map[string]any) (entity.Record[P, R], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return entity.Record[P, R]{}, errors.Wrapf(ErrNotFound, "%s %q", r.kind, id)
	}
	if r.rules.Terminal(rec.Status) {
		return rec.Clone(), errors.Wrapf(ErrTerminal, "%s %q is %s", r.kind, id, rec.Status)
	}
	if !r.rules.Allowed(rec.Status, to) {
		return rec.Clone(), errors.Wrapf(ErrIllegalTransition, "%s %q: %s -> %s", r.kind, id, rec.Status, to)
	}

	for k, v := range fields {
		rec.Fields[k] = v
	}
	rec.Status = to
	rec.UpdatedAt = r.now()
	return rec.Clone(), nil
}

// Update mutates a record's payload, result or fields atomically. fn must not
// touch Status; if it does the record is restored and ErrStatusChange returned.
// Records already in a terminal status are not passed to fn.
func (r *Registry[P, R]) Update(id string, fn func(rec *entity.Record[P, R]) error) (entity.Record[P, R], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return entity.Record[P, R]{}, errors.Wrapf(ErrNotFound, "%s %q", r.kind, id)
	}
	if r.rules.Terminal(rec.Status) {
		return rec.Clone(), errors.Wrapf(ErrTerminal, "%s %q is %s", r.kind, id, rec.Status)
	}

	backup := rec.Clone()
	if err := fn(rec); err != nil {
		*rec = backup
		return backup.Clone(), err
	}
	if rec.Status != backup.Status {
		*rec = backup
		return backup.Clone(), errors.Wrapf(ErrStatusChange, "%s %q", r.kind, id)
	}
	rec.ID, rec.Kind, rec.CreatedAt = backup.ID, backup.Kind, backup.CreatedAt
	rec.UpdatedAt = r.now()
	return rec.Clone(), nil
}

func (r *Registry[P, R]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
