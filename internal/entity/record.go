package entity

import (
	"maps"
	"time"
)

// Kind is the workflow a record belongs to.
type Kind string

const (
	KindAutomation Kind = "automation"
	KindBooking    Kind = "booking"
	KindEnrichment Kind = "enrichment"
)

type Status string

const (
	StatusRunning         Status = "running"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
)

// Record is one workflow job held by a registry. Payload is what the caller
// supplied, Result is what a fixture generator produced for it.
type Record[P, R any] struct {
	ID        string            `json:"id"`
	Kind      Kind              `json:"kind"`
	Status    Status            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Payload   P                 `json:"payload"`
	Result    R                 `json:"result"`
	Fields    map[string]any    `json:"fields,omitempty"`
	Tags      map[string]string `json:"-"`
}

// Clone returns a copy whose maps can be mutated independently.
func (r *Record[P, R]) Clone() Record[P, R] {
	cp := *r
	cp.Fields = maps.Clone(r.Fields)
	cp.Tags = maps.Clone(r.Tags)
	return cp
}

// Field returns an extra field merged in by a transition.
func (r *Record[P, R]) Field(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// FieldString is Field for string values; missing or non-string gives "".
func (r *Record[P, R]) FieldString(name string) string {
	v, ok := r.Fields[name].(string)
	if !ok {
		return ""
	}
	return v
}
