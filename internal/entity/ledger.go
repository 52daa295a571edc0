package entity

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

var (
	// ErrLedgerSchema marks an append whose columns differ from the header
	// fixed by the first row of that kind.
	ErrLedgerSchema = errors.New("ledger: row does not match header")
	// ErrLedgerIO marks storage failures. Callers treat them as best effort.
	ErrLedgerIO = errors.New("ledger: storage failure")
)

// LedgerKind names one append-only audit store.
type LedgerKind string

const (
	LedgerHotelSearches    LedgerKind = "hotel_searches"
	LedgerBookingApprovals LedgerKind = "booking_approvals"
	LedgerLeadEnrichments  LedgerKind = "lead_enrichments"
)

// LedgerKinds lists every known kind.
func LedgerKinds() []LedgerKind {
	return []LedgerKind{LedgerHotelSearches, LedgerBookingApprovals, LedgerLeadEnrichments}
}

// ParseLedgerKind accepts only the names returned by LedgerKinds.
func ParseLedgerKind(s string) (LedgerKind, error) {
	for _, k := range LedgerKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Newf("unknown ledger %q", s)
}

type LedgerField struct {
	Name  string
	Value string
}

// LedgerRow is a flat, ordered row. Column order is significant: the first
// row appended to a kind fixes its header.
type LedgerRow []LedgerField

func (r LedgerRow) Names() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Name
	}
	return out
}

func (r LedgerRow) Values() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Value
	}
	return out
}

func (r LedgerRow) Get(name string) string {
	for _, f := range r {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// ZipRow pairs a header with a value slice. Missing values become "".
func ZipRow(names, values []string) LedgerRow {
	row := make(LedgerRow, len(names))
	for i, n := range names {
		row[i].Name = n
		if i < len(values) {
			row[i].Value = values[i]
		}
	}
	return row
}

// MarshalJSON writes the row as an object, keeping column order.
func (r LedgerRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
