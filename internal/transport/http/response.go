package httptransport

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"

	"surfaceflow/internal/registry"
)

type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Success: false, Error: msg})
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

const (
	defaultPage    = 1
	defaultPerPage = 10
)

type pageParams struct {
	Page    int
	PerPage int
}

func (p pageParams) window() registry.Page {
	return registry.Page{Offset: (p.Page - 1) * p.PerPage, Limit: p.PerPage}
}

// parsePage reads page (1-based) and per_page from the query string.
func parsePage(r *http.Request) (pageParams, error) {
	p := pageParams{Page: defaultPage, PerPage: defaultPerPage}
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errors.New("page must be a positive integer")
		}
		p.Page = n
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errors.New("per_page must be a positive integer")
		}
		p.PerPage = n
	}
	return p, nil
}
