package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/graceflow/graceflow-api/internal/infra/resilience"
)

// ============================================================
// Shared helpers
// ============================================================

const (
	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
)

// statusError is a non-2xx answer from Supabase.
type statusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("supabase %s %s returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// classifyStatus marks client errors as permanent. Rate limiting and
// server errors stay retryable.
func classifyStatus(err *statusError) error {
	if err.Code >= 400 && err.Code < 500 && err.Code != http.StatusTooManyRequests && err.Code != http.StatusRequestTimeout {
		return resilience.Permanent(err)
	}
	return err
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// eq builds a PostgREST equality filter with an escaped value.
func eq(column, value string) string {
	return column + "=eq." + url.QueryEscape(value)
}

// decodeRows decodes a PostgREST array body. An empty body decodes to no rows.
func decodeRows[T any](body []byte, what string) ([]T, error) {
	if len(body) == 0 {
		return []T{}, nil
	}
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, resilience.Permanent(fmt.Errorf("decode %s: %w", what, err))
	}
	return rows, nil
}

// decodeOne decodes the single row returned by an insert with return=representation.
func decodeOne[T any](body []byte, what string) (*T, error) {
	rows, err := decodeRows[T](body, what)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no result from %s insert", what)
	}
	return &rows[0], nil
}
