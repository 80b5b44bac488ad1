package enrichment

import (
	"encoding/json"
	"time"
)

// SourceKind identifies which executor handles a source.
type SourceKind string

const (
	// KindAPI sources call an external HTTP endpoint
	KindAPI SourceKind = "api"
	// KindDatabase sources match record fields against a lookup table
	KindDatabase SourceKind = "database"
	// KindCalculation sources derive metrics locally from the record
	KindCalculation SourceKind = "calculation"
)

// Record is the open field mapping being enriched. It is owned by the caller;
// the pipeline merges successful results into it and never removes fields.
type Record map[string]interface{}

// Context is auxiliary read-only data supplied alongside a record for
// calculation sources (e.g. market averages). The pipeline never mutates it.
type Context map[string]interface{}

// Source is the configuration for one enrichment source.
type Source struct {
	Name     string                 `json:"name"`
	Kind     SourceKind             `json:"kind"`
	Enabled  bool                   `json:"enabled"`
	Priority int                    `json:"priority"`
	Config   map[string]interface{} `json:"config,omitempty"`
}

// Result is the outcome of one enrichment attempt by one source.
// Data is only present on success, and Errors is non-empty exactly when
// Success is false.
type Result struct {
	Source    string                 `json:"source"`
	Success   bool                   `json:"success"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Errors    []string               `json:"errors,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// newSuccess builds a successful result carrying the derived fields.
func newSuccess(source string, data map[string]interface{}) *Result {
	return &Result{
		Source:    source,
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// newFailure builds a failed result carrying the failure descriptions.
func newFailure(source string, errs ...string) *Result {
	return &Result{
		Source:    source,
		Success:   false,
		Errors:    errs,
		Timestamp: time.Now().UTC(),
	}
}

// stringsFromConfig coerces a config value into a string slice. Values decoded
// from JSON arrive as []interface{}, values built in code as []string.
func stringsFromConfig(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// numericValue coerces a record or context value into a float64. Values
// decoded from JSON arrive as float64 or json.Number; values built in code
// may be any integer or float type. nil and non-numeric values report false.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
