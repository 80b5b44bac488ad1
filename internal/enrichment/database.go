package enrichment

import (
	"context"
	"fmt"

	"starboard/internal/common/logging"
)

// Lookup resolves a single row of supplemental data for a record. The match
// map holds column/value pairs taken from the record; implementations return
// an empty map when no row matches.
type Lookup interface {
	LookupFields(ctx context.Context, table string, match map[string]interface{}) (map[string]interface{}, error)
}

// DatabaseExecutor enriches records by joining them against local tables
// through a Lookup, typically backed by the storage layer.
//
// Source config keys:
//   - table: table to query (required)
//   - match_fields: record keys used to build the lookup filter; only keys
//     present in the record are used
type DatabaseExecutor struct {
	lookup Lookup
	logger logging.Logger
}

// NewDatabaseExecutor creates a database executor backed by the given Lookup.
func NewDatabaseExecutor(lookup Lookup, logger logging.Logger) *DatabaseExecutor {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &DatabaseExecutor{
		lookup: lookup,
		logger: logger,
	}
}

// Kind reports the source kind handled by this executor.
func (e *DatabaseExecutor) Kind() SourceKind {
	return KindDatabase
}

// Enrich looks up supplemental fields for the record. A record that carries
// none of the configured match fields fails rather than scanning the table
// unfiltered.
func (e *DatabaseExecutor) Enrich(ctx context.Context, source Source, record Record, _ Context) (*Result, error) {
	table, _ := source.Config["table"].(string)
	if table == "" {
		return newFailure(source.Name, "Database enrichment failed: table is not configured"), nil
	}

	matchFields := stringsFromConfig(source.Config["match_fields"])

	// Key presence is what counts; a field explicitly set to null still
	// participates in the filter.
	match := make(map[string]interface{})
	for _, field := range matchFields {
		if value, ok := record[field]; ok {
			match[field] = value
		}
	}

	if len(match) == 0 {
		return newFailure(source.Name, "No matching fields found"), nil
	}

	data, err := e.lookup.LookupFields(ctx, table, match)
	if err != nil {
		return newFailure(source.Name, fmt.Sprintf("Database enrichment failed: %v", err)), nil
	}

	return newSuccess(source.Name, data), nil
}
