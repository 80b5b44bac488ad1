package enrichment

import (
	"context"
)

// Executor runs one enrichment source against a record. Implementations map
// every execution failure into a failed Result rather than an error; a
// non-nil error is reserved for defects the orchestrator converts into a
// failed Result at its boundary.
type Executor interface {
	// Kind reports which source kind this executor handles.
	Kind() SourceKind

	// Enrich applies the source to the record and reports the outcome.
	// The record must not be mutated; derived fields go into the Result.
	Enrich(ctx context.Context, source Source, record Record, enrichCtx Context) (*Result, error)
}
