package enrichment

import (
	"context"
	"fmt"

	"starboard/internal/common/logging"
)

// Enricher runs records through the registered sources in priority order,
// merging successful results into the record as it goes.
type Enricher struct {
	registry  *Registry
	executors map[SourceKind]Executor
	logger    logging.Logger
}

// New creates an enricher that dispatches to the given executors. Sources
// whose kind has no executor are skipped at enrichment time.
func New(registry *Registry, logger logging.Logger, executors ...Executor) *Enricher {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	byKind := make(map[SourceKind]Executor, len(executors))
	for _, executor := range executors {
		byKind[executor.Kind()] = executor
	}

	return &Enricher{
		registry:  registry,
		executors: byKind,
		logger:    logger,
	}
}

// Registry returns the source registry backing this enricher.
func (e *Enricher) Registry() *Registry {
	return e.registry
}

// Enrich runs record through the active sources, in ascending priority order,
// and returns the merged record together with the per-source results.
//
// If requested is non-empty, only those sources run; otherwise every enabled
// source runs. One source failing never stops the ones after it, so a merged
// record may reflect a subset of sources. Later sources see the fields merged
// by earlier ones, and on key collisions the later source wins.
func (e *Enricher) Enrich(ctx context.Context, record Record, requested []string, enrichCtx Context) (Record, map[string]*Result) {
	if record == nil {
		record = make(Record)
	}

	results := make(map[string]*Result)

	for _, source := range e.registry.ListActive(requested) {
		executor, ok := e.executors[source.Kind]
		if !ok {
			e.logger.Warn("No executor for enrichment source kind",
				logging.String("source", source.Name),
				logging.String("kind", string(source.Kind)),
			)
			continue
		}

		result := e.run(ctx, executor, source, record, enrichCtx)
		results[source.Name] = result

		if result.Success && len(result.Data) > 0 {
			for key, value := range result.Data {
				record[key] = value
			}
		}

		if !result.Success {
			e.logger.Warn("Enrichment source failed",
				logging.String("source", source.Name),
				logging.Any("errors", result.Errors),
			)
		}
	}

	return record, results
}

// run executes one source, converting executor errors and panics into failed
// results so a broken source cannot take down the whole pipeline.
func (e *Enricher) run(ctx context.Context, executor Executor, source Source, record Record, enrichCtx Context) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Enrichment source panicked", fmt.Errorf("%v", r),
				logging.String("source", source.Name),
			)
			result = newFailure(source.Name, fmt.Sprintf("enrichment panicked: %v", r))
		}
	}()

	result, err := executor.Enrich(ctx, source, record, enrichCtx)
	if err != nil {
		return newFailure(source.Name, err.Error())
	}
	if result == nil {
		return newFailure(source.Name, "enrichment returned no result")
	}
	return result
}
