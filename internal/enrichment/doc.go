// Package enrichment provides the property data enrichment pipeline: a
// configurable, priority-ordered, multi-source augmentation engine that takes
// a raw property record and applies a set of enrichment sources to it, merging
// whatever each source yields back into the record.
//
// # Core Components
//
// Registry: Holds named, typed source configurations. Each source carries an
// enabled flag and an integer priority; lower priorities run earlier and ties
// preserve registration order, so enrichment order is deterministic.
//
// Executors: One strategy per source kind. The API executor POSTs the current
// record to an external endpoint and folds the JSON response back in; the
// database executor matches record fields against a lookup table through an
// abstract Lookup capability; the calculation executor derives metrics such as
// price_per_sqft locally from the record and the caller-supplied context.
//
// Enricher: The orchestrator. It selects active sources, orders them by
// priority, and runs them strictly sequentially so later sources can read
// fields written by earlier ones. Each source produces exactly one Result,
// success or failure; a failing source never prevents later sources from
// running, and a panicking executor is converted into a failed Result at the
// orchestration boundary.
//
// # Failure Semantics
//
// Failures are local and contained per source. The record is mutated in place
// with the data of every successful, field-bearing result (last writer wins on
// key collisions); callers inspect the per-source results mapping to learn
// about partial failures. There is no retry logic and no aggregate success
// flag.
//
// # Usage Example
//
//	registry := enrichment.NewRegistry()
//	registry.Register(enrichment.Source{
//		Name:     "metrics",
//		Kind:     enrichment.KindCalculation,
//		Enabled:  true,
//		Priority: 4,
//		Config: map[string]interface{}{
//			"metrics": []string{"price_per_sqft", "occupancy_rate"},
//		},
//	})
//
//	enricher := enrichment.New(registry, logger,
//		enrichment.NewCalculationExecutor(logger),
//	)
//
//	record := enrichment.Record{"price": 200000.0, "square_feet": 1000.0}
//	record, results := enricher.Enrich(ctx, record, nil, nil)
//
// # Thread Safety
//
// The Registry is safe for concurrent use and is shared by concurrent Enrich
// calls; each call operates on its own record and context and does not
// contend.
package enrichment
