package enrichment

import (
	"context"

	"starboard/internal/common/logging"
)

// Metric names understood by the calculation executor.
const (
	MetricPricePerSqft  = "price_per_sqft"
	MetricOccupancyRate = "occupancy_rate"
	MetricPriceVsMarket = "price_vs_market"

	// metricMarketComparison is an accepted alias for MetricPriceVsMarket;
	// the output key is always price_vs_market.
	metricMarketComparison = "market_comparison"
)

// CalculationExecutor derives metrics from fields already present on the
// record plus values supplied through the enrichment context. It never calls
// out of process.
//
// Source config keys:
//   - metrics: list of metric names to compute
//
// A metric whose inputs are missing, non-numeric, or would divide by zero is
// silently omitted; unknown metric names are ignored. The executor always
// succeeds.
type CalculationExecutor struct {
	logger logging.Logger
}

// NewCalculationExecutor creates a calculation executor.
func NewCalculationExecutor(logger logging.Logger) *CalculationExecutor {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &CalculationExecutor{logger: logger}
}

// Kind reports the source kind handled by this executor.
func (e *CalculationExecutor) Kind() SourceKind {
	return KindCalculation
}

// Enrich computes the configured metrics and returns them as the result data.
func (e *CalculationExecutor) Enrich(_ context.Context, source Source, record Record, enrichCtx Context) (*Result, error) {
	metrics := stringsFromConfig(source.Config["metrics"])

	data := make(map[string]interface{})
	for _, metric := range metrics {
		switch metric {
		case MetricPricePerSqft:
			if value, ok := ratioOf(record, "price", "square_feet"); ok {
				data[MetricPricePerSqft] = value
			}
		case MetricOccupancyRate:
			if value, ok := ratioOf(record, "occupied_space", "total_space"); ok {
				data[MetricOccupancyRate] = value
			}
		case MetricPriceVsMarket, metricMarketComparison:
			price, priceOK := numericValue(record["price"])
			avg, avgOK := numericValue(valueFromContext(enrichCtx, "market_avg_price"))
			if priceOK && avgOK && avg != 0 {
				data[MetricPriceVsMarket] = price / avg
			}
		default:
			// unrecognized metric names are ignored
		}
	}

	return newSuccess(source.Name, data), nil
}

// ratioOf divides two numeric record fields, reporting false when either is
// missing, non-numeric, or the denominator is zero.
func ratioOf(record Record, numeratorKey, denominatorKey string) (float64, bool) {
	numerator, ok := numericValue(record[numeratorKey])
	if !ok {
		return 0, false
	}
	denominator, ok := numericValue(record[denominatorKey])
	if !ok || denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}

func valueFromContext(enrichCtx Context, key string) interface{} {
	if enrichCtx == nil {
		return nil
	}
	return enrichCtx[key]
}
