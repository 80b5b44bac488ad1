package enrichment

import (
	"starboard/internal/config"
)

// RegisterDefaultSources registers the standard property enrichment sources.
// API endpoints and credentials come from the environment config; sources
// left unconfigured still register and surface a failure result when run, so
// operators see them in the source listing.
func RegisterDefaultSources(registry *Registry, cfg *config.Config) error {
	sources := []Source{
		{
			Name:     "geocoding",
			Kind:     KindAPI,
			Enabled:  true,
			Priority: 1,
			Config: map[string]interface{}{
				"api_url": cfg.GeocodingAPIURL,
				"api_key": cfg.GeocodingAPIKey,
			},
		},
		{
			Name:     "property_details",
			Kind:     KindDatabase,
			Enabled:  true,
			Priority: 2,
			Config: map[string]interface{}{
				"table":        "property_details",
				"match_fields": []string{"property_id", "address"},
			},
		},
		{
			Name:     "market_data",
			Kind:     KindAPI,
			Enabled:  true,
			Priority: 3,
			Config: map[string]interface{}{
				"api_url": cfg.MarketDataAPIURL,
				"api_key": cfg.MarketDataAPIKey,
			},
		},
		{
			Name:     "metrics",
			Kind:     KindCalculation,
			Enabled:  true,
			Priority: 4,
			Config: map[string]interface{}{
				"metrics": []string{
					MetricPricePerSqft,
					MetricOccupancyRate,
					MetricPriceVsMarket,
				},
			},
		},
	}

	for _, source := range sources {
		if err := registry.Register(source); err != nil {
			return err
		}
	}
	return nil
}
