package models

import (
	"time"
)

// PropertyType classifies a property by its primary use.
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "residential"
	PropertyTypeCommercial  PropertyType = "commercial"
	PropertyTypeIndustrial  PropertyType = "industrial"
	PropertyTypeLand        PropertyType = "land"
)

// ZoningType classifies the zoning designation of a property's lot.
type ZoningType string

const (
	ZoningResidential  ZoningType = "residential"
	ZoningCommercial   ZoningType = "commercial"
	ZoningIndustrial   ZoningType = "industrial"
	ZoningMixed        ZoningType = "mixed"
	ZoningAgricultural ZoningType = "agricultural"
)

// Property is a real estate record tracked by the system.
// The free-form RawData field preserves whatever the source API returned
// so records can be reprocessed when enrichment sources change.
type Property struct {
	ID           string       `json:"id"`
	PropertyType PropertyType `json:"property_type"`
	ZoningType   ZoningType   `json:"zoning_type"`

	Address    Address            `json:"address"`
	Metrics    PropertyMetrics    `json:"metrics"`
	Financials PropertyFinancials `json:"financials"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	RawData map[string]interface{} `json:"raw_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address is the postal location of a property.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

// PropertyMetrics holds the physical measurements of a property.
type PropertyMetrics struct {
	SquareFootage float64 `json:"square_footage"`
	LotSize       float64 `json:"lot_size"`
	YearBuilt     int     `json:"year_built"`
	OccupiedSpace float64 `json:"occupied_space"`
	TotalSpace    float64 `json:"total_space"`
}

// PropertyFinancials holds valuation and sale data for a property.
type PropertyFinancials struct {
	Price         float64    `json:"price"`
	MarketValue   float64    `json:"market_value"`
	AssessedValue float64    `json:"assessed_value"`
	TaxAmount     float64    `json:"tax_amount"`
	SalePrice     float64    `json:"sale_price,omitempty"`
	LastSaleDate  *time.Time `json:"last_sale_date,omitempty"`
}

// MarketStats is an aggregate view over stored properties, used by the
// market endpoints and as enrichment context for calculation sources.
type MarketStats struct {
	AveragePrice        float64   `json:"average_price"`
	MedianPrice         float64   `json:"median_price"`
	AveragePricePerSqft float64   `json:"average_price_per_sqft"`
	PropertyCount       int       `json:"property_count"`
	ComputedAt          time.Time `json:"computed_at"`
}

// ToRecord flattens a property into the open field mapping consumed by the
// enrichment pipeline. Zero-valued numeric fields are omitted so that the
// calculation executor's presence guards behave the same as for records
// built directly from raw source payloads.
func (p *Property) ToRecord() map[string]interface{} {
	record := map[string]interface{}{
		"property_id":   p.ID,
		"property_type": string(p.PropertyType),
		"zoning_type":   string(p.ZoningType),
	}

	if p.Address.Street != "" {
		record["address"] = p.Address.Street
	}
	if p.Address.City != "" {
		record["city"] = p.Address.City
	}
	if p.Address.State != "" {
		record["state"] = p.Address.State
	}
	if p.Address.ZipCode != "" {
		record["zip_code"] = p.Address.ZipCode
	}

	if p.Latitude != 0 || p.Longitude != 0 {
		record["latitude"] = p.Latitude
		record["longitude"] = p.Longitude
	}

	if p.Financials.Price != 0 {
		record["price"] = p.Financials.Price
	}
	if p.Financials.MarketValue != 0 {
		record["market_value"] = p.Financials.MarketValue
	}
	if p.Financials.AssessedValue != 0 {
		record["assessed_value"] = p.Financials.AssessedValue
	}

	if p.Metrics.SquareFootage != 0 {
		record["square_feet"] = p.Metrics.SquareFootage
	}
	if p.Metrics.LotSize != 0 {
		record["lot_size"] = p.Metrics.LotSize
	}
	if p.Metrics.YearBuilt != 0 {
		record["year_built"] = p.Metrics.YearBuilt
	}
	if p.Metrics.OccupiedSpace != 0 {
		record["occupied_space"] = p.Metrics.OccupiedSpace
	}
	if p.Metrics.TotalSpace != 0 {
		record["total_space"] = p.Metrics.TotalSpace
	}

	return record
}
