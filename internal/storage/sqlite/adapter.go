package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"starboard/internal/models"
	"starboard/internal/storage"
)

type Adapter struct {
	db     *sql.DB
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite config: %w", err)
	}

	db, err := sql.Open("sqlite3", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		db:     db,
		config: config,
	}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) Connect(config storage.StorageConfig) error {
	sqliteConfig, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("invalid config type for SQLite storage")
	}

	newAdapter, err := NewAdapter(sqliteConfig)
	if err != nil {
		return err
	}

	if a.db != nil {
		a.db.Close()
	}

	a.db = newAdapter.db
	a.config = newAdapter.config

	return nil
}

func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *Adapter) Health() error {
	return a.db.Ping()
}

func (a *Adapter) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			property_type TEXT NOT NULL DEFAULT '',
			zoning_type TEXT NOT NULL DEFAULT '',
			street TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			zip_code TEXT NOT NULL DEFAULT '',
			latitude REAL NOT NULL DEFAULT 0,
			longitude REAL NOT NULL DEFAULT 0,
			price REAL NOT NULL DEFAULT 0,
			market_value REAL NOT NULL DEFAULT 0,
			assessed_value REAL NOT NULL DEFAULT 0,
			tax_amount REAL NOT NULL DEFAULT 0,
			sale_price REAL NOT NULL DEFAULT 0,
			last_sale_date DATETIME,
			square_feet REAL NOT NULL DEFAULT 0,
			lot_size REAL NOT NULL DEFAULT 0,
			year_built INTEGER NOT NULL DEFAULT 0,
			occupied_space REAL NOT NULL DEFAULT 0,
			total_space REAL NOT NULL DEFAULT 0,
			raw_data TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_city_state ON properties (city, state)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_updated_at ON properties (updated_at)`,
		`CREATE TABLE IF NOT EXISTS property_details (
			property_id TEXT PRIMARY KEY,
			address TEXT NOT NULL DEFAULT '',
			owner_name TEXT NOT NULL DEFAULT '',
			parcel_number TEXT NOT NULL DEFAULT '',
			school_district TEXT NOT NULL DEFAULT '',
			flood_zone TEXT NOT NULL DEFAULT '',
			year_built INTEGER NOT NULL DEFAULT 0,
			lot_size REAL NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_property_details_address ON property_details (address)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS api_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			method TEXT NOT NULL,
			path TEXT NOT NULL,
			status_code INTEGER NOT NULL DEFAULT 200,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			client_ip TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Property methods

func (a *Adapter) CreateProperty(p *models.Property) error {
	rawJSON, err := marshalRawData(p.RawData)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `INSERT INTO properties (id, property_type, zoning_type, street, city, state, zip_code,
				latitude, longitude, price, market_value, assessed_value, tax_amount, sale_price, last_sale_date,
				square_feet, lot_size, year_built, occupied_space, total_space, raw_data, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = a.db.Exec(query,
		p.ID, string(p.PropertyType), string(p.ZoningType),
		p.Address.Street, p.Address.City, p.Address.State, p.Address.ZipCode,
		p.Latitude, p.Longitude,
		p.Financials.Price, p.Financials.MarketValue, p.Financials.AssessedValue,
		p.Financials.TaxAmount, p.Financials.SalePrice, p.Financials.LastSaleDate,
		p.Metrics.SquareFootage, p.Metrics.LotSize, p.Metrics.YearBuilt,
		p.Metrics.OccupiedSpace, p.Metrics.TotalSpace,
		rawJSON, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

const propertyColumns = `id, property_type, zoning_type, street, city, state, zip_code,
	latitude, longitude, price, market_value, assessed_value, tax_amount, sale_price, last_sale_date,
	square_feet, lot_size, year_built, occupied_space, total_space, raw_data, created_at, updated_at`

func (a *Adapter) GetProperty(id string) (*models.Property, error) {
	row := a.db.QueryRow(`SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)
	property, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return property, nil
}

func (a *Adapter) UpdateProperty(p *models.Property) error {
	rawJSON, err := marshalRawData(p.RawData)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	query := `UPDATE properties SET property_type = ?, zoning_type = ?, street = ?, city = ?, state = ?, zip_code = ?,
				latitude = ?, longitude = ?, price = ?, market_value = ?, assessed_value = ?, tax_amount = ?,
				sale_price = ?, last_sale_date = ?, square_feet = ?, lot_size = ?, year_built = ?,
				occupied_space = ?, total_space = ?, raw_data = ?, updated_at = ?
			  WHERE id = ?`

	result, err := a.db.Exec(query,
		string(p.PropertyType), string(p.ZoningType),
		p.Address.Street, p.Address.City, p.Address.State, p.Address.ZipCode,
		p.Latitude, p.Longitude,
		p.Financials.Price, p.Financials.MarketValue, p.Financials.AssessedValue,
		p.Financials.TaxAmount, p.Financials.SalePrice, p.Financials.LastSaleDate,
		p.Metrics.SquareFootage, p.Metrics.LotSize, p.Metrics.YearBuilt,
		p.Metrics.OccupiedSpace, p.Metrics.TotalSpace,
		rawJSON, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (a *Adapter) DeleteProperty(id string) error {
	result, err := a.db.Exec(`DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (a *Adapter) ListPropertiesWithCount(filters storage.PropertyFilters, limit, offset int) ([]*models.Property, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filters.PropertyType != "" {
		where += " AND property_type = ?"
		args = append(args, filters.PropertyType)
	}
	if filters.ZoningType != "" {
		where += " AND zoning_type = ?"
		args = append(args, filters.ZoningType)
	}
	if filters.City != "" {
		where += " AND city = ?"
		args = append(args, filters.City)
	}
	if filters.State != "" {
		where += " AND state = ?"
		args = append(args, filters.State)
	}
	if filters.MinPrice > 0 {
		where += " AND price >= ?"
		args = append(args, filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		where += " AND price <= ?"
		args = append(args, filters.MaxPrice)
	}

	var total int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM properties`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	query := `SELECT ` + propertyColumns + ` FROM properties` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := a.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, property)
	}

	return properties, total, rows.Err()
}

// Property detail methods

func (a *Adapter) UpsertPropertyDetails(propertyID string, details map[string]interface{}) error {
	query := `INSERT OR REPLACE INTO property_details
				(property_id, address, owner_name, parcel_number, school_district, flood_zone, year_built, lot_size, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`

	_, err := a.db.Exec(query, propertyID,
		stringDetail(details, "address"),
		stringDetail(details, "owner_name"),
		stringDetail(details, "parcel_number"),
		stringDetail(details, "school_district"),
		stringDetail(details, "flood_zone"),
		numberDetail(details, "year_built"),
		numberDetail(details, "lot_size"))
	if err != nil {
		return fmt.Errorf("failed to upsert property details: %w", err)
	}

	return nil
}

// lookupTables are the tables exposed to the enrichment pipeline.
var lookupTables = map[string]bool{
	"properties":       true,
	"property_details": true,
}

var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func (a *Adapter) LookupFields(ctx context.Context, table string, match map[string]interface{}) (map[string]interface{}, error) {
	if !lookupTables[table] {
		return nil, fmt.Errorf("table %s is not available for lookup", table)
	}

	columns := make([]string, 0, len(match))
	for column := range match {
		if !identifierPattern.MatchString(column) {
			return nil, fmt.Errorf("invalid lookup column: %s", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	conditions := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		conditions[i] = column + " = ?"
		args[i] = match[column]
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", table, strings.Join(conditions, " AND "))

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return map[string]interface{}{}, rows.Err()
	}

	return scanRowAsMap(rows)
}

// Settings methods

func (a *Adapter) GetSetting(key string) (string, error) {
	var value string
	err := a.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil // Setting doesn't exist
	}
	return value, err
}

func (a *Adapter) SetSetting(key, value string) error {
	_, err := a.db.Exec(`INSERT OR REPLACE INTO settings (key, value, updated_at)
					  VALUES (?, ?, CURRENT_TIMESTAMP)`, key, value)
	return err
}

func (a *Adapter) GetAllSettings() (map[string]string, error) {
	rows, err := a.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

// Request log methods

func (a *Adapter) CreateAPILog(log *storage.APILog) error {
	query := `INSERT INTO api_logs (method, path, status_code, duration_ms, client_ip)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := a.db.Exec(query, log.Method, log.Path, log.StatusCode, log.DurationMS, log.ClientIP)
	if err != nil {
		return fmt.Errorf("failed to create api log: %w", err)
	}

	return nil
}

// Market statistics

func (a *Adapter) GetMarketStats(since time.Time) (*models.MarketStats, error) {
	rows, err := a.db.Query(
		`SELECT price, square_feet FROM properties WHERE updated_at >= ? AND price > 0 ORDER BY price`,
		since)
	if err != nil {
		return nil, fmt.Errorf("failed to query market stats: %w", err)
	}
	defer rows.Close()

	var prices []float64
	var pricePerSqftSum float64
	var pricePerSqftCount int

	for rows.Next() {
		var price, squareFeet float64
		if err := rows.Scan(&price, &squareFeet); err != nil {
			return nil, fmt.Errorf("failed to scan market stats row: %w", err)
		}
		prices = append(prices, price)
		if squareFeet > 0 {
			pricePerSqftSum += price / squareFeet
			pricePerSqftCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return computeMarketStats(prices, pricePerSqftSum, pricePerSqftCount), nil
}

// computeMarketStats derives aggregate statistics from a price list already
// sorted ascending.
func computeMarketStats(sortedPrices []float64, pricePerSqftSum float64, pricePerSqftCount int) *models.MarketStats {
	stats := &models.MarketStats{
		PropertyCount: len(sortedPrices),
		ComputedAt:    time.Now().UTC(),
	}

	if len(sortedPrices) == 0 {
		return stats
	}

	var sum float64
	for _, price := range sortedPrices {
		sum += price
	}
	stats.AveragePrice = sum / float64(len(sortedPrices))

	mid := len(sortedPrices) / 2
	if len(sortedPrices)%2 == 0 {
		stats.MedianPrice = (sortedPrices[mid-1] + sortedPrices[mid]) / 2
	} else {
		stats.MedianPrice = sortedPrices[mid]
	}

	if pricePerSqftCount > 0 {
		stats.AveragePricePerSqft = pricePerSqftSum / float64(pricePerSqftCount)
	}

	return stats
}

// Scan helpers

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	p := &models.Property{}
	var propertyType, zoningType, rawJSON string
	var lastSaleDate sql.NullTime

	err := row.Scan(&p.ID, &propertyType, &zoningType,
		&p.Address.Street, &p.Address.City, &p.Address.State, &p.Address.ZipCode,
		&p.Latitude, &p.Longitude,
		&p.Financials.Price, &p.Financials.MarketValue, &p.Financials.AssessedValue,
		&p.Financials.TaxAmount, &p.Financials.SalePrice, &lastSaleDate,
		&p.Metrics.SquareFootage, &p.Metrics.LotSize, &p.Metrics.YearBuilt,
		&p.Metrics.OccupiedSpace, &p.Metrics.TotalSpace,
		&rawJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.PropertyType = models.PropertyType(propertyType)
	p.ZoningType = models.ZoningType(zoningType)

	if lastSaleDate.Valid {
		t := lastSaleDate.Time
		p.Financials.LastSaleDate = &t
	}

	if rawJSON != "" && rawJSON != "{}" {
		if err := json.Unmarshal([]byte(rawJSON), &p.RawData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw data: %w", err)
		}
	}

	return p, nil
}

func scanRowAsMap(rows *sql.Rows) (map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	if err := rows.Scan(pointers...); err != nil {
		return nil, fmt.Errorf("failed to scan lookup row: %w", err)
	}

	result := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		value := values[i]
		if value == nil {
			continue
		}
		if b, ok := value.([]byte); ok {
			value = string(b)
		}
		result[column] = value
	}

	return result, nil
}

func marshalRawData(raw map[string]interface{}) (string, error) {
	if raw == nil {
		return "{}", nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to marshal raw data: %w", err)
	}
	return string(data), nil
}

func stringDetail(details map[string]interface{}, key string) string {
	if s, ok := details[key].(string); ok {
		return s
	}
	return ""
}

func numberDetail(details map[string]interface{}, key string) float64 {
	switch n := details[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
