package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starboard/internal/config"
	"starboard/internal/enrichment"
	"starboard/internal/handlers"
	"starboard/internal/models"
	"starboard/internal/storage"
	"starboard/internal/storage/sqlite"
)

type testEnv struct {
	router  *mux.Router
	storage storage.Storage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	adapter, err := sqlite.NewAdapter(&sqlite.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	registry := enrichment.NewRegistry()
	require.NoError(t, registry.Register(enrichment.Source{
		Name:     "property_details",
		Kind:     enrichment.KindDatabase,
		Enabled:  true,
		Priority: 2,
		Config: map[string]interface{}{
			"table":        "property_details",
			"match_fields": []string{"property_id"},
		},
	}))
	require.NoError(t, registry.Register(enrichment.Source{
		Name:     "metrics",
		Kind:     enrichment.KindCalculation,
		Enabled:  true,
		Priority: 4,
		Config: map[string]interface{}{
			"metrics": []string{"price_per_sqft", "occupancy_rate", "price_vs_market"},
		},
	}))

	enricher := enrichment.New(registry, nil,
		enrichment.NewDatabaseExecutor(adapter, nil),
		enrichment.NewCalculationExecutor(nil),
	)

	h := handlers.New(adapter, nil, &config.Config{}, enricher)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	return &testEnv{router: router, storage: adapter}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestPropertyCRUDEndpoints(t *testing.T) {
	env := newTestEnv(t)

	created := env.do(t, http.MethodPost, "/api/v1/properties", map[string]interface{}{
		"property_type": "residential",
		"address": map[string]string{
			"street": "123 Main St",
			"city":   "Austin",
			"state":  "TX",
		},
		"financials": map[string]interface{}{"price": 450000},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var property models.Property
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &property))
	assert.NotEmpty(t, property.ID, "expected generated property ID")

	got := env.do(t, http.MethodGet, "/api/v1/properties/"+property.ID, nil)
	require.Equal(t, http.StatusOK, got.Code)

	var fetched models.Property
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &fetched))
	assert.Equal(t, "Austin", fetched.Address.City)
	assert.Equal(t, float64(450000), fetched.Financials.Price)

	fetched.Financials.Price = 475000
	updated := env.do(t, http.MethodPut, "/api/v1/properties/"+property.ID, fetched)
	require.Equal(t, http.StatusOK, updated.Code)

	deleted := env.do(t, http.MethodDelete, "/api/v1/properties/"+property.ID, nil)
	assert.Equal(t, http.StatusNoContent, deleted.Code)

	missing := env.do(t, http.MethodGet, "/api/v1/properties/"+property.ID, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestPropertyEndpointNotFound(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/properties/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/properties/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/v1/properties/nope", map[string]interface{}{}).Code)
}

func TestListPropertiesFiltersAndPagination(t *testing.T) {
	env := newTestEnv(t)

	for _, city := range []string{"Austin", "Austin", "Dallas"} {
		rec := env.do(t, http.MethodPost, "/api/v1/properties", map[string]interface{}{
			"property_type": "residential",
			"address":       map[string]string{"city": city, "state": "TX"},
			"financials":    map[string]interface{}{"price": 300000},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var listing struct {
		Properties []models.Property `json:"properties"`
		Total      int               `json:"total"`
		Limit      int               `json:"limit"`
	}

	all := env.do(t, http.MethodGet, "/api/v1/properties", nil)
	require.Equal(t, http.StatusOK, all.Code)
	require.NoError(t, json.Unmarshal(all.Body.Bytes(), &listing))
	assert.Equal(t, 3, listing.Total)

	filtered := env.do(t, http.MethodGet, "/api/v1/properties?city=Dallas", nil)
	require.Equal(t, http.StatusOK, filtered.Code)
	require.NoError(t, json.Unmarshal(filtered.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Total)

	paged := env.do(t, http.MethodGet, "/api/v1/properties?limit=2", nil)
	require.Equal(t, http.StatusOK, paged.Code)
	require.NoError(t, json.Unmarshal(paged.Body.Bytes(), &listing))
	assert.Equal(t, 3, listing.Total)
	assert.Len(t, listing.Properties, 2)

	badPrice := env.do(t, http.MethodGet, "/api/v1/properties?min_price=abc", nil)
	assert.Equal(t, http.StatusBadRequest, badPrice.Code)
}

func TestEnrichRecordEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/enrich", map[string]interface{}{
		"record": map[string]interface{}{
			"price":       200000,
			"square_feet": 1000,
		},
		"sources": []string{"metrics"},
		"context": map[string]interface{}{"market_avg_price": 100000},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Record  map[string]interface{}        `json:"record"`
		Results map[string]*enrichment.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, float64(200), resp.Record["price_per_sqft"])
	assert.Equal(t, float64(2), resp.Record["price_vs_market"])
	require.Contains(t, resp.Results, "metrics")
	assert.True(t, resp.Results["metrics"].Success)
}

func TestEnrichRecordRequiresRecord(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/enrich", map[string]interface{}{
		"sources": []string{"metrics"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrichPropertyEndpoint(t *testing.T) {
	env := newTestEnv(t)

	created := env.do(t, http.MethodPost, "/api/v1/properties", map[string]interface{}{
		"property_type": "commercial",
		"address":       map[string]string{"street": "500 Congress Ave", "city": "Austin"},
		"metrics":       map[string]interface{}{"square_footage": 2000},
		"financials":    map[string]interface{}{"price": 1000000},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var property models.Property
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &property))

	rec := env.do(t, http.MethodPost, "/api/v1/properties/"+property.ID+"/enrich", map[string]interface{}{
		"sources": []string{"metrics"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Record  map[string]interface{}        `json:"record"`
		Results map[string]*enrichment.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(500), resp.Record["price_per_sqft"])

	// Enriched output lands in the details table for later database lookups.
	details, err := env.storage.LookupFields(context.Background(), "property_details", map[string]interface{}{
		"property_id": property.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, details)

	notFound := env.do(t, http.MethodPost, "/api/v1/properties/nope/enrich", nil)
	assert.Equal(t, http.StatusNotFound, notFound.Code)
}

func TestSourceManagementEndpoints(t *testing.T) {
	env := newTestEnv(t)

	list := env.do(t, http.MethodGet, "/api/v1/enrichment/sources", nil)
	require.Equal(t, http.StatusOK, list.Code)

	var listing struct {
		Sources []struct {
			Name    string `json:"name"`
			Enabled bool   `json:"enabled"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listing))
	require.Len(t, listing.Sources, 2)

	// Config is never exposed through the listing.
	assert.NotContains(t, list.Body.String(), "api_key")
	assert.NotContains(t, list.Body.String(), "match_fields")

	disabled := env.do(t, http.MethodPatch, "/api/v1/enrichment/sources/metrics", map[string]interface{}{
		"enabled": false,
	})
	require.Equal(t, http.StatusOK, disabled.Code)

	var view struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(disabled.Body.Bytes(), &view))
	assert.False(t, view.Enabled)

	// Disabled sources no longer run.
	rec := env.do(t, http.MethodPost, "/api/v1/enrich", map[string]interface{}{
		"record":  map[string]interface{}{"price": 100, "square_feet": 10},
		"sources": []string{"metrics"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Record map[string]interface{} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Record, "price_per_sqft")

	missingName := env.do(t, http.MethodPatch, "/api/v1/enrichment/sources/ghost", map[string]interface{}{
		"enabled": true,
	})
	assert.Equal(t, http.StatusNotFound, missingName.Code)

	missingBody := env.do(t, http.MethodPatch, "/api/v1/enrichment/sources/metrics", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, missingBody.Code)
}

func TestMarketUpdatesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	for _, price := range []float64{100000, 200000, 300000} {
		rec := env.do(t, http.MethodPost, "/api/v1/properties", map[string]interface{}{
			"property_type": "residential",
			"financials":    map[string]interface{}{"price": price},
			"metrics":       map[string]interface{}{"square_footage": 1000},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	first := env.do(t, http.MethodGet, "/api/v1/market/updates?timeframe=24h", nil)
	require.Equal(t, http.StatusOK, first.Code)

	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var resp struct {
		Timeframe string             `json:"timeframe"`
		Stats     models.MarketStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
	assert.Equal(t, "24h", resp.Timeframe)
	assert.Equal(t, 3, resp.Stats.PropertyCount)
	assert.Equal(t, float64(200000), resp.Stats.AveragePrice)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/updates?timeframe=24h", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	// New data invalidates the validator: the stale ETag gets a full response
	created := env.do(t, http.MethodPost, "/api/v1/properties", map[string]interface{}{
		"property_type": "residential",
		"financials":    map[string]interface{}{"price": 400000},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	staleReq := httptest.NewRequest(http.MethodGet, "/api/v1/market/updates?timeframe=24h", nil)
	staleReq.Header.Set("If-None-Match", etag)
	staleRec := httptest.NewRecorder()
	env.router.ServeHTTP(staleRec, staleReq)
	assert.Equal(t, http.StatusOK, staleRec.Code)
	assert.NotEqual(t, etag, staleRec.Header().Get("ETag"))

	invalid := env.do(t, http.MethodGet, "/api/v1/market/updates?timeframe=1y", nil)
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	basic := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, basic.Code)

	detailed := env.do(t, http.MethodGet, "/health/detailed", nil)
	require.Equal(t, http.StatusOK, detailed.Code)

	var health struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
		Enrichment map[string]int    `json:"enrichment"`
	}
	require.NoError(t, json.Unmarshal(detailed.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"])
	assert.Equal(t, "disabled", health.Components["redis"])
	assert.Equal(t, 2, health.Enrichment["sources_registered"])
}
