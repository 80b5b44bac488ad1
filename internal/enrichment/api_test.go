package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func apiSource(url, key string) Source {
	return Source{
		Name:     "geocoding",
		Kind:     KindAPI,
		Enabled:  true,
		Priority: 1,
		Config: map[string]interface{}{
			"api_url": url,
			"api_key": key,
		},
	}
}

func TestAPIExecutor_Success(t *testing.T) {
	var gotMethod, gotContentType, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"latitude":  30.2672,
			"longitude": -97.7431,
		})
	}))
	defer server.Close()

	executor := NewAPIExecutor(5*time.Second, nil)

	record := Record{"address": "123 Main St", "city": "Austin"}
	result, err := executor.Enrich(context.Background(), apiSource(server.URL, "secret-key"), record, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected application/json content type, got %q", gotContentType)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotBody["address"] != "123 Main St" {
		t.Errorf("expected record to be sent as request body, got %v", gotBody)
	}

	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if result.Data["latitude"] != 30.2672 {
		t.Errorf("expected latitude in result data, got %v", result.Data)
	}
	if result.Source != "geocoding" {
		t.Errorf("expected source name geocoding, got %q", result.Source)
	}
}

func TestAPIExecutor_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	executor := NewAPIExecutor(5*time.Second, nil)

	result, _ := executor.Enrich(context.Background(), apiSource(server.URL, ""), Record{}, nil)
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if gotAuth != "" {
		t.Errorf("expected no auth header, got %q", gotAuth)
	}
}

func TestAPIExecutor_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	executor := NewAPIExecutor(5*time.Second, nil)

	result, err := executor.Enrich(context.Background(), apiSource(server.URL, ""), Record{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for non-2xx status")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "API error: upstream unavailable") {
		t.Errorf("expected API error with response body, got %v", result.Errors)
	}
}

func TestAPIExecutor_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	executor := NewAPIExecutor(time.Second, nil)

	result, err := executor.Enrich(context.Background(), apiSource(server.URL, ""), Record{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for unreachable endpoint")
	}
	if !strings.Contains(result.Errors[0], "API enrichment failed") {
		t.Errorf("expected transport failure message, got %v", result.Errors)
	}
}

func TestAPIExecutor_MissingURL(t *testing.T) {
	executor := NewAPIExecutor(time.Second, nil)

	result, err := executor.Enrich(context.Background(), apiSource("", ""), Record{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure when api_url is not configured")
	}
}

func TestAPIExecutor_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	executor := NewAPIExecutor(time.Second, nil)

	result, _ := executor.Enrich(context.Background(), apiSource(server.URL, ""), Record{}, nil)
	if result.Success {
		t.Fatal("expected failure for unparseable response body")
	}
	if !strings.Contains(result.Errors[0], "API enrichment failed") {
		t.Errorf("expected parse failure message, got %v", result.Errors)
	}
}
