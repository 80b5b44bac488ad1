package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"starboard/internal/circuitbreaker"
	commonhttp "starboard/internal/common/http"
	"starboard/internal/common/logging"
)

// APIExecutor enriches records by POSTing them to an external HTTP endpoint.
//
// The current record is sent as the JSON request body; a success-class
// response is parsed as a JSON object and returned as the result's data. An
// optional api_key config value is attached as a bearer Authorization header.
// Every outbound call is bounded by the executor's request timeout and runs
// through a per-endpoint circuit breaker, the same way other outbound HTTP
// calls in this codebase do.
//
// Source config keys:
//   - api_url: endpoint URL (required)
//   - api_key: credential sent as "Authorization: Bearer <key>" (optional)
type APIExecutor struct {
	client *http.Client
	logger logging.Logger

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.Breaker
}

// NewAPIExecutor creates an API executor whose outbound requests are bounded
// by the given timeout.
func NewAPIExecutor(timeout time.Duration, logger logging.Logger) *APIExecutor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &APIExecutor{
		client:   commonhttp.NewHTTPClientWithTimeout(timeout),
		logger:   logger,
		breakers: make(map[string]*circuitbreaker.Breaker),
	}
}

// Kind reports the source kind handled by this executor.
func (e *APIExecutor) Kind() SourceKind {
	return KindAPI
}

// Enrich POSTs the record to the source's endpoint and maps the response
// into a Result. All failures are captured in the Result; the returned error
// is always nil.
func (e *APIExecutor) Enrich(ctx context.Context, source Source, record Record, _ Context) (*Result, error) {
	apiURL, _ := source.Config["api_url"].(string)
	if apiURL == "" {
		return newFailure(source.Name, "API enrichment failed: api_url is not configured"), nil
	}
	apiKey, _ := source.Config["api_key"].(string)

	body, err := json.Marshal(record)
	if err != nil {
		return newFailure(source.Name, fmt.Sprintf("API enrichment failed: %v", err)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return newFailure(source.Name, fmt.Sprintf("API enrichment failed: %v", err)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	var resp *http.Response
	execErr := e.breakerFor(source.Name).Execute(ctx, func() error {
		var httpErr error
		resp, httpErr = e.client.Do(req)
		return httpErr
	})
	if execErr != nil {
		return newFailure(source.Name, fmt.Sprintf("API enrichment failed: %v", execErr)), nil
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return newFailure(source.Name, fmt.Sprintf("API enrichment failed: %v", err)), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newFailure(source.Name, fmt.Sprintf("API error: %s", string(responseBody))), nil
	}

	var enriched map[string]interface{}
	if err := json.Unmarshal(responseBody, &enriched); err != nil {
		return newFailure(source.Name, fmt.Sprintf("API enrichment failed: %v", err)), nil
	}

	return newSuccess(source.Name, enriched), nil
}

// breakerFor returns the circuit breaker for a source, creating it on first
// use. Breakers are per source name so one flapping endpoint does not open
// the circuit for the others.
func (e *APIExecutor) breakerFor(name string) *circuitbreaker.Breaker {
	e.mu.Lock()
	defer e.mu.Unlock()

	breaker, ok := e.breakers[name]
	if !ok {
		breaker = circuitbreaker.New(fmt.Sprintf("enrich-%s", name), circuitbreaker.HTTPConfig, e.logger)
		e.breakers[name] = breaker
	}
	return breaker
}
