// cmd/server/server_test.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/valpere/OGScrapexter/internal/config"
	"github.com/valpere/OGScrapexter/internal/monitoring"
)

const testPage = `<html><head>
<meta property="og:title" content="Server Test">
<meta property="og:type" content="website">
<meta name="twitter:card" content="summary">
</head><body></body></html>`

func newTestOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testPage)
	}))
	t.Cleanup(origin.Close)
	return origin
}

func setupTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Client.Retries = 0
	if mutate != nil {
		mutate(cfg)
	}

	server, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(func() { server.Close() })

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var health monitoring.SystemHealth
	decodeBody(t, resp, &health)
	if health.Status != monitoring.HealthStatusHealthy {
		t.Errorf("Expected healthy status, got %s", health.Status)
	}
	if len(health.Checks) != 2 {
		t.Errorf("Expected 2 checks, got %d", len(health.Checks))
	}
}

func TestRequestIDHeader(t *testing.T) {
	server := setupTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("Expected generated request ID header")
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("Expected request ID 'abc-123' to be echoed, got %q", got)
	}
}

func TestExtractHTML(t *testing.T) {
	server := setupTestServer(t, nil)

	resp := postJSON(t, server.URL+"/api/v1/extract", ExtractRequest{HTML: testPage})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, body)
	}

	var result struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, resp, &result)
	if result.Data["ogTitle"] != "Server Test" {
		t.Errorf("Expected ogTitle 'Server Test', got %v", result.Data["ogTitle"])
	}
	if result.Data["twitterCard"] != "summary" {
		t.Errorf("Expected twitterCard 'summary', got %v", result.Data["twitterCard"])
	}
}

func TestExtractURL(t *testing.T) {
	origin := newTestOrigin(t)
	server := setupTestServer(t, nil)

	resp := postJSON(t, server.URL+"/api/v1/extract", ExtractRequest{URL: origin.URL + "/page"})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, body)
	}

	var result struct {
		Success bool `json:"success"`
		Result  struct {
			Data map[string]interface{} `json:"data"`
		} `json:"result"`
	}
	decodeBody(t, resp, &result)
	if !result.Success {
		t.Error("Expected success")
	}
	if result.Result.Data["ogType"] != "website" {
		t.Errorf("Expected ogType 'website', got %v", result.Result.Data["ogType"])
	}
}

func TestExtractErrors(t *testing.T) {
	origin := newTestOrigin(t)
	server := setupTestServer(t, func(cfg *config.Config) {
		cfg.Security.BlockedDomains = []string{"blocked.example"}
	})

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"empty body", map[string]string{}, http.StatusBadRequest, "BAD_REQUEST"},
		{"both fields", ExtractRequest{URL: "https://example.com", HTML: "<html></html>"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", map[string]string{"link": "https://example.com"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"disallowed scheme", ExtractRequest{URL: "ftp://example.com/file"}, http.StatusForbidden, "URL_BLOCKED"},
		{"blocked domain", ExtractRequest{URL: "https://blocked.example/page"}, http.StatusForbidden, "URL_BLOCKED"},
		{"upstream 404", ExtractRequest{URL: origin.URL + "/missing"}, http.StatusBadGateway, "HTTP_STATUS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/api/v1/extract", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}

			var errResp ErrorResponse
			decodeBody(t, resp, &errResp)
			if errResp.Error.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, errResp.Error.Code)
			}
			if errResp.RequestID == "" {
				t.Error("Expected request ID in error response")
			}
		})
	}
}

func TestBulkEndpoint(t *testing.T) {
	origin := newTestOrigin(t)
	server := setupTestServer(t, func(cfg *config.Config) {
		cfg.Metrics.Enabled = true
	})

	resp := postJSON(t, server.URL+"/api/v1/bulk", BulkRequest{URLs: []string{
		origin.URL + "/a",
		"ftp://example.com/b",
		origin.URL + "/c",
	}})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, body)
	}

	var bulk struct {
		Results []struct {
			URL     string `json:"url"`
			Success bool   `json:"success"`
		} `json:"results"`
		Summary struct {
			Total      int `json:"total"`
			Successful int `json:"successful"`
			Failed     int `json:"failed"`
		} `json:"summary"`
	}
	decodeBody(t, resp, &bulk)
	if bulk.Summary.Total != 3 || bulk.Summary.Successful != 2 || bulk.Summary.Failed != 1 {
		t.Errorf("Expected summary 3/2/1, got %+v", bulk.Summary)
	}
	if len(bulk.Results) != 3 || bulk.Results[1].Success {
		t.Errorf("Expected the second result to fail, got %+v", bulk.Results)
	}

	metricsResp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer metricsResp.Body.Close()
	body, _ := io.ReadAll(metricsResp.Body)
	if !strings.Contains(string(body), `ogscrapexter_extractor_bulk_urls_total{status="failed"} 1`) {
		t.Errorf("Expected bulk job metric, got:\n%s", body)
	}
}

func TestBulkLimits(t *testing.T) {
	server := setupTestServer(t, func(cfg *config.Config) {
		cfg.Server.MaxBulkURLs = 2
	})

	resp := postJSON(t, server.URL+"/api/v1/bulk", BulkRequest{URLs: []string{"https://a.example", "https://b.example", "https://c.example"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for too many URLs, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/v1/bulk", BulkRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty URL list, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMetricsDisabled(t *testing.T) {
	server := setupTestServer(t, nil)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 with metrics disabled, got %d", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	server := setupTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.Burst = 1
	})

	first := postJSON(t, server.URL+"/api/v1/extract", ExtractRequest{HTML: testPage})
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", first.StatusCode)
	}

	second := postJSON(t, server.URL+"/api/v1/extract", ExtractRequest{HTML: testPage})
	if second.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", second.StatusCode)
	}
	var errResp ErrorResponse
	decodeBody(t, second, &errResp)
	if errResp.Error.Code != "RATE_LIMITED" {
		t.Errorf("Expected code RATE_LIMITED, got %s", errResp.Error.Code)
	}
}

func TestNotFound(t *testing.T) {
	server := setupTestServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/scrapers")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
	var errResp ErrorResponse
	decodeBody(t, resp, &errResp)
	if errResp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %s", errResp.Error.Code)
	}
}

func TestReload(t *testing.T) {
	cfg := config.Default()
	server, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer server.Close()

	updated := config.Default()
	updated.Extraction.OnlyGetOpenGraphInfo = true
	if err := server.Reload(updated); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if !server.current().runtime.Engine.Options().OnlyGetOpenGraphInfo {
		t.Error("Expected reloaded options to be active")
	}
}
