// internal/scraper/client_test.go
package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/OGScrapexter/internal/utils"
)

func TestNewHTTPClient_Defaults(t *testing.T) {
	client := NewHTTPClient(ClientConfig{})
	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.httpClient.Timeout != 10*time.Second {
		t.Errorf("Expected default timeout 10s, got %v", client.httpClient.Timeout)
	}
	if client.maxBodyBytes != 5<<20 {
		t.Errorf("Expected default body limit 5MiB, got %d", client.maxBodyBytes)
	}
	if len(client.userAgents) != 1 || client.userAgents[0] != DefaultUserAgent {
		t.Errorf("Expected default user agent, got %v", client.userAgents)
	}
}

func TestHTTPClient_Fetch_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><meta property="og:title" content="Hello"></head></html>`))
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{UserAgents: []string{"TestAgent/1.0"}})
	result, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected successful fetch, got error: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", result.StatusCode)
	}
	if gotUA != "TestAgent/1.0" || result.UserAgent != "TestAgent/1.0" {
		t.Errorf("Expected user agent TestAgent/1.0, got %q / %q", gotUA, result.UserAgent)
	}
	if !strings.Contains(string(result.Body), "og:title") {
		t.Errorf("Expected body to be read, got %q", result.Body)
	}
}

func TestHTTPClient_Fetch_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Café" in Latin-1
		w.Write([]byte("<html><head><title>Caf\xe9</title></head></html>"))
	}))
	defer server.Close()

	result, err := NewHTTPClient(ClientConfig{}).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected successful fetch, got error: %v", err)
	}
	if !strings.Contains(string(result.Body), "Café") {
		t.Fatalf("Expected body decoded to UTF-8, got %q", result.Body)
	}
}

func TestHTTPClient_Fetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{RetryAttempts: 3, RetryDelay: time.Millisecond})
	if _, err := client.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected fetch to succeed after retries, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("Expected 3 attempts, got %d", got)
	}
}

func TestHTTPClient_Fetch_NoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{RetryAttempts: 3, RetryDelay: time.Millisecond})
	_, err := client.Fetch(context.Background(), server.URL)
	if utils.CodeOf(err) != utils.ErrCodeHTTPStatus {
		t.Fatalf("Expected %s, got %v", utils.ErrCodeHTTPStatus, err)
	}
	if StatusCodeOf(err) != http.StatusNotFound {
		t.Fatalf("Expected status 404 in error, got %d", StatusCodeOf(err))
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("Expected 1 attempt, got %d", got)
	}
}

func TestHTTPClient_Fetch_RejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewHTTPClient(ClientConfig{}).Fetch(context.Background(), server.URL)
	if utils.CodeOf(err) != utils.ErrCodeContentType {
		t.Fatalf("Expected %s, got %v", utils.ErrCodeContentType, err)
	}
}

func TestHTTPClient_Fetch_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer server.Close()

	_, err := NewHTTPClient(ClientConfig{MaxBodyBytes: 1024}).Fetch(context.Background(), server.URL)
	if utils.CodeOf(err) != utils.ErrCodeBodyTooLarge {
		t.Fatalf("Expected %s, got %v", utils.ErrCodeBodyTooLarge, err)
	}
}

func TestHTTPClient_Fetch_RedirectToBlockedHost(t *testing.T) {
	var internalCalls int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&internalCalls, 1)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><meta property="og:title" content="secret"></head></html>`))
	}))
	defer internal.Close()

	public := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internal.URL+"/latest/meta-data", http.StatusFound)
	}))
	defer public.Close()

	blockedHost := strings.TrimPrefix(internal.URL, "http://")
	client := NewHTTPClient(ClientConfig{
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
		Validator:     hostValidator{blocked: blockedHost},
	})

	_, err := client.Fetch(context.Background(), public.URL)
	if utils.CodeOf(err) != utils.ErrCodeURLBlocked {
		t.Fatalf("Expected %s, got %v", utils.ErrCodeURLBlocked, err)
	}
	if got := atomic.LoadInt32(&internalCalls); got != 0 {
		t.Errorf("Expected redirect target not to be requested, got %d calls", got)
	}
}

func TestHTTPClient_Fetch_RedirectAllowed(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html></html>`))
	}))
	defer target.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/final", http.StatusMovedPermanently)
	}))
	defer origin.Close()

	client := NewHTTPClient(ClientConfig{Validator: hostValidator{blocked: "blocked.example"}})
	result, err := client.Fetch(context.Background(), origin.URL)
	if err != nil {
		t.Fatalf("Expected successful fetch, got error: %v", err)
	}
	if result.FinalURL != target.URL+"/final" {
		t.Errorf("Expected final URL %s/final, got %s", target.URL, result.FinalURL)
	}
}

// hostValidator rejects a single host:port
type hostValidator struct {
	blocked string
}

func (v hostValidator) ValidateURL(rawURL string) error {
	if strings.Contains(rawURL, "://"+v.blocked+"/") {
		return utils.NewError(utils.ErrCodeURLBlocked, "host is blocked").Build()
	}
	return nil
}

func TestHTTPClient_Fetch_InvalidURL(t *testing.T) {
	_, err := NewHTTPClient(ClientConfig{}).Fetch(context.Background(), "not a url")
	if utils.CodeOf(err) != utils.ErrCodeInvalidURL {
		t.Fatalf("Expected %s, got %v", utils.ErrCodeInvalidURL, err)
	}
}

func TestHTTPClient_Fetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(ClientConfig{RetryAttempts: 2}).Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error for expired context")
	}
	if code := utils.CodeOf(err); code != utils.ErrCodeNetworkTimeout && code != utils.ErrCodeContextCanceled {
		t.Fatalf("Expected timeout or cancel code, got %s", code)
	}
}

func TestShouldRetryStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{522, true},
		{http.StatusNotFound, false},
		{http.StatusForbidden, false},
	}
	for _, tt := range tests {
		if got := shouldRetryStatusCode(tt.code); got != tt.want {
			t.Errorf("Expected shouldRetryStatusCode(%d) = %v, got %v", tt.code, tt.want, got)
		}
	}
}

func TestGetNextUserAgent_Rotates(t *testing.T) {
	client := NewHTTPClient(ClientConfig{UserAgents: []string{"a", "b"}})
	got := []string{client.getNextUserAgent(), client.getNextUserAgent(), client.getNextUserAgent()}
	if got[0] != "a" || got[1] != "b" || got[2] != "a" {
		t.Fatalf("Expected a,b,a rotation, got %v", got)
	}
}
