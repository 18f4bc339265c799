// internal/scraper/client.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/valpere/OGScrapexter/internal/utils"
)

// DefaultUserAgent identifies the fetcher when no user agent is configured.
const DefaultUserAgent = "OGScrapexter/1.0 (+https://github.com/valpere/OGScrapexter)"

// HTTPClient fetches HTML pages for metadata extraction
type HTTPClient struct {
	httpClient    *http.Client
	userAgents    []string
	currentUA     int
	uaMutex       sync.Mutex
	rateLimiter   *rate.Limiter
	retryAttempts int
	retryDelay    time.Duration
	maxBodyBytes  int64
	headers       map[string]string
	logger        utils.Logger
}

// ClientConfig defines configuration options for the HTTP client
type ClientConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	UserAgents    []string
	Headers       map[string]string
	RateLimit     float64 // requests per second, 0 means unlimited
	RateBurst     int
	MaxBodyBytes  int64
	MaxRedirects  int
	Transport     http.RoundTripper
	Validator     URLValidator // checked against every redirect target
	Logger        utils.Logger
}

// FetchResult is a fetched page decoded to UTF-8
type FetchResult struct {
	URL           string
	FinalURL      string
	StatusCode    int
	ContentType   string
	ContentLength int64
	UserAgent     string
	Body          []byte
	Duration      time.Duration
}

// NewHTTPClient creates a new HTTP client with the specified configuration
func NewHTTPClient(config ClientConfig) *HTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryAttempts < 0 {
		config.RetryAttempts = 0
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 5
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 5 << 20
	}
	if config.MaxRedirects <= 0 {
		config.MaxRedirects = 10
	}
	if len(config.UserAgents) == 0 {
		config.UserAgents = []string{DefaultUserAgent}
	}
	if config.Logger == nil {
		config.Logger = utils.NewNopLogger()
	}

	transport := config.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	maxRedirects := config.MaxRedirects
	validator := config.Validator
	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if validator != nil {
				return validator.ValidateURL(req.URL.String())
			}
			return nil
		},
	}

	limit := rate.Limit(config.RateLimit)
	if config.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &HTTPClient{
		httpClient:    httpClient,
		userAgents:    config.UserAgents,
		rateLimiter:   rate.NewLimiter(limit, config.RateBurst),
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		maxBodyBytes:  config.MaxBodyBytes,
		headers:       config.Headers,
		logger:        config.Logger,
	}
}

// Fetch downloads targetURL, retrying on transient failures, and returns the
// body decoded to UTF-8. Non-HTML responses and oversized bodies are rejected.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	if u, err := url.Parse(targetURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, utils.NewError(utils.ErrCodeInvalidURL, "invalid URL").
			WithCause(err).WithContext("url", targetURL).Build()
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.waitForRetry(ctx, attempt-1); err != nil {
				return nil, utils.WrapError(err, utils.CodeOf(err), "fetch canceled")
			}
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, utils.WrapError(err, utils.ErrCodeRateLimited, "rate limiter wait failed")
		}

		result, err := c.fetchOnce(ctx, targetURL)
		if err == nil {
			result.Duration = time.Since(start)
			return result, nil
		}
		lastErr = err
		c.logger.WithFields(map[string]interface{}{
			"url":     targetURL,
			"attempt": attempt + 1,
		}).Debugf("fetch failed: %v", err)

		if !utils.IsRetryableError(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *HTTPClient) fetchOnce(ctx context.Context, targetURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeInvalidURL, "failed to create request")
	}
	userAgent := c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A redirect target rejected by the validator keeps its own code
		var rejected *utils.StructuredError
		if errors.As(err, &rejected) {
			return nil, rejected
		}
		code := utils.CodeOf(err)
		if code == utils.ErrCodeUnknown {
			code = utils.ErrCodeNetworkFailure
		}
		return nil, utils.NewError(code, "request failed").
			WithCause(err).WithContext("url", targetURL).
			WithRetryable(code != utils.ErrCodeContextCanceled).Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, utils.NewError(utils.ErrCodeHTTPStatus, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)).
			WithContext("url", targetURL).
			WithContext("status_code", resp.StatusCode).
			WithRetryable(shouldRetryStatusCode(resp.StatusCode)).Build()
	}

	contentType := resp.Header.Get("Content-Type")
	if !utils.IsHTMLContent(contentType) {
		return nil, utils.NewError(utils.ErrCodeContentType, "response is not HTML").
			WithContext("url", targetURL).WithContext("content_type", contentType).Build()
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, utils.NewError(utils.ErrCodeNetworkFailure, "failed to read body").
			WithCause(err).WithRetryable(true).Build()
	}
	if int64(len(raw)) > c.maxBodyBytes {
		return nil, utils.NewError(utils.ErrCodeBodyTooLarge, fmt.Sprintf("body exceeds %d bytes", c.maxBodyBytes)).
			WithContext("url", targetURL).Build()
	}

	body, err := DecodeHTML(raw, contentType)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeParsingError, "failed to decode body")
	}

	return &FetchResult{
		URL:           targetURL,
		FinalURL:      resp.Request.URL.String(),
		StatusCode:    resp.StatusCode,
		ContentType:   contentType,
		ContentLength: int64(len(raw)),
		UserAgent:     userAgent,
		Body:          body,
	}, nil
}

// setRequestHeaders configures request headers and returns the user agent used
func (c *HTTPClient) setRequestHeaders(req *http.Request) string {
	userAgent := c.getNextUserAgent()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	return userAgent
}

// getNextUserAgent returns the next user agent in rotation
func (c *HTTPClient) getNextUserAgent() string {
	c.uaMutex.Lock()
	defer c.uaMutex.Unlock()

	userAgent := c.userAgents[c.currentUA]
	c.currentUA = (c.currentUA + 1) % len(c.userAgents)
	return userAgent
}

// waitForRetry implements exponential backoff with jitter
func (c *HTTPClient) waitForRetry(ctx context.Context, attempt int) error {
	backoffDelay := c.retryDelay * time.Duration(1<<uint(attempt))
	if half := int64(backoffDelay / 2); half > 0 {
		backoffDelay += time.Duration(rand.Int63n(half))
	}
	if backoffDelay > 30*time.Second {
		backoffDelay = 30 * time.Second
	}

	timer := time.NewTimer(backoffDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// shouldRetryStatusCode determines if a status code warrants a retry
func shouldRetryStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		520, 521, 522, 523, 524: // CloudFlare
		return true
	}
	return false
}

// StatusCodeOf returns the HTTP status carried by an ErrCodeHTTPStatus error, or 0.
func StatusCodeOf(err error) int {
	var se *utils.StructuredError
	if errors.As(err, &se) && se.Code == utils.ErrCodeHTTPStatus {
		if code, ok := se.Context["status_code"].(int); ok {
			return code
		}
	}
	return 0
}
