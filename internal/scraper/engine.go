// internal/scraper/engine.go
package scraper

import (
	"context"
	"encoding/json"
	"mime"
	"time"

	"github.com/valpere/OGScrapexter/internal/cache"
	"github.com/valpere/OGScrapexter/internal/utils"
)

// URLValidator rejects URLs that must not be fetched
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// MetricsRecorder receives engine events
type MetricsRecorder interface {
	RecordRequest(host string, statusCode int, duration time.Duration)
	RecordRequestError(errorType, host string)
	RecordExtraction(duration time.Duration, fields int)
	RecordFallbacks(fields []string)
	RecordCacheLookup(hit bool)
}

// EngineConfig wires the collaborators of an Engine. Only Client is required.
type EngineConfig struct {
	Options   Options
	Client    *HTTPClient
	Cache     cache.Cache
	Validator URLValidator
	Metrics   MetricsRecorder
	Logger    utils.Logger
}

// Engine fetches URLs and extracts their metadata, consulting the cache first
type Engine struct {
	options   Options
	client    *HTTPClient
	cache     cache.Cache
	validator URLValidator
	metrics   MetricsRecorder
	logger    utils.Logger
}

// NewEngine creates an engine. Missing collaborators are replaced by no-ops.
func NewEngine(config EngineConfig) *Engine {
	if config.Client == nil {
		config.Client = NewHTTPClient(ClientConfig{Validator: config.Validator, Logger: config.Logger})
	}
	if config.Cache == nil {
		config.Cache = cache.NewNoop()
	}
	if config.Metrics == nil {
		config.Metrics = nopMetrics{}
	}
	if config.Logger == nil {
		config.Logger = utils.NewNopLogger()
	}

	return &Engine{
		options:   config.Options,
		client:    config.Client,
		cache:     config.Cache,
		validator: config.Validator,
		metrics:   config.Metrics,
		logger:    config.Logger,
	}
}

// Options returns the extraction options the engine applies
func (e *Engine) Options() Options {
	return e.options
}

// Scrape extracts metadata from targetURL. Failures before extraction are
// returned as errors carrying a utils.ErrorCode; the extraction itself never fails.
func (e *Engine) Scrape(ctx context.Context, targetURL string) (*ScrapingResult, error) {
	startTime := time.Now()
	logger := e.logger.WithField("url", targetURL)
	host, _ := utils.ExtractDomain(targetURL)

	result := &ScrapingResult{
		URL: targetURL,
		Metadata: ScrapingMetadata{
			URL:       targetURL,
			Timestamp: startTime.Format(time.RFC3339),
		},
	}

	if e.validator != nil {
		if err := e.validator.ValidateURL(targetURL); err != nil {
			e.metrics.RecordRequestError(string(utils.CodeOf(err)), host)
			return result, err
		}
	}

	key := cache.Key(targetURL)
	if cached, ok := e.lookup(ctx, key, logger); ok {
		result.Result = cached
		result.Success = true
		result.Metadata.FromCache = true
		result.Metadata.RequestDuration = utils.FormatDuration(time.Since(startTime))
		logger.Debug("served from cache")
		return result, nil
	}

	fetched, err := e.client.Fetch(ctx, targetURL)
	if err != nil {
		e.metrics.RecordRequestError(string(utils.CodeOf(err)), host)
		if status := StatusCodeOf(err); status != 0 {
			result.Metadata.StatusCode = status
			e.metrics.RecordRequest(host, status, time.Since(startTime))
		}
		logger.Warnf("fetch failed: %v", err)
		return result, err
	}
	e.metrics.RecordRequest(host, fetched.StatusCode, fetched.Duration)

	extraction := e.ExtractHTML(fetched.Body)

	result.Result = extraction
	result.Success = true
	result.Metadata.FinalURL = fetched.FinalURL
	result.Metadata.StatusCode = fetched.StatusCode
	result.Metadata.ContentType = fetched.ContentType
	result.Metadata.ContentLength = fetched.ContentLength
	result.Metadata.UserAgent = fetched.UserAgent
	result.Metadata.RequestDuration = utils.FormatDuration(fetched.Duration)
	result.Metadata.ExtractionDuration = utils.FormatDuration(extraction.Metrics.ExtractionTime)
	if _, params, err := mime.ParseMediaType(fetched.ContentType); err == nil {
		result.Metadata.Charset = params["charset"]
	}

	e.store(ctx, key, extraction, logger)

	logger.WithFields(map[string]interface{}{
		"fields":    len(extraction.Data),
		"fallbacks": len(extraction.FallbacksUsed),
		"duration":  utils.FormatDuration(time.Since(startTime)),
	}).Info("extraction completed")

	return result, nil
}

// ExtractHTML runs the extraction pipeline on an already fetched body.
func (e *Engine) ExtractHTML(body []byte) *ExtractionResult {
	extraction := NewExtractionEngine(e.options, NewHTMLParser(body)).ExtractAll()
	e.metrics.RecordExtraction(extraction.Metrics.ExtractionTime, len(extraction.Data))
	e.metrics.RecordFallbacks(extraction.FallbacksUsed)
	return extraction
}

// CacheStats reports the effectiveness of the result cache
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// Close releases the cache
func (e *Engine) Close() error {
	return e.cache.Close()
}

// lookup treats cache failures as misses; an unreachable cache must not block extraction.
func (e *Engine) lookup(ctx context.Context, key string, logger utils.Logger) (*ExtractionResult, bool) {
	raw, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		logger.Warnf("cache get failed: %v", err)
		e.metrics.RecordCacheLookup(false)
		return nil, false
	}
	if !ok {
		e.metrics.RecordCacheLookup(false)
		return nil, false
	}

	var cached ExtractionResult
	if err := json.Unmarshal(raw, &cached); err != nil {
		logger.Warnf("discarding undecodable cache entry: %v", err)
		_ = e.cache.Delete(ctx, key)
		e.metrics.RecordCacheLookup(false)
		return nil, false
	}
	e.metrics.RecordCacheLookup(true)
	return &cached, true
}

func (e *Engine) store(ctx context.Context, key string, extraction *ExtractionResult, logger utils.Logger) {
	raw, err := json.Marshal(extraction)
	if err != nil {
		logger.Warnf("cache encode failed: %v", err)
		return
	}
	if err := e.cache.Set(ctx, key, raw); err != nil {
		logger.Warnf("cache set failed: %v", err)
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(string, int, time.Duration) {}
func (nopMetrics) RecordRequestError(string, string) {}
func (nopMetrics) RecordExtraction(time.Duration, int) {}
func (nopMetrics) RecordFallbacks([]string) {}
func (nopMetrics) RecordCacheLookup(bool) {}
