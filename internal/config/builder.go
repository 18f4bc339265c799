// internal/config/builder.go
package config

import (
	"fmt"

	"github.com/valpere/OGScrapexter/internal/cache"
	"github.com/valpere/OGScrapexter/internal/monitoring"
	"github.com/valpere/OGScrapexter/internal/scraper"
	"github.com/valpere/OGScrapexter/internal/security"
	"github.com/valpere/OGScrapexter/internal/utils"
)

// Runtime bundles the components built from a Config
type Runtime struct {
	Engine  *scraper.Engine
	Cache   cache.Cache
	Metrics *monitoring.MetricsManager // nil when metrics are disabled
	Logger  utils.Logger
}

// Close releases the cache connection
func (r *Runtime) Close() error {
	return r.Engine.Close()
}

// NewLogger builds the logger described by the logging section
func (c *Config) NewLogger() utils.Logger {
	return utils.NewLoggerWithOptions(utils.LoggerOptions{
		Level:  utils.ParseLogLevel(c.Logging.Level),
		Format: c.Logging.Format,
	})
}

// HTTPClientConfig converts the client section for scraper.NewHTTPClient.
// Redirects are checked against the security section.
func (c *Config) HTTPClientConfig(logger utils.Logger) scraper.ClientConfig {
	userAgents := c.Client.UserAgents
	if c.Client.UserAgent != "" {
		userAgents = append([]string{c.Client.UserAgent}, userAgents...)
	}

	return scraper.ClientConfig{
		Timeout:       c.Client.Timeout,
		RetryAttempts: c.Client.Retries,
		RetryDelay:    c.Client.RetryDelay,
		UserAgents:    userAgents,
		Headers:       c.Client.Headers,
		RateLimit:     c.Client.RateLimit,
		RateBurst:     c.Client.Burst,
		MaxBodyBytes:  c.Client.MaxBodyBytes,
		MaxRedirects:  c.Client.MaxRedirects,
		Validator:     security.NewSecurityValidator(&c.Security),
		Logger:        logger,
	}
}

// BulkRunnerConfig converts the bulk section for scraper.NewBulkRunner
func (c *Config) BulkRunnerConfig() scraper.BulkConfig {
	bulk := scraper.DefaultBulkConfig()
	if c.Bulk.Concurrency > 0 {
		bulk.Concurrency = c.Bulk.Concurrency
	}
	if c.Bulk.ContinueOnError != nil {
		bulk.ContinueOnError = *c.Bulk.ContinueOnError
	}
	bulk.RateRequests = c.Bulk.RateRequests
	bulk.RateWindow = c.Bulk.RateWindow
	return bulk
}

// Build wires the cache, validator, metrics and engine. A nil logger is
// replaced by the one the logging section describes.
func (c *Config) Build(logger utils.Logger) (*Runtime, error) {
	return c.BuildWith(logger, nil)
}

// BuildWith is Build with an existing metrics manager, so counters survive a
// configuration reload. metrics is ignored when metrics are disabled.
func (c *Config) BuildWith(logger utils.Logger, metrics *monitoring.MetricsManager) (*Runtime, error) {
	if logger == nil {
		logger = c.NewLogger()
	}

	store, err := cache.New(c.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	validator := security.NewSecurityValidator(&c.Security)
	engineConfig := scraper.EngineConfig{
		Options:   c.Extraction,
		Client:    scraper.NewHTTPClient(c.HTTPClientConfig(logger)),
		Cache:     store,
		Validator: validator,
		Logger:    logger,
	}

	rt := &Runtime{Cache: store, Logger: logger}
	if c.Metrics.Enabled {
		if metrics == nil {
			metrics = monitoring.NewMetricsManager(c.Metrics)
		}
		rt.Metrics = metrics
		engineConfig.Metrics = metrics
	}
	rt.Engine = scraper.NewEngine(engineConfig)

	logger.WithFields(map[string]interface{}{
		"cache":   c.Cache.Type,
		"metrics": c.Metrics.Enabled,
	}).Debug("runtime initialized")

	return rt, nil
}
