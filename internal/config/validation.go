// internal/config/validation.go
package config

import (
	"fmt"
	"strings"

	"github.com/valpere/OGScrapexter/internal/utils"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Path, ve.Message)
}

// Validate checks the configuration and returns an INVALID_CONFIG error
// listing every problem found.
func (c *Config) Validate() error {
	problems := ValidateConfig(c)
	if len(problems) == 0 {
		return nil
	}

	messages := make([]string, len(problems))
	for i, p := range problems {
		messages[i] = p.Error()
	}
	return utils.NewError(utils.ErrCodeInvalidConfig, "invalid configuration: "+strings.Join(messages, "; ")).
		WithContext("problems", len(problems)).
		Build()
}

// ValidateConfig validates a configuration and returns detailed error information
func ValidateConfig(config *Config) []ValidationError {
	if config == nil {
		return []ValidationError{{Path: "config", Message: "configuration cannot be nil"}}
	}

	var errs []ValidationError
	add := func(path, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	for i, tag := range config.Extraction.CustomMetaTags {
		if strings.TrimSpace(tag.Property) == "" {
			add(fmt.Sprintf("extraction.custom_meta_tags[%d].property", i), "property is required")
		}
		if strings.TrimSpace(tag.FieldName) == "" {
			add(fmt.Sprintf("extraction.custom_meta_tags[%d].field_name", i), "field name is required")
		}
	}

	if config.Client.Timeout < 0 {
		add("client.timeout", "must not be negative")
	}
	if config.Client.Retries < 0 || config.Client.Retries > 10 {
		add("client.retries", "must be between 0 and 10, got %d", config.Client.Retries)
	}
	if config.Client.RateLimit < 0 {
		add("client.rate_limit", "must not be negative")
	}
	if config.Client.MaxBodyBytes < 0 {
		add("client.max_body_bytes", "must not be negative")
	}

	for _, scheme := range config.Security.AllowedSchemes {
		if s := strings.ToLower(scheme); s != "http" && s != "https" {
			add("security.allowed_schemes", "unsupported scheme %q", scheme)
		}
	}
	if config.Security.MaxURLLength < 0 {
		add("security.max_url_length", "must not be negative")
	}

	switch config.Cache.Type {
	case "", "memory", "none", "noop":
	case "redis":
		if config.Cache.RedisURL == "" {
			add("cache.redis_url", "required when cache type is redis")
		}
	default:
		add("cache.type", "unknown cache type %q", config.Cache.Type)
	}
	if config.Cache.TTL < 0 {
		add("cache.ttl", "must not be negative")
	}
	if config.Cache.MaxSize < 0 {
		add("cache.max_size", "must not be negative")
	}

	if config.Bulk.Concurrency < 0 || config.Bulk.Concurrency > 100 {
		add("bulk.concurrency", "must be between 1 and 100, got %d", config.Bulk.Concurrency)
	}
	if config.Bulk.RateRequests > 0 && config.Bulk.RateWindow <= 0 {
		add("bulk.rate_window", "required when rate_requests is set")
	}

	if config.Server.MaxBulkURLs < 0 {
		add("server.max_bulk_urls", "must not be negative")
	}
	if config.Server.RateLimit < 0 {
		add("server.rate_limit", "must not be negative")
	}

	switch strings.ToLower(config.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level", "unknown level %q", config.Logging.Level)
	}
	switch config.Logging.Format {
	case "", "console", "json":
	default:
		add("logging.format", "unknown format %q", config.Logging.Format)
	}

	switch strings.ToLower(config.Output.Format) {
	case "", "json", "yaml", "yml", "csv":
	default:
		add("output.format", "unsupported output format %q", config.Output.Format)
	}

	return errs
}
