// internal/config/types.go

// Package config provides configuration types and loading for OGScrapexter.
// It covers extraction options, the HTTP client, URL safety rules, the result
// cache, bulk processing, the API server, metrics, logging and output.
package config

import (
	"time"

	"github.com/valpere/OGScrapexter/internal/cache"
	"github.com/valpere/OGScrapexter/internal/monitoring"
	"github.com/valpere/OGScrapexter/internal/scraper"
	"github.com/valpere/OGScrapexter/internal/security"
)

// Config is the root configuration document
type Config struct {
	// Extraction controls what the extractor reads from a page
	Extraction scraper.Options `yaml:"extraction" json:"extraction"`

	// Client configures page fetching
	Client ClientConfig `yaml:"client" json:"client"`

	// Security decides which URLs may be fetched
	Security security.SecurityConfig `yaml:"security" json:"security"`

	// Cache selects the result cache backend
	Cache cache.Config `yaml:"cache" json:"cache"`

	Bulk    BulkConfig               `yaml:"bulk" json:"bulk"`
	Server  ServerConfig             `yaml:"server" json:"server"`
	Metrics monitoring.MetricsConfig `yaml:"metrics" json:"metrics"`
	Logging LoggingConfig            `yaml:"logging" json:"logging"`
	Output  OutputConfig             `yaml:"output" json:"output"`
}

// ClientConfig defines HTTP client settings
type ClientConfig struct {
	// Timeout for a single request
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Retries is the number of additional attempts after a retryable failure
	Retries int `yaml:"retries" json:"retries"`

	// RetryDelay is the base delay of the exponential backoff
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`

	// RateLimit in requests per second, 0 disables limiting
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `yaml:"burst" json:"burst"`

	// UserAgent overrides the default agent; UserAgents enables rotation
	UserAgent  string   `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	UserAgents []string `yaml:"user_agents,omitempty" json:"user_agents,omitempty"`

	MaxBodyBytes int64             `yaml:"max_body_bytes" json:"max_body_bytes"`
	MaxRedirects int               `yaml:"max_redirects" json:"max_redirects"`
	Headers      map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// BulkConfig defines bulk extraction settings
type BulkConfig struct {
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// ContinueOnError defaults to true when omitted
	ContinueOnError *bool `yaml:"continue_on_error,omitempty" json:"continue_on_error,omitempty"`

	// RateRequests per RateWindow across the whole run, 0 disables
	RateRequests int           `yaml:"rate_requests" json:"rate_requests"`
	RateWindow   time.Duration `yaml:"rate_window" json:"rate_window"`
}

// ServerConfig defines the HTTP API server
type ServerConfig struct {
	Listen       string        `yaml:"listen" json:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	MaxBulkURLs  int           `yaml:"max_bulk_urls" json:"max_bulk_urls"`
	// RateLimit caps API requests per second across all clients; 0 disables it
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `yaml:"burst" json:"burst"`
}

// LoggingConfig defines the logger
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // console or json
}

// OutputConfig defines how results are written
type OutputConfig struct {
	Format string `yaml:"format" json:"format"` // json or yaml
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}
