// pkg/api/api.go

// Package api is the public entry point to OGScrapexter. Extract and
// ExtractFromReader work on documents already in memory; Client fetches URLs.
package api

import (
	"context"
	"io"

	"github.com/valpere/OGScrapexter/internal/config"
	"github.com/valpere/OGScrapexter/internal/scraper"
	"github.com/valpere/OGScrapexter/internal/utils"
)

// Extract returns the Open Graph, Twitter Card and fallback metadata of an
// HTML document. It never fails: missing data is an absent key.
func Extract(html string, opts Options) Record {
	return scraper.Extract([]byte(html), opts)
}

// ExtractBytes is Extract for a byte slice
func ExtractBytes(html []byte, opts Options) Record {
	return scraper.Extract(html, opts)
}

// ExtractFromReader decodes r using the charset from contentType or the
// document's meta tags and returns the full extraction result.
func ExtractFromReader(r io.Reader, contentType string, opts Options) (*ExtractionResult, error) {
	parser, err := scraper.NewHTMLParserFromReader(r, contentType)
	if err != nil {
		return nil, err
	}
	return scraper.NewExtractionEngine(opts, parser).ExtractAll(), nil
}

// DefaultConfig returns the configuration used by NewClient(nil)
func DefaultConfig() *Config {
	return config.Default()
}

// Client fetches and extracts URLs using the cache, security and client
// settings of a Config
type Client struct {
	runtime *config.Runtime
	bulk    scraper.BulkConfig
}

// NewClient builds a client. A nil config selects DefaultConfig and a nil
// logger discards log output.
func NewClient(cfg *Config, logger utils.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt, err := cfg.Build(logger)
	if err != nil {
		return nil, err
	}
	return &Client{runtime: rt, bulk: cfg.BulkRunnerConfig()}, nil
}

// Extract fetches url and extracts its metadata
func (c *Client) Extract(ctx context.Context, url string) (*ScrapingResult, error) {
	return c.runtime.Engine.Scrape(ctx, url)
}

// ExtractMany extracts urls concurrently; results keep the input order
func (c *Client) ExtractMany(ctx context.Context, urls []string) (*BulkResponse, error) {
	runner := scraper.NewBulkRunner(c.runtime.Engine, c.bulk, c.runtime.Logger)
	return runner.Run(ctx, urls)
}

// Close releases the cache connection
func (c *Client) Close() error {
	return c.runtime.Close()
}
