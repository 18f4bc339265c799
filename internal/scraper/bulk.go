// internal/scraper/bulk.go
package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/OGScrapexter/internal/utils"
)

// Scraper extracts one URL; Engine is the production implementation.
type Scraper interface {
	Scrape(ctx context.Context, targetURL string) (*ScrapingResult, error)
}

// BulkConfig controls a bulk run
type BulkConfig struct {
	Concurrency     int           `yaml:"concurrency" json:"concurrency"`
	ContinueOnError bool          `yaml:"continue_on_error" json:"continue_on_error"`
	RateRequests    int           `yaml:"rate_requests" json:"rate_requests"`
	RateWindow      time.Duration `yaml:"rate_window" json:"rate_window"`

	// OnProgress is called after each URL finishes, from the worker goroutine.
	OnProgress func(completed, total int, url string) `yaml:"-" json:"-"`
	// OnError is called for each failed URL, before OnProgress.
	OnError func(err error, url string) `yaml:"-" json:"-"`
}

// DefaultBulkConfig returns the defaults used when fields are zero
func DefaultBulkConfig() BulkConfig {
	return BulkConfig{Concurrency: 5, ContinueOnError: true}
}

// BulkResult is the outcome for one URL
type BulkResult struct {
	ID        string            `json:"id" yaml:"id"`
	URL       string            `json:"url" yaml:"url"`
	Success   bool              `json:"success" yaml:"success"`
	Result    *ExtractionResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorCode utils.ErrorCode   `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	FromCache bool              `json:"from_cache,omitempty" yaml:"from_cache,omitempty"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Duration  time.Duration     `json:"duration" yaml:"duration"`
}

// BulkSummary aggregates a bulk run
type BulkSummary struct {
	Total           int           `json:"total" yaml:"total"`
	Successful      int           `json:"successful" yaml:"successful"`
	Failed          int           `json:"failed" yaml:"failed"`
	TotalDuration   time.Duration `json:"total_duration" yaml:"total_duration"`
	AverageDuration time.Duration `json:"average_duration" yaml:"average_duration"`
}

// BulkResponse holds per-URL results in input order plus the summary
type BulkResponse struct {
	Results []BulkResult `json:"results" yaml:"results"`
	Summary BulkSummary  `json:"summary" yaml:"summary"`
}

// BulkRunner extracts many URLs with bounded concurrency and a shared rate limit
type BulkRunner struct {
	scraper Scraper
	config  BulkConfig
	logger  utils.Logger
}

// NewBulkRunner creates a runner. A zero Concurrency selects the default.
func NewBulkRunner(scraper Scraper, config BulkConfig, logger utils.Logger) *BulkRunner {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultBulkConfig().Concurrency
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &BulkRunner{scraper: scraper, config: config, logger: logger}
}

// Run extracts urls. With ContinueOnError unset the first failure stops
// scheduling, Run returns that error, and the response holds only the URLs
// that were processed.
func (br *BulkRunner) Run(ctx context.Context, urls []string) (*BulkResponse, error) {
	startTime := time.Now()
	total := len(urls)
	limiter := utils.NewWindowRateLimiter(br.config.RateRequests, br.config.RateWindow)

	results := make([]BulkResult, total)
	done := make([]bool, total)
	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(br.config.Concurrency)

	for i, targetURL := range urls {
		if gctx.Err() != nil {
			break
		}
		i, targetURL := i, targetURL
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return nil
			}

			res := br.scrapeOne(gctx, targetURL)

			mu.Lock()
			results[i] = res
			done[i] = true
			completed++
			n := completed
			mu.Unlock()

			if !res.Success && br.config.OnError != nil {
				br.config.OnError(errorFromResult(res), targetURL)
			}
			if br.config.OnProgress != nil {
				br.config.OnProgress(n, total, targetURL)
			}

			if !res.Success && !br.config.ContinueOnError {
				return errorFromResult(res)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	response := &BulkResponse{}
	for i := range results {
		if done[i] {
			response.Results = append(response.Results, results[i])
		}
	}
	response.Summary = summarize(response.Results, time.Since(startTime))

	br.logger.WithFields(map[string]interface{}{
		"total":      response.Summary.Total,
		"successful": response.Summary.Successful,
		"failed":     response.Summary.Failed,
		"duration":   utils.FormatDuration(response.Summary.TotalDuration),
	}).Info("bulk extraction finished")

	return response, err
}

func (br *BulkRunner) scrapeOne(ctx context.Context, targetURL string) BulkResult {
	start := time.Now()
	res := BulkResult{
		ID:        uuid.NewString(),
		URL:       targetURL,
		Timestamp: start,
	}

	scraped, err := br.scraper.Scrape(ctx, targetURL)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		res.ErrorCode = utils.CodeOf(err)
		return res
	}
	res.Success = scraped.Success
	res.Result = scraped.Result
	res.FromCache = scraped.Metadata.FromCache
	return res
}

func errorFromResult(res BulkResult) error {
	code := res.ErrorCode
	if code == "" {
		code = utils.ErrCodeUnknown
	}
	return utils.NewError(code, res.Error).WithContext("url", res.URL).Build()
}

func summarize(results []BulkResult, elapsed time.Duration) BulkSummary {
	summary := BulkSummary{Total: len(results), TotalDuration: elapsed}
	var sum time.Duration
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
		sum += r.Duration
	}
	if len(results) > 0 {
		summary.AverageDuration = sum / time.Duration(len(results))
	}
	return summary
}
