// internal/scraper/bulk_test.go
package scraper

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/OGScrapexter/internal/utils"
)

type fakeScraper struct {
	delay    time.Duration
	inFlight int32
	peak     int32
}

func (f *fakeScraper) Scrape(ctx context.Context, targetURL string) (*ScrapingResult, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if strings.Contains(targetURL, "bad") {
		return nil, utils.NewError(utils.ErrCodeHTTPStatus, "HTTP 500").Build()
	}
	record := NewRecord()
	record.SetString(FieldOGTitle, targetURL)
	return &ScrapingResult{
		URL:     targetURL,
		Success: true,
		Result:  &ExtractionResult{Data: record},
	}, nil
}

func TestBulkRunner_Run(t *testing.T) {
	urls := []string{"https://a.test/1", "https://a.test/bad", "https://a.test/3", "https://a.test/4"}
	scraper := &fakeScraper{delay: 10 * time.Millisecond}

	var (
		mu       sync.Mutex
		progress []int
		failed   []string
	)
	runner := NewBulkRunner(scraper, BulkConfig{
		Concurrency:     2,
		ContinueOnError: true,
		OnProgress: func(completed, total int, url string) {
			mu.Lock()
			defer mu.Unlock()
			if total != len(urls) {
				t.Errorf("Expected total %d, got %d", len(urls), total)
			}
			progress = append(progress, completed)
		},
		OnError: func(err error, url string) {
			mu.Lock()
			defer mu.Unlock()
			failed = append(failed, url)
		},
	}, nil)

	response, err := runner.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("Expected no error with ContinueOnError, got %v", err)
	}

	if len(response.Results) != len(urls) {
		t.Fatalf("Expected %d results, got %d", len(urls), len(response.Results))
	}
	for i, r := range response.Results {
		if r.URL != urls[i] {
			t.Fatalf("Expected results in input order, got %s at %d", r.URL, i)
		}
		if r.ID == "" {
			t.Fatalf("Expected result ID for %s", r.URL)
		}
	}
	if response.Results[1].Success || response.Results[1].ErrorCode != utils.ErrCodeHTTPStatus {
		t.Fatalf("Expected failed result with HTTP_STATUS, got %+v", response.Results[1])
	}
	if got := response.Results[0].Result.Data.String(FieldOGTitle); got != urls[0] {
		t.Fatalf("Expected record for %s, got %q", urls[0], got)
	}

	summary := response.Summary
	if summary.Total != 4 || summary.Successful != 3 || summary.Failed != 1 {
		t.Fatalf("Expected 4/3/1 summary, got %+v", summary)
	}
	if summary.AverageDuration <= 0 {
		t.Fatalf("Expected positive average duration, got %v", summary.AverageDuration)
	}

	if len(progress) != len(urls) || progress[len(progress)-1] != len(urls) {
		t.Fatalf("Expected progress up to %d, got %v", len(urls), progress)
	}
	if len(failed) != 1 || failed[0] != urls[1] {
		t.Fatalf("Expected one error callback for %s, got %v", urls[1], failed)
	}
	if peak := atomic.LoadInt32(&scraper.peak); peak > 2 {
		t.Fatalf("Expected at most 2 concurrent scrapes, got %d", peak)
	}
}

func TestBulkRunner_StopOnError(t *testing.T) {
	urls := []string{"https://a.test/bad", "https://a.test/2", "https://a.test/3", "https://a.test/4", "https://a.test/5"}
	runner := NewBulkRunner(&fakeScraper{delay: 5 * time.Millisecond}, BulkConfig{Concurrency: 1}, nil)

	response, err := runner.Run(context.Background(), urls)
	if utils.CodeOf(err) != utils.ErrCodeHTTPStatus {
		t.Fatalf("Expected %s, got %v", utils.ErrCodeHTTPStatus, err)
	}
	if len(response.Results) >= len(urls) {
		t.Fatalf("Expected run to stop early, got %d results", len(response.Results))
	}
	if response.Summary.Failed < 1 {
		t.Fatalf("Expected the failure in the summary, got %+v", response.Summary)
	}
}

func TestBulkRunner_RateLimit(t *testing.T) {
	urls := []string{"https://a.test/1", "https://a.test/2", "https://a.test/3"}
	runner := NewBulkRunner(&fakeScraper{}, BulkConfig{
		Concurrency:     3,
		ContinueOnError: true,
		RateRequests:    1,
		RateWindow:      50 * time.Millisecond,
	}, nil)

	start := time.Now()
	if _, err := runner.Run(context.Background(), urls); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("Expected rate limit to space requests, finished in %v", elapsed)
	}
}

func TestBulkRunner_Empty(t *testing.T) {
	response, err := NewBulkRunner(&fakeScraper{}, DefaultBulkConfig(), nil).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if response.Summary.Total != 0 || response.Summary.AverageDuration != 0 {
		t.Fatalf("Expected empty summary, got %+v", response.Summary)
	}
}
