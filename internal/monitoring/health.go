// internal/monitoring/health.go
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// HealthCheck represents a single health check
type HealthCheck struct {
	Name      string                                      `json:"name"`
	Status    HealthStatus                                `json:"status"`
	Message   string                                      `json:"message,omitempty"`
	Error     string                                      `json:"error,omitempty"`
	LastCheck time.Time                                   `json:"last_check"`
	Duration  time.Duration                               `json:"duration"`
	CheckFunc func(ctx context.Context) HealthCheckResult `json:"-"`
	Timeout   time.Duration                               `json:"-"`
	Critical  bool                                        `json:"critical"`
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status  HealthStatus
	Message string
	Error   error
}

// HealthManager runs registered checks and aggregates their status
type HealthManager struct {
	mu      sync.RWMutex
	checks  map[string]*HealthCheck
	version string
	timeout time.Duration
	started time.Time
}

// SystemHealth represents overall system health information
type SystemHealth struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Uptime    string        `json:"uptime"`
	Checks    []HealthCheck `json:"checks,omitempty"`
	System    SystemMetrics `json:"system"`
}

// SystemMetrics provides process-level figures
type SystemMetrics struct {
	GoroutineCount int    `json:"goroutine_count"`
	AllocatedBytes uint64 `json:"allocated_bytes"`
	NumGC          uint32 `json:"num_gc"`
}

// NewHealthManager creates a new health manager
func NewHealthManager(version string, defaultTimeout time.Duration) *HealthManager {
	if defaultTimeout <= 0 {
		defaultTimeout = 5 * time.Second
	}
	return &HealthManager{
		checks:  make(map[string]*HealthCheck),
		version: version,
		timeout: defaultTimeout,
		started: time.Now(),
	}
}

// RegisterCheck registers a new health check
func (hm *HealthManager) RegisterCheck(check *HealthCheck) {
	if check.Timeout == 0 {
		check.Timeout = hm.timeout
	}
	if check.Status == "" {
		check.Status = HealthStatusUnknown
	}
	hm.mu.Lock()
	hm.checks[check.Name] = check
	hm.mu.Unlock()
}

// Check runs every registered check concurrently and returns the aggregate
func (hm *HealthManager) Check(ctx context.Context) SystemHealth {
	hm.mu.RLock()
	checks := make([]*HealthCheck, 0, len(hm.checks))
	for _, check := range hm.checks {
		checks = append(checks, check)
	}
	hm.mu.RUnlock()

	results := make([]HealthCheck, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, c *HealthCheck) {
			defer wg.Done()
			results[i] = runCheck(ctx, c)
		}(i, check)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemHealth{
		Status:    aggregate(results),
		Timestamp: time.Now(),
		Version:   hm.version,
		Uptime:    time.Since(hm.started).Round(time.Second).String(),
		Checks:    results,
		System: SystemMetrics{
			GoroutineCount: runtime.NumGoroutine(),
			AllocatedBytes: m.Alloc,
			NumGC:          m.NumGC,
		},
	}
}

// runCheck runs a single health check and returns a snapshot of it
func runCheck(ctx context.Context, check *HealthCheck) HealthCheck {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	result := HealthCheckResult{
		Status:  HealthStatusUnknown,
		Message: "No check function defined",
	}
	if check.CheckFunc != nil {
		result = check.CheckFunc(checkCtx)
	}

	snapshot := HealthCheck{
		Name:      check.Name,
		Status:    result.Status,
		Message:   result.Message,
		LastCheck: start,
		Duration:  time.Since(start),
		Critical:  check.Critical,
	}
	if result.Error != nil {
		snapshot.Error = result.Error.Error()
	}
	return snapshot
}

func aggregate(checks []HealthCheck) HealthStatus {
	overall := HealthStatusHealthy
	for _, check := range checks {
		switch check.Status {
		case HealthStatusHealthy:
		case HealthStatusUnhealthy:
			if check.Critical {
				return HealthStatusUnhealthy
			}
			overall = HealthStatusDegraded
		default:
			overall = HealthStatusDegraded
		}
	}
	return overall
}

// HealthHandler returns the HTTP handler for the health endpoint
func (hm *HealthManager) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := hm.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		json.NewEncoder(w).Encode(health)
	}
}

// DependencyHealthCheck wraps a connectivity probe such as a cache ping
func DependencyHealthCheck(name string, critical bool, probe func(ctx context.Context) error) *HealthCheck {
	return &HealthCheck{
		Name:     name,
		Critical: critical,
		CheckFunc: func(ctx context.Context) HealthCheckResult {
			if err := probe(ctx); err != nil {
				return HealthCheckResult{
					Status:  HealthStatusUnhealthy,
					Message: fmt.Sprintf("%s unreachable", name),
					Error:   err,
				}
			}
			return HealthCheckResult{
				Status:  HealthStatusHealthy,
				Message: fmt.Sprintf("%s reachable", name),
			}
		},
	}
}

// GoroutineHealthCheck degrades when the goroutine count exceeds the limit
func GoroutineHealthCheck(maxGoroutines int) *HealthCheck {
	return &HealthCheck{
		Name: "goroutines",
		CheckFunc: func(ctx context.Context) HealthCheckResult {
			count := runtime.NumGoroutine()
			if count > maxGoroutines {
				return HealthCheckResult{
					Status:  HealthStatusDegraded,
					Message: fmt.Sprintf("High goroutine count: %d", count),
				}
			}
			return HealthCheckResult{
				Status:  HealthStatusHealthy,
				Message: fmt.Sprintf("Goroutine count: %d", count),
			}
		},
	}
}
