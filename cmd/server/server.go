// cmd/server/server.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/valpere/OGScrapexter/internal/config"
	"github.com/valpere/OGScrapexter/internal/monitoring"
	"github.com/valpere/OGScrapexter/internal/scraper"
	"github.com/valpere/OGScrapexter/internal/utils"
)

const (
	maxRequestBody      = 10 << 20
	requestIDHeader     = "X-Request-ID"
	healthCheckKey      = "og:healthcheck"
	maxHealthGoroutines = 10000
	reloadGracePeriod   = 5 * time.Second
)

type contextKey string

const requestIDKey contextKey = "request_id"

// serverState is swapped as a whole on configuration reload
type serverState struct {
	config  *config.Config
	runtime *config.Runtime
}

// Server serves the extraction API
type Server struct {
	state   atomic.Pointer[serverState]
	health  *monitoring.HealthManager
	limiter *utils.RateLimiter
	logger  utils.Logger
	router  *mux.Router
}

// ExtractRequest is the body of POST /api/v1/extract. Exactly one of URL and
// HTML must be set.
type ExtractRequest struct {
	URL  string `json:"url,omitempty"`
	HTML string `json:"html,omitempty"`
}

// BulkRequest is the body of POST /api/v1/bulk
type BulkRequest struct {
	URLs []string `json:"urls"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorBody describes a failure
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewServer builds the runtime described by cfg and the API routes
func NewServer(cfg *config.Config, logger utils.Logger) (*Server, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	rt, err := cfg.Build(logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		health: monitoring.NewHealthManager(version, 5*time.Second),
		logger: logger,
	}
	s.state.Store(&serverState{config: cfg, runtime: rt})
	if cfg.Server.RateLimit > 0 {
		s.limiter = utils.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.Burst)
	}

	s.health.RegisterCheck(monitoring.DependencyHealthCheck("cache", true, func(ctx context.Context) error {
		_, err := s.current().runtime.Cache.Has(ctx, healthCheckKey)
		return err
	}))
	s.health.RegisterCheck(monitoring.GoroutineHealthCheck(maxHealthGoroutines))

	s.router = s.setupRoutes()
	return s, nil
}

func (s *Server) current() *serverState {
	return s.state.Load()
}

// Handler returns the HTTP handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware, s.loggingMiddleware)

	r.HandleFunc("/health", s.health.HealthHandler()).Methods(http.MethodGet)
	r.HandleFunc(s.current().config.Metrics.MetricsPath, s.metricsHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/extract", s.extractHandler).Methods(http.MethodPost)
	api.HandleFunc("/bulk", s.bulkHandler).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

// Reload swaps in a runtime built from cfg. The previous runtime is closed
// after a grace period so in-flight requests can finish with it.
func (s *Server) Reload(cfg *config.Config) error {
	old := s.current()
	rt, err := cfg.BuildWith(s.logger, old.runtime.Metrics)
	if err != nil {
		return err
	}
	s.state.Store(&serverState{config: cfg, runtime: rt})

	time.AfterFunc(reloadGracePeriod, func() {
		if err := old.runtime.Close(); err != nil {
			s.logger.Warnf("failed to close previous runtime: %v", err)
		}
	})
	s.logger.Info("configuration reloaded")
	return nil
}

// Close releases the current runtime
func (s *Server) Close() error {
	return s.current().runtime.Close()
}

func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	if (rawURL == "") == (req.HTML == "") {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "exactly one of url and html is required")
		return
	}

	state := s.current()
	if req.HTML != "" {
		writeJSON(w, http.StatusOK, state.runtime.Engine.ExtractHTML([]byte(req.HTML)))
		return
	}

	normalized, _ := utils.NormalizeURL(rawURL)
	result, err := state.runtime.Engine.Scrape(r.Context(), normalized)
	if err != nil {
		writeScrapeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) bulkHandler(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	state := s.current()
	if len(req.URLs) == 0 {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "urls is required")
		return
	}
	if limit := state.config.Server.MaxBulkURLs; len(req.URLs) > limit {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("at most %d urls per request", limit))
		return
	}

	urls := make([]string, len(req.URLs))
	for i, u := range req.URLs {
		urls[i], _ = utils.NormalizeURL(strings.TrimSpace(u))
	}

	logger := requestLogger(s.logger, r)
	bulkConfig := state.config.BulkRunnerConfig()
	bulkConfig.OnError = func(err error, url string) {
		logger.WithField("url", url).Debugf("bulk item failed: %v", err)
	}

	response, err := scraper.NewBulkRunner(state.runtime.Engine, bulkConfig, logger).Run(r.Context(), urls)
	if response != nil && state.runtime.Metrics != nil {
		state.runtime.Metrics.RecordBulk(response.Summary.Successful, response.Summary.Failed, response.Summary.TotalDuration)
	}
	if err != nil && response == nil {
		writeScrapeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	metrics := s.current().runtime.Metrics
	if metrics == nil {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "metrics are disabled")
		return
	}
	metrics.MetricsHandler().ServeHTTP(w, r)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		requestLogger(s.logger, r).WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   recorder.status,
			"duration": utils.FormatDuration(time.Since(start)),
		}).Info("request handled")
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, string(utils.ErrCodeRateLimited), "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func requestLogger(logger utils.Logger, r *http.Request) utils.Logger {
	if id := requestID(r); id != "" {
		return logger.WithField("request_id", id)
	}
	return logger
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps an error code onto the HTTP status returned to API clients
func statusFor(code utils.ErrorCode) int {
	switch code {
	case utils.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case utils.ErrCodeURLBlocked:
		return http.StatusForbidden
	case utils.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout
	case utils.ErrCodeNetworkFailure, utils.ErrCodeHTTPStatus:
		return http.StatusBadGateway
	case utils.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case utils.ErrCodeContentType, utils.ErrCodeBodyTooLarge, utils.ErrCodeParsingError:
		return http.StatusUnprocessableEntity
	case utils.ErrCodeContextCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func writeScrapeError(w http.ResponseWriter, r *http.Request, err error) {
	code := utils.CodeOf(err)
	writeError(w, r, statusFor(code), string(code), utils.GetUserFriendlyMessage(err))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     ErrorBody{Code: code, Message: message},
		RequestID: requestID(r),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
