// Package http exposes the ledger over a small JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"savings/internal/core"
	applog "savings/internal/log"
)

// LedgerAPI is the subset of the ledger service the handlers need.
type LedgerAPI interface {
	AddRecord(ctx context.Context, t core.RecordType, amount string, c core.Category, month, tags string) (core.Record, error)
	SetGoal(ctx context.Context, month, target string) (core.Goal, error)
	Records(ctx context.Context) ([]core.Record, error)
	Summary(ctx context.Context) ([]core.MonthlySummary, error)
	Breakdown(ctx context.Context, month string) ([]core.CategoryAmount, error)
	ExportCSV(ctx context.Context) (string, error)
	ExportSheets(ctx context.Context) (string, error)
}

// Options tune the server. Zero values select defaults.
type Options struct {
	RateLimitPerMinute int
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	api          LedgerAPI
	logger       *applog.Logger
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, api LedgerAPI, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		api:         api,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /categories", handleCategories)
	mux.HandleFunc("POST /records", s.handleAddRecord)
	mux.HandleFunc("GET /records", s.handleListRecords)
	mux.HandleFunc("POST /goals", s.handleSetGoal)
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /summary/{month}/categories", s.handleBreakdown)
	mux.HandleFunc("GET /export.csv", s.handleExportCSV)
	mux.HandleFunc("POST /export/sheets", s.handleExportSheets)

	s.Handler = s.withMiddleware(mux)
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware assigns a request id, applies security headers and POST
// rate limiting, and logs every request.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = generateRequestID()
		}
		logger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := applog.NewContext(r.Context(), logger)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		setSecurityHeaders(w.Header())

		logger.LogHTTPStart(ctx, r, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", applog.NewFields().
				WithClientIP(clientIP).
				WithErrorType(applog.ErrorTypeRateLimit).
				ToSlice()...)
			ErrorResponse(http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded, try again later").
				Header("Retry-After", "60").
				Write(rw)
		} else {
			next.ServeHTTP(rw, r)
		}

		logger.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
