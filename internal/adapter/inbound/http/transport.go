// Package http provides the HTTP transport adapter for the refund notary.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/decide-fyi/refund-notary/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transport is the inbound adapter that serves the refund notary over HTTP.
// It hosts the JSON eligibility API, the yes/no oracle endpoint, and an
// optional MCP handler on a single listener.
type Transport struct {
	eligibility     *service.EligibilityService
	oracle          *service.OracleService
	server          *http.Server
	addr            string
	allowedOrigins  []string
	serveOracle     bool
	mcpHandler      func(*Metrics) http.Handler
	logger          *slog.Logger
	metrics         *Metrics
	healthChecker   *HealthChecker
	shutdownTimeout time.Duration
}

// Option is a functional option for configuring Transport.
type Option func(*Transport)

// WithAddr sets the listen address for the HTTP server.
// Default is "127.0.0.1:8080" (localhost only).
func WithAddr(addr string) Option {
	return func(t *Transport) {
		t.addr = addr
	}
}

// WithAllowedOrigins sets the allowed origins for cross-origin requests.
// If empty, all requests with an Origin header are blocked (local-only mode).
// Example: []string{"https://example.com", "http://localhost:3000"}
func WithAllowedOrigins(origins []string) Option {
	return func(t *Transport) {
		t.allowedOrigins = origins
	}
}

// WithLogger sets the logger for the HTTP transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithOracle enables the /api/decide endpoint. A nil service keeps the
// route mounted but degrades every call to a logged 500 "try again",
// matching the behavior when the upstream API key is absent.
func WithOracle(svc *service.OracleService) Option {
	return func(t *Transport) {
		t.oracle = svc
		t.serveOracle = true
	}
}

// WithMCPHandler mounts a JSON-RPC handler at /mcp. The constructor
// receives the transport's metrics so tool-call verdicts are counted
// alongside HTTP ones.
func WithMCPHandler(build func(*Metrics) http.Handler) Option {
	return func(t *Transport) {
		t.mcpHandler = build
	}
}

// WithHealthChecker sets the health checker for the /health endpoint.
func WithHealthChecker(hc *HealthChecker) Option {
	return func(t *Transport) {
		t.healthChecker = hc
	}
}

// WithShutdownTimeout bounds graceful shutdown. Default 10s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.shutdownTimeout = d
	}
}

// NewTransport creates an HTTP transport adapter wrapping the given
// eligibility service.
func NewTransport(eligibility *service.EligibilityService, opts ...Option) *Transport {
	t := &Transport{
		eligibility:     eligibility,
		addr:            "127.0.0.1:8080",
		allowedOrigins:  []string{},
		logger:          slog.Default(),
		shutdownTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Handler builds the full HTTP handler with routes and middleware.
// Exposed separately from Start so tests can drive it with httptest.
func (t *Transport) Handler() http.Handler {
	// Create Prometheus registry and metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	t.metrics = NewMetrics(reg)

	mux := http.NewServeMux()

	eligibility := eligibilityHandler(t.eligibility, t.metrics)
	mux.Handle("/refund/eligibility", eligibility)
	// Versioned alias kept for clients of the original API layout.
	mux.Handle("/api/v1/refund/eligibility", eligibility)

	if t.serveOracle {
		mux.Handle("/api/decide", decideHandler(t.oracle, t.metrics))
	}

	if t.mcpHandler != nil {
		h := t.mcpHandler(t.metrics)
		mux.Handle("/mcp", h)
		mux.Handle("/mcp/", h)
	}

	if t.healthChecker != nil {
		mux.Handle("/health", t.healthChecker.Handler())
	} else {
		// Fallback to simple handler if no checker configured
		mux.Handle("/health", healthHandler())
	}
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry: reg,
	}))
	// Favicon handler to prevent browser 500 errors
	mux.Handle("/favicon.ico", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// Middleware chain (outermost first):
	// 1. MetricsMiddleware - record duration and status (outermost to capture full duration)
	// 2. RequestID - extract/generate request ID and enrich logger
	// 3. CORS - preflight and Origin allowlist
	// 4. Recover - panic to 500
	var handler http.Handler = mux
	handler = RecoverMiddleware()(handler)
	handler = CORSMiddleware(t.allowedOrigins)(handler)
	handler = RequestIDMiddleware(t.logger)(handler)
	handler = MetricsMiddleware(t.metrics)(handler)

	return handler
}

// Start begins accepting HTTP connections.
// It blocks until the context is cancelled or an error occurs.
func (t *Transport) Start(ctx context.Context) error {
	t.server = &http.Server{
		Addr:    t.addr,
		Handler: t.Handler(),
	}

	errCh := make(chan error, 1)

	go func() {
		t.logger.Info("starting HTTP server", "addr", t.addr)
		err := t.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("context cancelled, shutting down HTTP server")
		return t.shutdown()
	case err := <-errCh:
		return err
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (t *Transport) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), t.shutdownTimeout)
	defer cancel()

	if err := t.server.Shutdown(ctx); err != nil {
		t.logger.Error("error during server shutdown", "error", err)
		return err
	}

	t.logger.Info("HTTP server shutdown complete")
	return nil
}

// Close gracefully shuts down the transport.
func (t *Transport) Close() error {
	if t.server == nil {
		return nil
	}
	return t.shutdown()
}
