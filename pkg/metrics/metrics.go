// Package metrics provides Prometheus collectors for spawn builds, page
// renders, the preview server and publishing.
//
// A Metrics value owns its collectors. Register them with WithRegistry and
// hook builder diagnostics in through Reporter:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg))
//	b := spawn.New(doc, spawn.WithReporter(m.Reporter(nil)))
//
// All recording methods are no-ops on a nil *Metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	spawnerrors "github.com/vango-dev/spawn/internal/errors"
	"github.com/vango-dev/spawn/pkg/spawn"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "spawn").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "spawn",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	diagnostics   *prometheus.CounterVec
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	renderedBytes prometheus.Counter
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
	liveClients   prometheus.Gauge
	reloads       prometheus.Counter
	wsErrors      *prometheus.CounterVec
	uploads       *prometheus.CounterVec
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	histogram := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, labels)
	}

	return &Metrics{
		diagnostics:   counter("diagnostics_total", "Recovered builder problems by code and operation", "code", "op"),
		builds:        counter("builds_total", "Document builds by operation and status", "op", "status"),
		buildDuration: histogram("build_duration_seconds", "Document build duration in seconds", "op"),
		renderedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rendered_bytes_total",
			Help:        "Bytes of HTML rendered",
			ConstLabels: config.ConstLabels,
		}),
		requests:    counter("http_requests_total", "Preview server requests by route and status", "route", "status"),
		reqDuration: histogram("http_request_duration_seconds", "Preview server request duration in seconds", "route"),
		liveClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_reload_clients",
			Help:        "Connected live reload clients",
			ConstLabels: config.ConstLabels,
		}),
		reloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reloads_total",
			Help:        "Live reload broadcasts",
			ConstLabels: config.ConstLabels,
		}),
		wsErrors: counter("websocket_errors_total", "WebSocket errors by type", "type"),
		uploads:  counter("uploads_total", "Published objects by status", "status"),
	}
}

// Reporter returns a diagnostic reporter for spawn.WithReporter that
// counts diagnostics and then calls next, if any.
func (m *Metrics) Reporter(next func(spawn.Diagnostic)) func(spawn.Diagnostic) {
	return func(d spawn.Diagnostic) {
		if m != nil {
			m.diagnostics.WithLabelValues(d.Code, d.Op).Inc()
		}
		if next != nil {
			next(d)
		}
	}
}

// Track starts timing a build operation. Call the returned function with
// the operation's error when it finishes.
func (m *Metrics) Track(op string) func(err error) {
	start := time.Now()
	return func(err error) {
		if m == nil {
			return
		}
		m.buildDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = categorizeError(err)
		}
		m.builds.WithLabelValues(op, status).Inc()
	}
}

// RecordRendered adds n rendered bytes.
func (m *Metrics) RecordRendered(n int) {
	if m != nil {
		m.renderedBytes.Add(float64(n))
	}
}

// RecordClientConnect records a live reload client connecting.
func (m *Metrics) RecordClientConnect() {
	if m != nil {
		m.liveClients.Inc()
	}
}

// RecordClientDisconnect records a live reload client leaving.
func (m *Metrics) RecordClientDisconnect() {
	if m != nil {
		m.liveClients.Dec()
	}
}

// RecordReload records one reload broadcast.
func (m *Metrics) RecordReload() {
	if m != nil {
		m.reloads.Inc()
	}
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	if m != nil {
		m.wsErrors.WithLabelValues(errorType).Inc()
	}
}

// RecordUpload records one published object.
func (m *Metrics) RecordUpload(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.uploads.WithLabelValues(status).Inc()
}

// Middleware records request counts and durations by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.reqDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

// categorizeError labels an error by its diagnostic code so error messages
// never become label values.
func categorizeError(err error) string {
	var se *spawnerrors.SpawnError
	if errors.As(err, &se) && se.Code != "" {
		return se.Code
	}
	return "error"
}
