package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/spawn/pkg/descriptor"
	"github.com/vango-dev/spawn/pkg/metrics"
	"github.com/vango-dev/spawn/pkg/render"
)

// Config holds server settings.
type Config struct {
	// Address is the listen address (default: "localhost:3000").
	Address string

	// Render configures the HTML output.
	Render render.RendererConfig

	// Lang is used when the page does not set one.
	Lang string

	// LiveReload injects the reload script and serves GET /ws.
	LiveReload bool

	// Watch lists extra paths whose changes trigger a reload.
	Watch []string

	// MaxBodyBytes limits POST /render bodies (default: 1 MiB).
	MaxBodyBytes int64

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Address:         "localhost:3000",
		Render:          render.RendererConfig{Indent: "  "},
		Lang:            "en",
		LiveReload:      true,
		MaxBodyBytes:    1 << 20,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server previews one descriptor document over HTTP.
type Server struct {
	path     string
	config   Config
	logger   *slog.Logger
	cache    *descriptor.Cache
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	tracer   trace.Tracer
	traced   bool
	hub      *Hub
	router   chi.Router

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache decodes the document through c.
func WithCache(c *descriptor.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithMetrics records into m and serves g on GET /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithTracerProvider traces requests and build steps with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracer = tp.Tracer(defaultTracerName)
		s.traced = true
	}
}

// WithTracing traces with the global tracer provider.
func WithTracing() Option {
	return func(s *Server) {
		s.tracer = otel.Tracer(defaultTracerName)
		s.traced = true
	}
}

// New creates a server for the document at path.
func New(path string, config Config, opts ...Option) *Server {
	defaults := DefaultConfig()
	if config.Address == "" {
		config.Address = defaults.Address
	}
	if config.Render.Indent == "" {
		config.Render.Indent = defaults.Render.Indent
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	s := &Server{
		path:   path,
		config: config,
		logger: slog.Default(),
		tracer: otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.logger, s.metrics)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.metrics.Middleware)
	if s.traced {
		r.Use(tracing(s.tracer))
	}

	r.Get("/", s.handlePage)
	r.Get("/outline", s.handleOutline)
	r.Get("/query", s.handleQuery)
	r.Post("/render", s.handleRender)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.config.LiveReload {
		r.Method(http.MethodGet, "/ws", s.hub)
	}
	return r
}

// logRequests logs one line per request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub returns the live reload hub.
func (s *Server) Hub() *Hub { return s.hub }

// Watch reloads connected browsers whenever the document or one of the
// configured watch paths changes. It blocks until ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	paths := append([]string{s.path}, s.config.Watch...)
	w, err := NewWatcher(s.logger, DefaultDebounce, paths...)
	if err != nil {
		return err
	}
	return w.Run(ctx, s.onChange)
}

func (s *Server) onChange(paths []string) {
	s.logger.Info("files changed", "paths", paths)
	if _, err := s.load(); err != nil {
		s.logger.Warn("document does not decode", "error", err)
		s.hub.NotifyError(err.Error())
		return
	}
	s.hub.NotifyReload(paths[0])
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.config.LiveReload {
		go func() {
			if err := s.Watch(ctx); err != nil {
				s.logger.Warn("live reload disabled", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "document", s.path)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.hub.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
