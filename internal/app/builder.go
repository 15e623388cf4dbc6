package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rentfleet/fleet-sync/internal/api"
	"github.com/rentfleet/fleet-sync/internal/config"
	"github.com/rentfleet/fleet-sync/internal/sync"
	"github.com/rentfleet/fleet-sync/internal/sync/jobs"
	"github.com/rentfleet/fleet-sync/internal/telemetry"
)

const (
	defaultHTTPAddress = ":8080"
	defaultReadTimeout = 10 * time.Second
	defaultIdleTimeout = 60 * time.Second

	// Trigger requests run a whole job before answering, so writes are not
	// bounded by a server timeout.
	defaultWriteTimeout = 0
)

// Option is a function that configures the app builder
type Option func(*appConfig) error

type appConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	executor jobs.Executor
	sink     sync.Sink

	dryRun    bool
	statusDir string

	// HTTP server options
	address      string
	middlewares  []func(http.Handler) http.Handler
	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
}

func baseConfig(opts ...Option) (*appConfig, error) {
	cfg := &appConfig{
		address:      defaultHTTPAddress,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
		idleTimeout:  defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewSyncApp builds the components and the HTTP server of the serve command
func NewSyncApp(ctx context.Context, opts ...Option) (*SyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, components)
	if err != nil {
		_ = components.Close(ctx)
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	return &SyncApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) Option {
	return func(cfg *appConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) Option {
	return func(cfg *appConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *appConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStatusDirectory persists job status in dir. Without it, status only
// lives in memory.
func WithStatusDirectory(dir string) Option {
	return func(cfg *appConfig) error {
		cfg.statusDir = dir
		return nil
	}
}

// WithDryRun writes documents to an in-memory store instead of the configured sink
func WithDryRun(dryRun bool) Option {
	return func(cfg *appConfig) error {
		cfg.dryRun = dryRun
		return nil
	}
}

// WithExecutor allows injecting the source executor (for testing)
func WithExecutor(exec jobs.Executor) Option {
	return func(cfg *appConfig) error {
		cfg.executor = exec
		return nil
	}
}

// WithSink allows injecting the document sink (for testing)
func WithSink(sink sync.Sink) Option {
	return func(cfg *appConfig) error {
		cfg.sink = sink
		return nil
	}
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *appConfig, c *AppComponents) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			api.LoggingMiddleware,
		}
	}

	if c.Telemetry != nil {
		httpMetrics, err := telemetry.NewHTTPMetrics(c.Telemetry.MeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
		}
		// Metrics and tracing come first so they see every request.
		b.middlewares = append([]func(http.Handler) http.Handler{
			telemetry.TracingMiddleware(c.Telemetry.TracerProvider()),
			httpMetrics.Middleware,
		}, b.middlewares...)
	}

	router := api.NewServer(c.Coordinator,
		api.WithMiddlewares(b.middlewares...),
		api.WithReadinessCheck(c.CheckReadiness),
	)

	return &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}, nil
}
