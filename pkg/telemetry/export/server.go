package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"mercator-hq/routemetrics/pkg/telemetry/health"
	"mercator-hq/routemetrics/pkg/telemetry/metrics"
	"mercator-hq/routemetrics/pkg/telemetry/tracing"
)

// Default server settings.
const (
	DefaultHostname        = "127.0.0.1"
	DefaultPort            = 9090
	DefaultMetricsPath     = "/metrics"
	DefaultName            = "routemetrics"
	DefaultVersion         = "0.1.0"
	DefaultScrapeInterval  = 15 * time.Second
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 5 * time.Second

	// HealthPath and RootPath are fixed.
	HealthPath = "/health"
	RootPath   = "/"

	// ContentType is the Prometheus text exposition content type.
	ContentType = "text/plain; version=0.0.4; charset=utf-8"
)

// MetricsHandlerFunc produces the /metrics body in place of the default
// collector+formatter rendering.
type MetricsHandlerFunc func(ctx context.Context) (string, error)

// Config contains configuration for the export server.
type Config struct {
	// Enabled gates Start. Default: true
	Enabled bool

	// Hostname is the interface to bind. Default: "127.0.0.1"
	Hostname string

	// Port is the TCP port to bind; 0 picks a free port. Default: 9090
	Port int

	// MetricsPath serves the exposition text. Default: "/metrics"
	MetricsPath string

	// EnableCORS adds permissive CORS headers to every response.
	EnableCORS bool

	// Name and Version are reported by the discovery document at /.
	Name    string
	Version string

	// ScrapeInterval is the interval recommended to scrapers.
	ScrapeInterval time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Handler, when set, renders the /metrics body instead of the collector.
	Handler MetricsHandlerFunc

	// Tracer, when set, opens a server span for every request.
	Tracer *tracing.Tracer
}

// DefaultConfig returns an enabled configuration listening on
// 127.0.0.1:9090.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Hostname:        DefaultHostname,
		Port:            DefaultPort,
		MetricsPath:     DefaultMetricsPath,
		Name:            DefaultName,
		Version:         DefaultVersion,
		ScrapeInterval:  DefaultScrapeInterval,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// applyDefaults fills unset fields. Port 0 is meaningful and kept.
func (c *Config) applyDefaults() {
	if c.Hostname == "" {
		c.Hostname = DefaultHostname
	}
	if c.MetricsPath == "" {
		c.MetricsPath = DefaultMetricsPath
	}
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.ScrapeInterval <= 0 {
		c.ScrapeInterval = DefaultScrapeInterval
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// checkMetricsPath rejects paths the mux would refuse or that shadow the
// fixed routes.
func checkMetricsPath(path string) error {
	switch {
	case !strings.HasPrefix(path, "/"):
		return fmt.Errorf("%w: %q must start with '/'", ErrInvalidMetricsPath, path)
	case path == HealthPath || path == RootPath:
		return fmt.Errorf("%w: %q collides with a built-in route", ErrInvalidMetricsPath, path)
	case strings.ContainsAny(path, " \t{}"):
		return fmt.Errorf("%w: %q contains a pattern character", ErrInvalidMetricsPath, path)
	}
	return nil
}

// MetricsSource supplies snapshots. *metrics.Collector satisfies it.
type MetricsSource interface {
	GetMetrics() metrics.Snapshot
	IsEnabled() bool
}

// SnapshotFormatter renders a snapshot. *exposition.Formatter satisfies it.
type SnapshotFormatter interface {
	Format(snapshot *metrics.Snapshot) (string, error)
}

// Server serves a collector's live snapshot over HTTP. Every scrape builds a
// fresh snapshot; nothing is cached.
//
// The server moves between two states, stopped and running. Start binds the
// listener synchronously so bind failures are returned to the caller.
type Server struct {
	config    Config
	source    MetricsSource
	formatter SnapshotFormatter
	checker   *health.Checker
	logger    *slog.Logger

	// lifecycle serializes Start and Stop; mu guards the fields below.
	lifecycle sync.Mutex

	mu         sync.RWMutex
	enabled    bool
	running    bool
	httpServer *http.Server
	listener   net.Listener
	serveDone  chan struct{}
	startedAt  time.Time
}

// NewServer creates a stopped server. A "collector" health check reporting
// whether the source is enabled is registered automatically.
func NewServer(cfg Config, source MetricsSource, formatter SnapshotFormatter, logger *slog.Logger) *Server {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	checker := health.New(0)
	checker.RegisterCheck("collector", func(ctx context.Context) error {
		if !source.IsEnabled() {
			return errors.New("metrics collection disabled")
		}
		return nil
	})

	return &Server{
		config:    cfg,
		source:    source,
		formatter: formatter,
		checker:   checker,
		logger:    logger.With("component", "export.server"),
		enabled:   cfg.Enabled,
	}
}

// Start binds hostname:port and begins serving in the background. It fails
// if the server is already running or the address cannot be bound. A
// disabled server logs and returns nil without binding.
func (s *Server) Start() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	addr := net.JoinHostPort(s.config.Hostname, strconv.Itoa(s.config.Port))

	s.mu.RLock()
	enabled, running := s.enabled, s.running
	s.mu.RUnlock()

	if !enabled {
		s.logger.Info("metrics export server disabled, not starting", "address", addr)
		return nil
	}
	if running {
		return &LifecycleError{Op: "start", Addr: s.Addr(), Err: ErrAlreadyRunning}
	}
	if err := checkMetricsPath(s.config.MetricsPath); err != nil {
		return &LifecycleError{Op: "start", Addr: addr, Err: err}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return &LifecycleError{Op: "start", Addr: addr, Err: err}
	}

	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics export server error", "error", err)
		}
	}()

	s.mu.Lock()
	s.httpServer = httpServer
	s.listener = listener
	s.serveDone = done
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("metrics export server started",
		"address", listener.Addr().String(),
		"metrics_path", s.config.MetricsPath,
		"cors", s.config.EnableCORS,
	)

	return nil
}

// Stop shuts the server down and releases the listening socket before
// returning. Stopping a stopped server is a no-op. Shutdown errors are
// logged, not returned.
func (s *Server) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.RLock()
	running, httpServer, done := s.running, s.httpServer, s.serveDone
	s.mu.RUnlock()

	if !running {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	// Shutdown closes the listener first, then waits for in-flight requests.
	if err := httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("metrics export server shutdown error", "error", err)
		_ = httpServer.Close()
	}
	<-done

	s.mu.Lock()
	s.running = false
	s.httpServer = nil
	s.listener = nil
	s.serveDone = nil
	s.mu.Unlock()

	s.logger.Info("metrics export server stopped")
}

// Restart stops and starts the server. It does nothing unless the server
// was running and is still enabled.
func (s *Server) Restart() error {
	if !s.IsRunning() || !s.IsEnabled() {
		return nil
	}

	s.Stop()
	return s.Start()
}

// Enable allows future Start calls to bind.
func (s *Server) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
}

// Disable makes future Start calls no-ops. A running server keeps running.
func (s *Server) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
}

// IsEnabled reports whether Start will bind.
func (s *Server) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// IsRunning reports whether the server is listening.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound address, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL of the running server, or "" when stopped.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	return fmt.Sprintf("http://%s", addr)
}

// Checker exposes the health checker so callers can register more checks.
func (s *Server) Checker() *health.Checker {
	return s.checker
}

// Config returns the effective configuration.
func (s *Server) Config() Config {
	return s.config
}

// uptime returns the time since the last successful Start.
func (s *Server) uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}
