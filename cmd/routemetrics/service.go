package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/routemetrics/pkg/config"
	"mercator-hq/routemetrics/pkg/telemetry/export"
	"mercator-hq/routemetrics/pkg/telemetry/exposition"
	"mercator-hq/routemetrics/pkg/telemetry/metrics"
	"mercator-hq/routemetrics/pkg/telemetry/tracing"
)

// tracerShutdownTimeout bounds the final span flush.
const tracerShutdownTimeout = 5 * time.Second

// service owns the collector and the components that feed and expose it.
// The collector lives for the whole process; the scheduler and export
// server are rebuilt when a reloaded configuration changes them.
type service struct {
	collector *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger

	mu        sync.Mutex
	cfg       *config.Config
	ctx       context.Context
	scheduler *metrics.SamplingScheduler
	server    *export.Server
}

func newService(cfg *config.Config, logger *slog.Logger) (*service, error) {
	tracer, err := tracing.New(cfg.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	s := &service{
		collector: metrics.NewCollector(collectorConfig(cfg.Collector, logger)),
		tracer:    tracer,
		logger:    logger,
		cfg:       cfg,
	}

	server, err := s.buildServer(cfg)
	if err != nil {
		tracer.Shutdown(context.Background())
		return nil, err
	}
	s.server = server

	return s, nil
}

func (s *service) buildServer(cfg *config.Config) (*export.Server, error) {
	handler, err := renderer(cfg.Format, s.collector)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s renderer: %w", cfg.Format.Engine, err)
	}

	ecfg := exporterConfig(cfg.Exporter)
	ecfg.Handler = handler
	if s.tracer.Enabled() {
		ecfg.Tracer = s.tracer
	}

	formatter := exposition.NewFormatter(formatterOptions(cfg.Format))
	return export.NewServer(ecfg, s.collector, formatter, s.logger), nil
}

// start begins memory sampling and serving. The scheduler stops on its own
// when ctx is cancelled; the server is stopped by stop.
func (s *service) start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	s.scheduler = metrics.NewSamplingScheduler(s.collector, s.cfg.Collector.MemorySampleSchedule, s.logger)
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start memory sampling: %w", err)
	}

	if err := s.server.Start(); err != nil {
		s.scheduler.Stop()
		return err
	}

	return nil
}

func (s *service) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server.Stop()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()
	if err := s.tracer.Shutdown(ctx); err != nil {
		s.logger.Warn("failed to flush traces", "error", err)
	}
}

// url returns the export server's base URL, or "" when it is not running.
func (s *service) url() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server.URL()
}

// apply reconciles the running service with a reloaded configuration.
// Collector sizing is fixed at startup; changes to it are logged and
// ignored until the next restart.
func (s *service) apply(next *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.cfg

	if next.Collector.Enabled != prev.Collector.Enabled {
		if next.Collector.Enabled {
			s.collector.Enable()
		} else {
			s.collector.Disable()
		}
		s.logger.Info("metrics collection toggled", "enabled", next.Collector.Enabled)
	}

	if next.Collector.WindowSeconds != prev.Collector.WindowSeconds ||
		next.Collector.HistoryCapacity != prev.Collector.HistoryCapacity ||
		next.Collector.MaxErrorTypes != prev.Collector.MaxErrorTypes {
		s.logger.Warn("collector sizing changed; restart to apply",
			"window_seconds", next.Collector.WindowSeconds,
			"history_capacity", next.Collector.HistoryCapacity,
			"max_error_types", next.Collector.MaxErrorTypes,
		)
	}

	if next.Logging != prev.Logging {
		s.logger.Warn("logging configuration changed; restart to apply")
	}

	if next.Tracing != prev.Tracing {
		s.logger.Warn("tracing configuration changed; restart to apply")
	}

	if next.Collector.MemorySampleSchedule != prev.Collector.MemorySampleSchedule && s.ctx != nil {
		if s.scheduler != nil {
			s.scheduler.Stop()
		}
		s.scheduler = metrics.NewSamplingScheduler(s.collector, next.Collector.MemorySampleSchedule, s.logger)
		if err := s.scheduler.Start(s.ctx); err != nil {
			return fmt.Errorf("failed to restart memory sampling: %w", err)
		}
	}

	if next.Exporter != prev.Exporter || next.Format != prev.Format {
		server, err := s.buildServer(next)
		if err != nil {
			return err
		}

		s.server.Stop()
		s.server = server

		// A disabled server's Start is a no-op.
		if s.ctx != nil {
			if err := server.Start(); err != nil {
				return fmt.Errorf("failed to restart metrics export server: %w", err)
			}
		}
		s.logger.Info("metrics export server reconfigured", "address", server.Addr())
	}

	s.cfg = next
	return nil
}
