package main

import (
	"context"
	"io"
	"log/slog"

	"mercator-hq/routemetrics/pkg/config"
	"mercator-hq/routemetrics/pkg/telemetry/export"
	"mercator-hq/routemetrics/pkg/telemetry/exposition"
	"mercator-hq/routemetrics/pkg/telemetry/logging"
	"mercator-hq/routemetrics/pkg/telemetry/metrics"
)

func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		Writer:    w,
	})
}

func collectorConfig(cfg config.CollectorConfig, logger *slog.Logger) metrics.Config {
	return metrics.Config{
		Enabled:         cfg.Enabled,
		WindowSeconds:   cfg.WindowSeconds,
		HistoryCapacity: cfg.HistoryCapacity,
		MaxErrorTypes:   cfg.MaxErrorTypes,
		Logger:          logger,
	}
}

func formatterOptions(cfg config.FormatConfig) exposition.Options {
	return exposition.Options{
		IncludeHelp:      cfg.IncludeHelp,
		IncludeType:      cfg.IncludeType,
		IncludeTimestamp: cfg.IncludeTimestamp,
		MetricPrefix:     cfg.MetricPrefix,
	}
}

func exporterConfig(cfg config.ExporterConfig) export.Config {
	return export.Config{
		Enabled:         cfg.Enabled,
		Hostname:        cfg.Hostname,
		Port:            cfg.Port,
		MetricsPath:     cfg.MetricsPath,
		EnableCORS:      cfg.EnableCORS,
		Name:            "routemetrics",
		Version:         Version,
		ScrapeInterval:  cfg.ScrapeInterval,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}

// renderer returns the /metrics renderer for the configured engine. The
// native engine returns nil, leaving the export server on its formatter.
func renderer(cfg config.FormatConfig, source exposition.SnapshotSource) (export.MetricsHandlerFunc, error) {
	if cfg.Engine != config.EngineRegistry {
		return nil, nil
	}

	registry, err := exposition.NewRegistry(source, cfg.MetricPrefix, cfg.IncludeRuntimeMetrics)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) (string, error) {
		return exposition.GatherText(registry)
	}, nil
}
