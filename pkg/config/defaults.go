package config

import "time"

// Default values for configuration fields.
const (
	// Collector defaults
	DefaultCollectorEnabled     = true
	DefaultWindowSeconds        = 60
	DefaultHistoryCapacity      = 100
	DefaultMaxErrorTypes        = 0
	DefaultMemorySampleSchedule = "@every 15s"

	// Exporter defaults
	DefaultExporterEnabled = true
	DefaultHostname        = "127.0.0.1"
	DefaultPort            = 9090
	DefaultMetricsPath     = "/metrics"
	DefaultEnableCORS      = false
	DefaultScrapeInterval  = 15 * time.Second
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 5 * time.Second

	// Format defaults
	DefaultIncludeHelp      = true
	DefaultIncludeType      = true
	DefaultIncludeTimestamp = false
	DefaultMetricPrefix     = "routing_"
	DefaultFormatEngine     = EngineNative

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	// Tracing defaults
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = SamplerRatio
	DefaultTracingSampleRatio = 1.0
	DefaultTracingExporter    = "otlp"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingService     = "routemetrics"
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultConfig returns a configuration with every field at its default.
// LoadConfig decodes the file on top of it, so booleans left out of the
// file keep their defaults.
func DefaultConfig() *Config {
	return &Config{
		Collector: CollectorConfig{
			Enabled:              DefaultCollectorEnabled,
			WindowSeconds:        DefaultWindowSeconds,
			HistoryCapacity:      DefaultHistoryCapacity,
			MaxErrorTypes:        DefaultMaxErrorTypes,
			MemorySampleSchedule: DefaultMemorySampleSchedule,
		},
		Exporter: ExporterConfig{
			Enabled:         DefaultExporterEnabled,
			Hostname:        DefaultHostname,
			Port:            DefaultPort,
			MetricsPath:     DefaultMetricsPath,
			EnableCORS:      DefaultEnableCORS,
			ScrapeInterval:  DefaultScrapeInterval,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Format: FormatConfig{
			IncludeHelp:      DefaultIncludeHelp,
			IncludeType:      DefaultIncludeType,
			IncludeTimestamp: DefaultIncludeTimestamp,
			MetricPrefix:     DefaultMetricPrefix,
			Engine:           DefaultFormatEngine,
		},
		Logging: LoggingConfig{
			Level:  DefaultLoggingLevel,
			Format: DefaultLoggingFormat,
		},
		Tracing: TracingConfig{
			Enabled:     DefaultTracingEnabled,
			Sampler:     DefaultTracingSampler,
			SampleRatio: DefaultTracingSampleRatio,
			Exporter:    DefaultTracingExporter,
			Endpoint:    DefaultTracingEndpoint,
			ServiceName: DefaultTracingService,
			Insecure:    DefaultTracingInsecure,
			Timeout:     DefaultTracingTimeout,
		},
	}
}

// ApplyDefaults sets defaults for any fields that have zero values.
// Booleans are not touched; their defaults come from DefaultConfig.
// Port 0 is meaningful and kept. This function is idempotent.
func ApplyDefaults(cfg *Config) {
	// Collector defaults
	if cfg.Collector.WindowSeconds == 0 {
		cfg.Collector.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.Collector.HistoryCapacity == 0 {
		cfg.Collector.HistoryCapacity = DefaultHistoryCapacity
	}

	// Exporter defaults
	if cfg.Exporter.Hostname == "" {
		cfg.Exporter.Hostname = DefaultHostname
	}
	if cfg.Exporter.MetricsPath == "" {
		cfg.Exporter.MetricsPath = DefaultMetricsPath
	}
	if cfg.Exporter.ScrapeInterval == 0 {
		cfg.Exporter.ScrapeInterval = DefaultScrapeInterval
	}
	if cfg.Exporter.ReadTimeout == 0 {
		cfg.Exporter.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Exporter.WriteTimeout == 0 {
		cfg.Exporter.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Exporter.IdleTimeout == 0 {
		cfg.Exporter.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Exporter.ShutdownTimeout == 0 {
		cfg.Exporter.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Format defaults
	if cfg.Format.MetricPrefix == "" {
		cfg.Format.MetricPrefix = DefaultMetricPrefix
	}
	if cfg.Format.Engine == "" {
		cfg.Format.Engine = DefaultFormatEngine
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	// Tracing defaults. SampleRatio 0 is a valid ratio and kept.
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}
