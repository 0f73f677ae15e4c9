package config

import "time"

// Config is the root configuration structure for routemetrics.
type Config struct {
	// Collector configures sample collection and memory sampling.
	Collector CollectorConfig `yaml:"collector"`

	// Exporter configures the HTTP server that serves /metrics.
	Exporter ExporterConfig `yaml:"exporter"`

	// Format configures Prometheus text rendering.
	Format FormatConfig `yaml:"format"`

	// Logging configures the process logger.
	Logging LoggingConfig `yaml:"logging"`

	// Tracing configures OpenTelemetry spans for routing decisions and
	// scrapes.
	Tracing TracingConfig `yaml:"tracing"`

	// Watch reloads the configuration file when it changes.
	// Default: false
	Watch bool `yaml:"watch"`
}

// CollectorConfig contains configuration for the metrics collector.
type CollectorConfig struct {
	// Enabled controls whether record calls have any effect.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// WindowSeconds is the rolling window for latency samples.
	// Default: 60
	WindowSeconds int `yaml:"window_seconds"`

	// HistoryCapacity is the number of memory readings kept for leak detection.
	// Leak detection needs at least 30.
	// Default: 100
	HistoryCapacity int `yaml:"history_capacity"`

	// MaxErrorTypes caps distinct error type labels; 0 means unbounded.
	// Default: 0
	MaxErrorTypes int `yaml:"max_error_types"`

	// MemorySampleSchedule is a cron expression or descriptor for memory
	// sampling (e.g. "@every 15s", "*/1 * * * *"). Empty disables sampling.
	// Default: "@every 15s"
	MemorySampleSchedule string `yaml:"memory_sample_schedule"`
}

// ExporterConfig contains configuration for the metrics export server.
type ExporterConfig struct {
	// Enabled controls whether the server binds on start.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Hostname is the interface to bind.
	// Default: "127.0.0.1"
	Hostname string `yaml:"hostname"`

	// Port is the TCP port to bind. 0 picks a free port.
	// Default: 9090
	Port int `yaml:"port"`

	// MetricsPath is the path serving the exposition text.
	// Default: "/metrics"
	MetricsPath string `yaml:"metrics_path"`

	// EnableCORS adds permissive CORS headers.
	// Default: false
	EnableCORS bool `yaml:"enable_cors"`

	// ScrapeInterval is advertised in the discovery document.
	// Default: 15s
	ScrapeInterval time.Duration `yaml:"scrape_interval"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 5s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is how long keep-alive connections stay open.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown before connections are closed.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Format engines.
const (
	EngineNative   = "native"
	EngineRegistry = "registry"
)

// FormatConfig contains Prometheus rendering options.
type FormatConfig struct {
	// IncludeHelp emits # HELP comments.
	// Default: true
	IncludeHelp bool `yaml:"include_help"`

	// IncludeType emits # TYPE comments.
	// Default: true
	IncludeType bool `yaml:"include_type"`

	// IncludeTimestamp appends epoch-millisecond timestamps to samples.
	// Default: false
	IncludeTimestamp bool `yaml:"include_timestamp"`

	// MetricPrefix is prepended to every metric name.
	// Default: "routing_"
	MetricPrefix string `yaml:"metric_prefix"`

	// Engine selects the renderer behind the metrics path.
	// Options: "native" (built-in formatter), "registry" (client_golang registry)
	// Default: "native"
	Engine string `yaml:"engine"`

	// IncludeRuntimeMetrics adds Go runtime and process metrics. Only
	// honoured by the registry engine.
	// Default: false
	IncludeRuntimeMetrics bool `yaml:"include_runtime_metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// Trace samplers.
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the span exporter.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service.name resource attribute.
	// Default: "routemetrics"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
