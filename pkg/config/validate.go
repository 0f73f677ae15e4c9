package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "exporter.port").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// metricPrefixPattern matches a valid Prometheus metric name prefix.
var metricPrefixPattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// Validate validates the entire configuration. All field errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateCollector(&cfg.Collector)...)
	errs = append(errs, validateExporter(&cfg.Exporter)...)
	errs = append(errs, validateFormat(&cfg.Format)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateCollector(cfg *CollectorConfig) []FieldError {
	var errs []FieldError

	if cfg.WindowSeconds <= 0 {
		errs = append(errs, FieldError{
			Field:   "collector.window_seconds",
			Message: "window must be positive",
		})
	}
	if cfg.HistoryCapacity <= 0 {
		errs = append(errs, FieldError{
			Field:   "collector.history_capacity",
			Message: "history capacity must be positive",
		})
	}
	if cfg.MaxErrorTypes < 0 {
		errs = append(errs, FieldError{
			Field:   "collector.max_error_types",
			Message: "max error types must be non-negative",
		})
	}
	if cfg.MemorySampleSchedule != "" {
		if _, err := cron.ParseStandard(cfg.MemorySampleSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "collector.memory_sample_schedule",
				Message: fmt.Sprintf("invalid schedule %q: %v", cfg.MemorySampleSchedule, err),
			})
		}
	}

	return errs
}

func validateExporter(cfg *ExporterConfig) []FieldError {
	var errs []FieldError

	if cfg.Hostname == "" {
		errs = append(errs, FieldError{
			Field:   "exporter.hostname",
			Message: "hostname is required",
		})
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "exporter.port",
			Message: fmt.Sprintf("port %d out of range 0-65535", cfg.Port),
		})
	}

	switch {
	case cfg.MetricsPath == "":
		errs = append(errs, FieldError{
			Field:   "exporter.metrics_path",
			Message: "metrics path is required",
		})
	case !strings.HasPrefix(cfg.MetricsPath, "/"):
		errs = append(errs, FieldError{
			Field:   "exporter.metrics_path",
			Message: fmt.Sprintf("metrics path %q must start with '/'", cfg.MetricsPath),
		})
	case cfg.MetricsPath == "/health" || cfg.MetricsPath == "/":
		errs = append(errs, FieldError{
			Field:   "exporter.metrics_path",
			Message: fmt.Sprintf("metrics path %q collides with a built-in route", cfg.MetricsPath),
		})
	}

	timeouts := []struct {
		field string
		value int64
	}{
		{"exporter.scrape_interval", int64(cfg.ScrapeInterval)},
		{"exporter.read_timeout", int64(cfg.ReadTimeout)},
		{"exporter.write_timeout", int64(cfg.WriteTimeout)},
		{"exporter.idle_timeout", int64(cfg.IdleTimeout)},
		{"exporter.shutdown_timeout", int64(cfg.ShutdownTimeout)},
	}
	for _, t := range timeouts {
		if t.value < 0 {
			errs = append(errs, FieldError{
				Field:   t.field,
				Message: "duration must not be negative",
			})
		}
	}

	return errs
}

func validateFormat(cfg *FormatConfig) []FieldError {
	var errs []FieldError

	if !metricPrefixPattern.MatchString(cfg.MetricPrefix) {
		errs = append(errs, FieldError{
			Field:   "format.metric_prefix",
			Message: fmt.Sprintf("invalid metric prefix %q: must match %s", cfg.MetricPrefix, metricPrefixPattern),
		})
	}

	switch cfg.Engine {
	case EngineNative, EngineRegistry:
	case "":
		errs = append(errs, FieldError{
			Field:   "format.engine",
			Message: "format engine is required",
		})
	default:
		errs = append(errs, FieldError{
			Field:   "format.engine",
			Message: fmt.Sprintf("invalid format engine %q: must be 'native' or 'registry'", cfg.Engine),
		})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Level == "" {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Format == "" {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Format),
		})
	}

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Sampler {
	case SamplerAlways, SamplerNever, SamplerRatio:
	case "":
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: "sampler is required",
		})
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.timeout",
			Message: "duration must not be negative",
		})
	}

	if !cfg.Enabled {
		return errs
	}

	if cfg.Exporter != "otlp" {
		errs = append(errs, FieldError{
			Field:   "tracing.exporter",
			Message: fmt.Sprintf("unsupported exporter %q: must be 'otlp'", cfg.Exporter),
		})
	}
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.ServiceName == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.service_name",
			Message: "service name is required when tracing is enabled",
		})
	}

	return errs
}
