package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment variable override.
const EnvPrefix = "ROUTEMETRICS_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of DefaultConfig, then zero values are
// defaulted and the result is validated. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults without validating.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. An empty path starts from the defaults.
// Environment variables follow ROUTEMETRICS_SECTION_FIELD (e.g.
// ROUTEMETRICS_EXPORTER_PORT) and always take precedence over the file.
//
// The loading sequence is:
//  1. Load YAML from file (or defaults)
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = DefaultConfig()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies ROUTEMETRICS_* environment variables. Values
// that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Collector overrides
	envBool("COLLECTOR_ENABLED", &cfg.Collector.Enabled)
	envInt("COLLECTOR_WINDOW_SECONDS", &cfg.Collector.WindowSeconds)
	envInt("COLLECTOR_HISTORY_CAPACITY", &cfg.Collector.HistoryCapacity)
	envInt("COLLECTOR_MAX_ERROR_TYPES", &cfg.Collector.MaxErrorTypes)
	envString("COLLECTOR_MEMORY_SAMPLE_SCHEDULE", &cfg.Collector.MemorySampleSchedule)

	// Exporter overrides
	envBool("EXPORTER_ENABLED", &cfg.Exporter.Enabled)
	envString("EXPORTER_HOSTNAME", &cfg.Exporter.Hostname)
	envInt("EXPORTER_PORT", &cfg.Exporter.Port)
	envString("EXPORTER_METRICS_PATH", &cfg.Exporter.MetricsPath)
	envBool("EXPORTER_ENABLE_CORS", &cfg.Exporter.EnableCORS)
	envDuration("EXPORTER_SCRAPE_INTERVAL", &cfg.Exporter.ScrapeInterval)
	envDuration("EXPORTER_READ_TIMEOUT", &cfg.Exporter.ReadTimeout)
	envDuration("EXPORTER_WRITE_TIMEOUT", &cfg.Exporter.WriteTimeout)
	envDuration("EXPORTER_IDLE_TIMEOUT", &cfg.Exporter.IdleTimeout)
	envDuration("EXPORTER_SHUTDOWN_TIMEOUT", &cfg.Exporter.ShutdownTimeout)

	// Format overrides
	envBool("FORMAT_INCLUDE_HELP", &cfg.Format.IncludeHelp)
	envBool("FORMAT_INCLUDE_TYPE", &cfg.Format.IncludeType)
	envBool("FORMAT_INCLUDE_TIMESTAMP", &cfg.Format.IncludeTimestamp)
	envString("FORMAT_METRIC_PREFIX", &cfg.Format.MetricPrefix)
	envString("FORMAT_ENGINE", &cfg.Format.Engine)
	envBool("FORMAT_INCLUDE_RUNTIME_METRICS", &cfg.Format.IncludeRuntimeMetrics)

	// Logging overrides
	envString("LOGGING_LEVEL", &cfg.Logging.Level)
	envString("LOGGING_FORMAT", &cfg.Logging.Format)
	envBool("LOGGING_ADD_SOURCE", &cfg.Logging.AddSource)

	// Tracing overrides
	envBool("TRACING_ENABLED", &cfg.Tracing.Enabled)
	envString("TRACING_SAMPLER", &cfg.Tracing.Sampler)
	envFloat("TRACING_SAMPLE_RATIO", &cfg.Tracing.SampleRatio)
	envString("TRACING_ENDPOINT", &cfg.Tracing.Endpoint)
	envString("TRACING_SERVICE_NAME", &cfg.Tracing.ServiceName)
	envBool("TRACING_INSECURE", &cfg.Tracing.Insecure)

	envBool("WATCH", &cfg.Watch)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envFloat(name string, dst *float64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}
