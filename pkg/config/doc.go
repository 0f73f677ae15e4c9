// Package config provides configuration management for routemetrics.
//
// Configuration is read from a YAML file, overridden by environment
// variables, and validated before use.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("routemetrics.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("routemetrics.yaml")
//
// LoadConfigWithEnvOverrides("") starts from DefaultConfig.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ROUTEMETRICS_SECTION_FIELD:
//
//   - ROUTEMETRICS_EXPORTER_PORT overrides exporter.port
//   - ROUTEMETRICS_COLLECTOR_ENABLED overrides collector.enabled
//   - ROUTEMETRICS_LOGGING_LEVEL overrides logging.level
//
// # Configuration Precedence
//
//  1. Default values (DefaultConfig)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Validation errors carry dotted field paths:
//
//	configuration validation failed with 2 errors:
//	  - exporter.port: port 70000 out of range 0-65535
//	  - collector.memory_sample_schedule: invalid schedule "often": ...
//
// # Example Configuration
//
//	collector:
//	  enabled: true
//	  window_seconds: 60
//	  history_capacity: 100
//	  memory_sample_schedule: "@every 15s"
//
//	exporter:
//	  hostname: "127.0.0.1"
//	  port: 9090
//	  metrics_path: "/metrics"
//
//	format:
//	  include_help: true
//	  include_type: true
//	  metric_prefix: "routing_"
//	  engine: "native"
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Hot Reload
//
// A Watcher reloads the file when it changes and hands the new, validated
// configuration to a callback. Invalid edits are logged and ignored.
package config
