// Package telemetry groups the observability packages of routemetrics.
//
// # Components
//
//   - metrics: Collector for latency, throughput, errors, memory and route matching
//   - exposition: Prometheus text rendering of collector snapshots
//   - export: HTTP server for /metrics, /health and the discovery document
//   - health: Named health checks with cached results
//   - logging: slog construction and request-scoped loggers
//   - tracing: OpenTelemetry spans for routing decisions and scrapes
//
// # Usage
//
//	collector := metrics.NewCollector(metrics.DefaultConfig())
//	server := export.NewServer(export.DefaultConfig(), collector,
//		exposition.NewFormatter(exposition.DefaultOptions()), logger)
//	if err := server.Start(); err != nil {
//		return err
//	}
//	defer server.Stop()
package telemetry
