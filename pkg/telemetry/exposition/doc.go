// Package exposition renders routing metrics snapshots in the Prometheus text
// exposition format (text/plain; version=0.0.4).
//
// # Output
//
// Metric names follow {prefix}{category}_{field}[_unit]:
//
//	# HELP routing_latency_p95_milliseconds 95th percentile routing latency in milliseconds
//	# TYPE routing_latency_p95_milliseconds gauge
//	routing_latency_p95_milliseconds 1.5e+02
//	# HELP routing_errors_by_type_total Total number of routing errors by error type
//	# TYPE routing_errors_by_type_total counter
//	routing_errors_by_type_total{error_type="timeout"} 2e+00
//
// Values are written in exponent notation. Boolean and enum-coded gauges
// (memory_leak_detected, memory_leak_trend) are written as plain integers.
// NaN and infinities use the spellings NaN, +Inf and -Inf.
//
// Optional memory gauges (heap, external, array buffers) are omitted when the
// snapshot does not carry them; scrapers must not assume they are present.
//
// # Errors
//
// Format never panics. A nil or malformed snapshot, or any failure while
// rendering, is reported as a *FormatError whose message starts with
// "Failed to format Prometheus metrics: ".
//
// # client_golang
//
// RegistryCollector adapts a snapshot source to prometheus.Collector for
// hosts that already run a prometheus.Registry.
package exposition
