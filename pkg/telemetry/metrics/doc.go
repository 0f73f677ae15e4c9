// Package metrics collects routing-engine performance samples and turns them
// into point-in-time snapshots.
//
// # Overview
//
// The Collector is pull-based. The routing hot path calls the cheap,
// append-only record methods; percentiles, throughput, error and match rates
// and the memory leak heuristics are only computed when GetMetrics is called.
//
//	collector := metrics.NewCollector(metrics.DefaultConfig())
//
//	// hot path
//	collector.RecordLatency(42.5)
//	collector.RecordError("timeout")
//	collector.RecordMatchEvaluation(true)
//
//	// scrape path
//	snapshot := collector.GetMetrics()
//
// # Latency Window
//
// Latency samples and their timestamps are kept in parallel buffers and
// trimmed to a rolling window (default 60s) on every RecordLatency call.
// Trimming drops the timestamps that fell out of the window and the same
// number of oldest latencies.
//
// Percentiles use a sorted copy of the window and the index
// floor((p/100) * (n-1)).
//
// # Memory
//
// RecordMemoryUsage reads process memory through a MemorySampler (by default
// the Go runtime plus /proc RSS), tracks the all-time peak and appends the
// resident value to a fixed-capacity ring buffer. A SamplingScheduler can
// drive it on a cron schedule.
//
// The leak trend compares the mean of the newest 10% of the history with the
// 10% before it. A leak is only reported when the trend is increasing, at
// least 30 readings exist and current usage exceeds half of the peak.
//
// # Enable / Disable
//
// A disabled Collector drops every record call and returns a zero snapshot
// with the same shape, so callers never branch on the enabled state.
//
// # Cardinality
//
// Error types become Prometheus label values verbatim. Set
// Config.MaxErrorTypes to fold the long tail into the "other" type.
package metrics
