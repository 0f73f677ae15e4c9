package exposition

import "sort"

// MetricType is the Prometheus type reported in # TYPE lines.
type MetricType string

const (
	// Gauge is a value that can go up and down.
	Gauge MetricType = "gauge"
	// Counter is a cumulative value that only increases until reset.
	Counter MetricType = "counter"
)

// MetricDefinition describes one metric family in the catalogue.
type MetricDefinition struct {
	Type MetricType
	Help string
}

// Metric name suffixes. The full name is the formatter prefix followed by
// the suffix, e.g. "routing_" + "latency_p95_milliseconds".
const (
	LatencyMin     = "latency_min_milliseconds"
	LatencyMax     = "latency_max_milliseconds"
	LatencyAvg     = "latency_avg_milliseconds"
	LatencyP50     = "latency_p50_milliseconds"
	LatencyP95     = "latency_p95_milliseconds"
	LatencyP99     = "latency_p99_milliseconds"
	LatencySamples = "latency_samples_total"

	ThroughputPerSecond = "throughput_requests_per_second"
	ThroughputPerMinute = "throughput_requests_per_minute"
	ThroughputPerHour   = "throughput_requests_per_hour"
	RequestsTotal       = "requests_total"

	ErrorsTotal  = "errors_total"
	ErrorRate    = "error_rate"
	ErrorsByType = "errors_by_type_total"

	MemoryUsage        = "memory_usage_bytes"
	MemoryPeak         = "memory_peak_bytes"
	MemoryHeap         = "memory_heap_bytes"
	MemoryExternal     = "memory_external_bytes"
	MemoryArrayBuffers = "memory_array_buffers_bytes"
	MemoryLeakDetected = "memory_leak_detected"
	MemoryLeakTrend    = "memory_leak_trend"

	MatchEvaluations = "match_evaluations_total"
	MatchSuccessful  = "match_successful_total"
	MatchRate        = "match_rate"
	MatchUnmatched   = "match_unmatched_total"
)

// ErrorTypeLabel is the label name carried by the per-type error family.
const ErrorTypeLabel = "error_type"

// catalogue maps metric suffixes to their type and help text.
var catalogue = map[string]MetricDefinition{
	LatencyMin:     {Gauge, "Minimum routing latency in the collection window in milliseconds"},
	LatencyMax:     {Gauge, "Maximum routing latency in the collection window in milliseconds"},
	LatencyAvg:     {Gauge, "Average routing latency in the collection window in milliseconds"},
	LatencyP50:     {Gauge, "50th percentile routing latency in milliseconds"},
	LatencyP95:     {Gauge, "95th percentile routing latency in milliseconds"},
	LatencyP99:     {Gauge, "99th percentile routing latency in milliseconds"},
	LatencySamples: {Counter, "Number of latency samples in the collection window"},

	ThroughputPerSecond: {Gauge, "Requests completed in the last second"},
	ThroughputPerMinute: {Gauge, "Requests completed in the last minute"},
	ThroughputPerHour:   {Gauge, "Requests completed in the last hour"},
	RequestsTotal:       {Counter, "Total number of successfully routed requests"},

	ErrorsTotal:  {Counter, "Total number of routing errors"},
	ErrorRate:    {Gauge, "Fraction of routing attempts that failed"},
	ErrorsByType: {Counter, "Total number of routing errors by error type"},

	MemoryUsage:        {Gauge, "Current resident memory usage in bytes"},
	MemoryPeak:         {Gauge, "Peak resident memory usage in bytes"},
	MemoryHeap:         {Gauge, "Heap memory in use in bytes"},
	MemoryExternal:     {Gauge, "Runtime memory outside the heap in bytes"},
	MemoryArrayBuffers: {Gauge, "Stack memory in use in bytes"},
	MemoryLeakDetected: {Gauge, "Whether a memory leak is suspected (1) or not (0)"},
	MemoryLeakTrend:    {Gauge, "Memory usage trend: -1 decreasing, 0 stable, 1 increasing"},

	MatchEvaluations: {Counter, "Total number of route match evaluations"},
	MatchSuccessful:  {Counter, "Total number of route evaluations that matched"},
	MatchRate:        {Gauge, "Fraction of route evaluations that matched"},
	MatchUnmatched:   {Counter, "Total number of route evaluations that did not match"},
}

// Definition returns the catalogue entry for a metric suffix.
func Definition(suffix string) (MetricDefinition, bool) {
	def, ok := catalogue[suffix]
	return def, ok
}

// Suffixes returns every metric suffix in the catalogue, sorted.
func Suffixes() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
