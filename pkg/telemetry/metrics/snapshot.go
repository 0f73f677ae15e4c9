package metrics

import (
	"encoding/json"
	"time"
)

// Trend describes the direction of memory usage over the recorded history.
type Trend string

const (
	// TrendStable means recent memory usage is within 10% of the prior block.
	TrendStable Trend = "stable"
	// TrendIncreasing means recent memory usage grew by more than 10%.
	TrendIncreasing Trend = "increasing"
	// TrendDecreasing means recent memory usage shrank by more than 10%.
	TrendDecreasing Trend = "decreasing"
)

// Code returns the numeric encoding used for export: 1 for increasing,
// -1 for decreasing and 0 otherwise.
func (t Trend) Code() int {
	switch t {
	case TrendIncreasing:
		return 1
	case TrendDecreasing:
		return -1
	default:
		return 0
	}
}

// OptionalBytes is a memory measurement that may be unavailable on the
// current platform. Zero is a valid measured value, so presence is tracked
// explicitly through Valid.
type OptionalBytes struct {
	Value float64
	Valid bool
}

// MarshalJSON renders absent values as null.
func (o OptionalBytes) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON accepts a number or null.
func (o *OptionalBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OptionalBytes{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Some returns a present OptionalBytes holding v.
func Some(v float64) OptionalBytes {
	return OptionalBytes{Value: v, Valid: true}
}

// Snapshot is an immutable point-in-time summary of routing performance.
// It is built on demand by Collector.GetMetrics and never updated afterwards.
type Snapshot struct {
	// Timestamp is when the snapshot was computed.
	Timestamp time.Time `json:"timestamp"`

	Latency    LatencyStats    `json:"latency"`
	Throughput ThroughputStats `json:"throughput"`
	Errors     ErrorStats      `json:"errors"`
	Memory     MemoryStats     `json:"memory"`
	MatchRates MatchStats      `json:"match_rates"`

	// CollectionWindowSeconds is the rolling window latency samples are kept for.
	CollectionWindowSeconds int `json:"collection_window_seconds"`
}

// LatencyStats summarizes the latency samples inside the window, in milliseconds.
type LatencyStats struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Avg          float64 `json:"avg"`
	P50          float64 `json:"p50"`
	P95          float64 `json:"p95"`
	P99          float64 `json:"p99"`
	TotalSamples int64   `json:"total_samples"`
}

// ThroughputStats counts requests completed over the last second, minute and
// hour. TotalRequests is the all-time count and is not bounded by the window.
type ThroughputStats struct {
	PerSecond     float64 `json:"per_second"`
	PerMinute     float64 `json:"per_minute"`
	PerHour       float64 `json:"per_hour"`
	TotalRequests int64   `json:"total_requests"`
}

// ErrorStats holds error totals broken down by caller-supplied type.
type ErrorStats struct {
	TotalErrors int64            `json:"total_errors"`
	Rate        float64          `json:"rate"`
	ByType      map[string]int64 `json:"by_type"`
}

// MemoryStats holds the latest memory reading and the leak heuristics.
type MemoryStats struct {
	Current      float64       `json:"current"`
	Peak         float64       `json:"peak"`
	Heap         OptionalBytes `json:"heap"`
	External     OptionalBytes `json:"external"`
	ArrayBuffers OptionalBytes `json:"array_buffers"`
	LeakDetected bool          `json:"leak_detected"`
	LeakTrend    Trend         `json:"leak_trend"`
}

// MatchStats tracks how many route evaluations found a match.
type MatchStats struct {
	TotalEvaluations  int64   `json:"total_evaluations"`
	SuccessfulMatches int64   `json:"successful_matches"`
	Rate              float64 `json:"rate"`
	Unmatched         int64   `json:"unmatched"`
}
