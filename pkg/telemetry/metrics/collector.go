package metrics

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Default collector settings.
const (
	DefaultWindowSeconds   = 60
	DefaultHistoryCapacity = 100

	// OtherErrorType is the label used for error types beyond MaxErrorTypes.
	OtherErrorType = "other"

	// UnknownErrorType is recorded when the caller passes an empty type.
	UnknownErrorType = "unknown"
)

const (
	minTrendPoints   = 10
	minLeakPoints    = 30
	trendThreshold   = 0.10
	leakPeakFraction = 0.5
)

// Config configures a Collector.
type Config struct {
	// Enabled controls whether record calls have any effect.
	Enabled bool

	// WindowSeconds is the rolling window for latency and throughput samples.
	// Default: 60
	WindowSeconds int

	// HistoryCapacity is the number of memory readings kept for leak detection.
	// Default: 100
	HistoryCapacity int

	// MaxErrorTypes caps the number of distinct error types tracked. Types
	// beyond the cap are counted under "other". 0 means unbounded.
	MaxErrorTypes int

	// Sampler measures process memory. Defaults to RuntimeSampler.
	Sampler MemorySampler

	// Now returns the current time and must not step backwards. Defaults to
	// time.Now.
	Now func() time.Time

	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns an enabled collector configuration with default
// window and history sizes.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		WindowSeconds:   DefaultWindowSeconds,
		HistoryCapacity: DefaultHistoryCapacity,
	}
}

// Collector accumulates routing-engine samples and computes snapshots on
// demand. Recording is cheap and append-only; statistics are only computed
// in GetMetrics.
//
// A Collector is an explicit handle: independent instances share no state.
// It is safe for concurrent use; the routing hot path records while the
// export server reads snapshots from its own goroutines.
type Collector struct {
	enabled atomic.Bool

	windowSeconds   int
	historyCapacity int
	maxErrorTypes   int
	sampler         MemorySampler
	now             func() time.Time
	logger          *slog.Logger

	mu sync.Mutex

	// latencies and requestTimes are parallel buffers trimmed together.
	latencies    []float64
	requestTimes []time.Time
	successCount int64

	totalErrors  int64
	errorsByType map[string]int64

	totalEvaluations  int64
	successfulMatches int64

	lastReading *MemoryReading
	peakMemory  float64
	history     *memoryHistory
}

// NewCollector creates a Collector. Zero values in cfg are replaced by
// defaults; Enabled is taken as given.
//
// Example:
//
//	collector := metrics.NewCollector(metrics.DefaultConfig())
//	collector.RecordLatency(12.5)
//	snapshot := collector.GetMetrics()
func NewCollector(cfg Config) *Collector {
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.Sampler == nil {
		cfg.Sampler = RuntimeSampler{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Collector{
		windowSeconds:   cfg.WindowSeconds,
		historyCapacity: cfg.HistoryCapacity,
		maxErrorTypes:   cfg.MaxErrorTypes,
		sampler:         cfg.Sampler,
		now:             cfg.Now,
		logger:          cfg.Logger.With("component", "metrics.collector"),
		errorsByType:    make(map[string]int64),
		history:         newMemoryHistory(cfg.HistoryCapacity),
	}
	c.enabled.Store(cfg.Enabled)

	return c
}

// RecordLatency records the latency of one successfully routed request in
// milliseconds. Negative or NaN values are ignored.
func (c *Collector) RecordLatency(ms float64) {
	if !c.enabled.Load() || ms < 0 || math.IsNaN(ms) {
		return
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.latencies = append(c.latencies, ms)
	c.requestTimes = append(c.requestTimes, now)
	c.successCount++
	c.trimWindow(now)
}

// trimWindow drops request timestamps at or before the window cutoff and the
// same number of oldest latencies. The scan stops at the first timestamp
// inside the window, so the buffer relies on a monotonic clock: c.now must
// never step backwards. Trimming by count then keeps both buffers aligned.
func (c *Collector) trimWindow(now time.Time) {
	cutoff := now.Add(-time.Duration(c.windowSeconds) * time.Second)

	drop := 0
	for drop < len(c.requestTimes) && !c.requestTimes[drop].After(cutoff) {
		drop++
	}
	if drop == 0 {
		return
	}
	if drop > len(c.latencies) {
		drop = len(c.latencies)
	}

	c.requestTimes = append(c.requestTimes[:0], c.requestTimes[drop:]...)
	c.latencies = append(c.latencies[:0], c.latencies[drop:]...)
}

// RecordError counts one error of the given type. Invalid UTF-8 in the type
// is replaced so it stays usable as a label value.
func (c *Collector) RecordError(errorType string) {
	if !c.enabled.Load() {
		return
	}
	if errorType == "" {
		errorType = UnknownErrorType
	}
	errorType = strings.ToValidUTF8(errorType, "\uFFFD")

	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalErrors++

	if _, seen := c.errorsByType[errorType]; !seen && c.maxErrorTypes > 0 && len(c.errorsByType) >= c.maxErrorTypes {
		errorType = OtherErrorType
	}
	c.errorsByType[errorType]++
}

// RecordMatchEvaluation counts one route evaluation and whether it matched.
func (c *Collector) RecordMatchEvaluation(matched bool) {
	if !c.enabled.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalEvaluations++
	if matched {
		c.successfulMatches++
	}
}

// RecordMemoryUsage samples process memory, updates the all-time peak and
// appends the resident value to the bounded history. Sampling failures are
// dropped silently.
func (c *Collector) RecordMemoryUsage() {
	if !c.enabled.Load() {
		return
	}

	reading, err := c.sampler.Sample()
	if err != nil {
		c.logger.Debug("memory sample failed", "error", err)
		return
	}
	if reading.Resident < 0 || math.IsNaN(reading.Resident) {
		return
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastReading = &reading
	if reading.Resident > c.peakMemory {
		c.peakMemory = reading.Resident
	}
	c.history.push(memoryPoint{timestamp: now, value: reading.Resident})
}

// GetMetrics computes a snapshot of everything recorded so far. When the
// collector is disabled it returns a zero snapshot of the same shape.
func (c *Collector) GetMetrics() Snapshot {
	now := c.now()

	if !c.enabled.Load() {
		return c.emptySnapshot(now)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Timestamp:               now,
		Latency:                 c.latencyStats(),
		Throughput:              c.throughputStats(now),
		Errors:                  c.errorStats(),
		Memory:                  c.memoryStats(),
		MatchRates:              c.matchStats(),
		CollectionWindowSeconds: c.windowSeconds,
	}
}

func (c *Collector) emptySnapshot(now time.Time) Snapshot {
	return Snapshot{
		Timestamp:               now,
		Errors:                  ErrorStats{ByType: map[string]int64{}},
		Memory:                  MemoryStats{LeakTrend: TrendStable},
		CollectionWindowSeconds: c.windowSeconds,
	}
}

func (c *Collector) latencyStats() LatencyStats {
	n := len(c.latencies)
	if n == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, c.latencies)
	sort.Float64s(sorted)

	return LatencyStats{
		Min:          sorted[0],
		Max:          sorted[n-1],
		Avg:          mean(sorted),
		P50:          percentile(sorted, 50),
		P95:          percentile(sorted, 95),
		P99:          percentile(sorted, 99),
		TotalSamples: int64(n),
	}
}

// percentile returns the value at floor((p/100)*(n-1)) of an ascending slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor((p / 100) * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func (c *Collector) throughputStats(now time.Time) ThroughputStats {
	return ThroughputStats{
		PerSecond:     float64(c.countSince(now.Add(-time.Second))),
		PerMinute:     float64(c.countSince(now.Add(-time.Minute))),
		PerHour:       float64(c.countSince(now.Add(-time.Hour))),
		TotalRequests: c.successCount,
	}
}

func (c *Collector) countSince(since time.Time) int {
	count := 0
	for _, t := range c.requestTimes {
		if t.After(since) {
			count++
		}
	}
	return count
}

func (c *Collector) errorStats() ErrorStats {
	byType := make(map[string]int64, len(c.errorsByType))
	for k, v := range c.errorsByType {
		byType[k] = v
	}

	var rate float64
	if attempts := c.successCount + c.totalErrors; attempts > 0 {
		rate = float64(c.totalErrors) / float64(attempts)
	}

	return ErrorStats{
		TotalErrors: c.totalErrors,
		Rate:        rate,
		ByType:      byType,
	}
}

func (c *Collector) memoryStats() MemoryStats {
	stats := MemoryStats{
		Peak:      c.peakMemory,
		LeakTrend: TrendStable,
	}
	if c.lastReading != nil {
		stats.Current = c.lastReading.Resident
		stats.Heap = c.lastReading.Heap
		stats.External = c.lastReading.External
		stats.ArrayBuffers = c.lastReading.ArrayBuffers
	}

	if c.history.len() < minTrendPoints {
		return stats
	}

	stats.LeakTrend = leakTrend(c.history.values())
	stats.LeakDetected = stats.LeakTrend == TrendIncreasing &&
		c.history.len() >= minLeakPoints &&
		stats.Current > c.peakMemory*leakPeakFraction

	return stats
}

func (c *Collector) matchStats() MatchStats {
	stats := MatchStats{
		TotalEvaluations:  c.totalEvaluations,
		SuccessfulMatches: c.successfulMatches,
		Unmatched:         c.totalEvaluations - c.successfulMatches,
	}
	if c.totalEvaluations > 0 {
		stats.Rate = float64(c.successfulMatches) / float64(c.totalEvaluations)
	}
	return stats
}

// Reset clears every accumulator. Configuration and the enabled state are
// left unchanged.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latencies = nil
	c.requestTimes = nil
	c.successCount = 0
	c.totalErrors = 0
	c.errorsByType = make(map[string]int64)
	c.totalEvaluations = 0
	c.successfulMatches = 0
	c.lastReading = nil
	c.peakMemory = 0
	c.history.reset()
}

// Enable turns recording on.
func (c *Collector) Enable() {
	c.enabled.Store(true)
}

// Disable turns recording off. Samples recorded while disabled are dropped,
// not buffered.
func (c *Collector) Disable() {
	c.enabled.Store(false)
}

// IsEnabled reports whether recording is on.
func (c *Collector) IsEnabled() bool {
	return c.enabled.Load()
}

// WindowSeconds returns the configured collection window.
func (c *Collector) WindowSeconds() int {
	return c.windowSeconds
}

// HistoryCapacity returns the configured memory history size.
func (c *Collector) HistoryCapacity() int {
	return c.historyCapacity
}
