package exposition

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mercator-hq/routemetrics/pkg/telemetry/metrics"
)

// DefaultMetricPrefix is prepended to every metric name unless overridden.
const DefaultMetricPrefix = "routing_"

// Options controls how snapshots are rendered.
type Options struct {
	// IncludeHelp emits "# HELP name description" before each family.
	IncludeHelp bool

	// IncludeType emits "# TYPE name gauge|counter" before each family.
	IncludeType bool

	// IncludeTimestamp appends the snapshot time in epoch milliseconds to
	// every sample line.
	IncludeTimestamp bool

	// MetricPrefix is prepended to every metric name.
	// Default: "routing_"
	MetricPrefix string
}

// DefaultOptions returns options with HELP and TYPE comments enabled and no
// inline timestamps.
func DefaultOptions() Options {
	return Options{
		IncludeHelp:  true,
		IncludeType:  true,
		MetricPrefix: DefaultMetricPrefix,
	}
}

// Formatter renders snapshots in the Prometheus text exposition format
// (version 0.0.4). It holds no mutable state and never modifies its input,
// so a single Formatter can be shared between goroutines.
type Formatter struct {
	opts Options
}

// NewFormatter creates a Formatter. An empty MetricPrefix is replaced by
// DefaultMetricPrefix.
func NewFormatter(opts Options) *Formatter {
	if opts.MetricPrefix == "" {
		opts.MetricPrefix = DefaultMetricPrefix
	}
	return &Formatter{opts: opts}
}

// Options returns the formatter's options.
func (f *Formatter) Options() Options {
	return f.opts
}

// MetricNames returns the full, prefixed name of every metric the formatter
// can emit, sorted.
func (f *Formatter) MetricNames() []string {
	suffixes := Suffixes()
	names := make([]string, len(suffixes))
	for i, s := range suffixes {
		names[i] = f.opts.MetricPrefix + s
	}
	return names
}

// MetricDefinition looks up a metric by its full, prefixed name.
func (f *Formatter) MetricDefinition(name string) (MetricDefinition, bool) {
	suffix, ok := strings.CutPrefix(name, f.opts.MetricPrefix)
	if !ok {
		return MetricDefinition{}, false
	}
	return Definition(suffix)
}

// sample is one rendered value line of a family.
type sample struct {
	labels string
	value  string
}

// Format renders a single snapshot. Any failure, including a nil or
// malformed snapshot, is returned as a *FormatError.
func (f *Formatter) Format(snapshot *metrics.Snapshot) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &FormatError{Err: fmt.Errorf("panic while rendering: %v", r)}
		}
	}()

	if err := validateSnapshot(snapshot); err != nil {
		return "", &FormatError{Err: err}
	}

	w := &writer{opts: f.opts}
	if f.opts.IncludeTimestamp {
		w.timestamp = " " + strconv.FormatInt(snapshot.Timestamp.UnixMilli(), 10)
	}

	lat := snapshot.Latency
	w.value(LatencyMin, lat.Min)
	w.value(LatencyMax, lat.Max)
	w.value(LatencyAvg, lat.Avg)
	w.value(LatencyP50, lat.P50)
	w.value(LatencyP95, lat.P95)
	w.value(LatencyP99, lat.P99)
	w.value(LatencySamples, float64(lat.TotalSamples))

	tp := snapshot.Throughput
	w.value(ThroughputPerSecond, tp.PerSecond)
	w.value(ThroughputPerMinute, tp.PerMinute)
	w.value(ThroughputPerHour, tp.PerHour)
	w.value(RequestsTotal, float64(tp.TotalRequests))

	errs := snapshot.Errors
	w.value(ErrorsTotal, float64(errs.TotalErrors))
	w.value(ErrorRate, errs.Rate)
	w.family(ErrorsByType, errorTypeSamples(errs.ByType))

	mem := snapshot.Memory
	w.value(MemoryUsage, mem.Current)
	w.value(MemoryPeak, mem.Peak)
	w.optional(MemoryHeap, mem.Heap)
	w.optional(MemoryExternal, mem.External)
	w.optional(MemoryArrayBuffers, mem.ArrayBuffers)
	w.integer(MemoryLeakDetected, boolCode(mem.LeakDetected))
	w.integer(MemoryLeakTrend, mem.LeakTrend.Code())

	mr := snapshot.MatchRates
	w.value(MatchEvaluations, float64(mr.TotalEvaluations))
	w.value(MatchSuccessful, float64(mr.SuccessfulMatches))
	w.value(MatchRate, mr.Rate)
	w.value(MatchUnmatched, float64(mr.Unmatched))

	return w.sb.String(), nil
}

// FormatMany renders each snapshot and joins the blocks with a blank line.
// An empty slice yields an empty string.
func (f *Formatter) FormatMany(snapshots []*metrics.Snapshot) (string, error) {
	if len(snapshots) == 0 {
		return "", nil
	}

	blocks := make([]string, 0, len(snapshots))
	for _, s := range snapshots {
		block, err := f.Format(s)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n"), nil
}

// writer accumulates output for one snapshot.
type writer struct {
	opts      Options
	timestamp string
	sb        strings.Builder
}

func (w *writer) value(suffix string, v float64) {
	w.family(suffix, []sample{{value: FormatValue(v)}})
}

func (w *writer) integer(suffix string, v int) {
	w.family(suffix, []sample{{value: strconv.Itoa(v)}})
}

func (w *writer) optional(suffix string, v metrics.OptionalBytes) {
	if !v.Valid {
		return
	}
	w.value(suffix, v.Value)
}

func (w *writer) family(suffix string, samples []sample) {
	if len(samples) == 0 {
		return
	}

	def := catalogue[suffix]
	name := w.opts.MetricPrefix + suffix

	if w.opts.IncludeHelp {
		fmt.Fprintf(&w.sb, "# HELP %s %s\n", name, def.Help)
	}
	if w.opts.IncludeType {
		fmt.Fprintf(&w.sb, "# TYPE %s %s\n", name, def.Type)
	}
	for _, s := range samples {
		w.sb.WriteString(name)
		w.sb.WriteString(s.labels)
		w.sb.WriteByte(' ')
		w.sb.WriteString(s.value)
		w.sb.WriteString(w.timestamp)
		w.sb.WriteByte('\n')
	}
}

func errorTypeSamples(byType map[string]int64) []sample {
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	samples := make([]sample, len(types))
	for i, t := range types {
		samples[i] = sample{
			labels: fmt.Sprintf(`{%s="%s"}`, ErrorTypeLabel, EscapeLabelValue(t)),
			value:  FormatValue(float64(byType[t])),
		}
	}
	return samples
}

func boolCode(b bool) int {
	if b {
		return 1
	}
	return 0
}

func validateSnapshot(s *metrics.Snapshot) error {
	if s == nil {
		return ErrNilSnapshot
	}
	if s.Timestamp.IsZero() {
		return invalidSnapshot("timestamp is not set")
	}

	counts := map[string]int64{
		"latency.total_samples":         s.Latency.TotalSamples,
		"throughput.total_requests":     s.Throughput.TotalRequests,
		"errors.total_errors":           s.Errors.TotalErrors,
		"match_rates.total_evaluations": s.MatchRates.TotalEvaluations,
		"match_rates.successful":        s.MatchRates.SuccessfulMatches,
		"match_rates.unmatched":         s.MatchRates.Unmatched,
	}
	for field, v := range counts {
		if v < 0 {
			return invalidSnapshot("%s is negative (%d)", field, v)
		}
	}
	for t, v := range s.Errors.ByType {
		if v < 0 {
			return invalidSnapshot("errors.by_type[%q] is negative (%d)", t, v)
		}
	}
	return nil
}
