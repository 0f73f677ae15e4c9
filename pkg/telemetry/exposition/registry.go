package exposition

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"

	"mercator-hq/routemetrics/pkg/telemetry/metrics"
)

// SnapshotSource produces snapshots on demand. *metrics.Collector satisfies it.
type SnapshotSource interface {
	GetMetrics() metrics.Snapshot
}

// RegistryCollector exposes snapshots through a prometheus.Registry, for
// hosts that already serve client_golang metrics and want the routing
// metrics on the same endpoint. It uses the same names and help text as the
// Formatter.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	registry.MustRegister(exposition.NewRegistryCollector(collector, ""))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type RegistryCollector struct {
	source SnapshotSource
	descs  map[string]*prometheus.Desc
}

var _ prometheus.Collector = (*RegistryCollector)(nil)

// NewRegistryCollector creates a collector reading from source. An empty
// prefix means DefaultMetricPrefix.
func NewRegistryCollector(source SnapshotSource, prefix string) *RegistryCollector {
	if prefix == "" {
		prefix = DefaultMetricPrefix
	}

	descs := make(map[string]*prometheus.Desc, len(catalogue))
	for suffix, def := range catalogue {
		var labels []string
		if suffix == ErrorsByType {
			labels = []string{ErrorTypeLabel}
		}
		descs[suffix] = prometheus.NewDesc(prefix+suffix, def.Help, labels, nil)
	}

	return &RegistryCollector{source: source, descs: descs}
}

// Describe implements prometheus.Collector.
func (rc *RegistryCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range rc.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector. Each scrape takes a fresh snapshot.
// Collect runs on the registry's gather goroutines, so a sample that cannot be
// built is dropped rather than allowed to panic.
func (rc *RegistryCollector) Collect(ch chan<- prometheus.Metric) {
	s := rc.source.GetMetrics()

	emit := func(suffix string, v float64, labels ...string) {
		valueType := prometheus.GaugeValue
		if catalogue[suffix].Type == Counter {
			valueType = prometheus.CounterValue
		}
		for i, l := range labels {
			labels[i] = strings.ToValidUTF8(l, "\uFFFD")
		}
		m, err := prometheus.NewConstMetric(rc.descs[suffix], valueType, v, labels...)
		if err != nil {
			return
		}
		ch <- m
	}
	optional := func(suffix string, v metrics.OptionalBytes) {
		if v.Valid {
			emit(suffix, v.Value)
		}
	}

	emit(LatencyMin, s.Latency.Min)
	emit(LatencyMax, s.Latency.Max)
	emit(LatencyAvg, s.Latency.Avg)
	emit(LatencyP50, s.Latency.P50)
	emit(LatencyP95, s.Latency.P95)
	emit(LatencyP99, s.Latency.P99)
	emit(LatencySamples, float64(s.Latency.TotalSamples))

	emit(ThroughputPerSecond, s.Throughput.PerSecond)
	emit(ThroughputPerMinute, s.Throughput.PerMinute)
	emit(ThroughputPerHour, s.Throughput.PerHour)
	emit(RequestsTotal, float64(s.Throughput.TotalRequests))

	emit(ErrorsTotal, float64(s.Errors.TotalErrors))
	emit(ErrorRate, s.Errors.Rate)
	for errorType, count := range s.Errors.ByType {
		emit(ErrorsByType, float64(count), errorType)
	}

	emit(MemoryUsage, s.Memory.Current)
	emit(MemoryPeak, s.Memory.Peak)
	optional(MemoryHeap, s.Memory.Heap)
	optional(MemoryExternal, s.Memory.External)
	optional(MemoryArrayBuffers, s.Memory.ArrayBuffers)
	emit(MemoryLeakDetected, float64(boolCode(s.Memory.LeakDetected)))
	emit(MemoryLeakTrend, float64(s.Memory.LeakTrend.Code()))

	emit(MatchEvaluations, float64(s.MatchRates.TotalEvaluations))
	emit(MatchSuccessful, float64(s.MatchRates.SuccessfulMatches))
	emit(MatchRate, s.MatchRates.Rate)
	emit(MatchUnmatched, float64(s.MatchRates.Unmatched))
}

// NewRegistry returns a registry holding a RegistryCollector for source.
// With includeRuntime the Go runtime and process collectors are registered
// as well.
func NewRegistry(source SnapshotSource, prefix string, includeRuntime bool) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(NewRegistryCollector(source, prefix)); err != nil {
		return nil, fmt.Errorf("failed to register routing collector: %w", err)
	}

	if includeRuntime {
		if err := registry.Register(collectors.NewGoCollector()); err != nil {
			return nil, fmt.Errorf("failed to register go collector: %w", err)
		}
		if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, fmt.Errorf("failed to register process collector: %w", err)
		}
	}

	return registry, nil
}

// GatherText gathers every family from g and renders them in the text
// exposition format.
func GatherText(g prometheus.Gatherer) (string, error) {
	families, err := g.Gather()
	if err != nil {
		return "", &FormatError{Err: err}
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return "", &FormatError{Err: err}
		}
	}

	return buf.String(), nil
}
