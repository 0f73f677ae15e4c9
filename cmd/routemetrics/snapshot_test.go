package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/routemetrics/pkg/cli"
	"mercator-hq/routemetrics/pkg/config"
	"mercator-hq/routemetrics/pkg/telemetry/exposition"
	"mercator-hq/routemetrics/pkg/telemetry/metrics"
)

func recordedCollector() *metrics.Collector {
	collector := metrics.NewCollector(metrics.Config{
		Enabled: true,
		Logger:  testLogger(),
		Sampler: metrics.MemorySamplerFunc(func() (metrics.MemoryReading, error) {
			return metrics.MemoryReading{Resident: 4096, Heap: metrics.Some(1024)}, nil
		}),
	})
	collector.RecordLatency(100)
	collector.RecordLatency(200)
	collector.RecordError("timeout")
	collector.RecordMatchEvaluation(true)
	collector.RecordMemoryUsage()
	return collector
}

func TestWriteSnapshot_Prometheus(t *testing.T) {
	collector := recordedCollector()
	opts := config.DefaultConfig().Format

	buf := &bytes.Buffer{}
	if err := writeSnapshot(buf, collector, cli.FormatPrometheus, opts); err != nil {
		t.Fatalf("writeSnapshot failed: %v", err)
	}

	snapshot := collector.GetMetrics()
	want, err := exposition.NewFormatter(formatterOptions(opts)).Format(&snapshot)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if buf.String() != want {
		t.Errorf("expected formatter output\n%s\ngot\n%s", want, buf.String())
	}
}

func TestWriteSnapshot_RegistryEngine(t *testing.T) {
	opts := config.DefaultConfig().Format
	opts.Engine = config.EngineRegistry
	opts.MetricPrefix = "edge_"

	buf := &bytes.Buffer{}
	if err := writeSnapshot(buf, recordedCollector(), cli.FormatPrometheus, opts); err != nil {
		t.Fatalf("writeSnapshot failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "\nedge_requests_total 2\n") {
		t.Errorf("expected edge_requests_total 2, got:\n%s", out)
	}
	if !strings.Contains(out, `edge_errors_by_type_total{error_type="timeout"} 1`) {
		t.Errorf("expected timeout error line, got:\n%s", out)
	}
	if strings.Contains(out, "go_goroutines") {
		t.Error("runtime metrics should be off by default")
	}
}

func TestWriteSnapshot_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := writeSnapshot(buf, recordedCollector(), cli.FormatJSON, config.DefaultConfig().Format); err != nil {
		t.Fatalf("writeSnapshot failed: %v", err)
	}

	var decoded metrics.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Throughput.TotalRequests != 2 {
		t.Errorf("expected 2 requests, got %d", decoded.Throughput.TotalRequests)
	}
	if decoded.Errors.ByType["timeout"] != 1 {
		t.Errorf("expected 1 timeout, got %v", decoded.Errors.ByType)
	}
	if !strings.Contains(buf.String(), `"external": null`) {
		t.Errorf("expected absent memory field as null, got:\n%s", buf.String())
	}
}

func TestWriteSnapshot_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := writeSnapshot(buf, recordedCollector(), cli.FormatText, config.DefaultConfig().Format); err != nil {
		t.Fatalf("writeSnapshot failed: %v", err)
	}

	// Collapse alignment padding.
	out := strings.Join(strings.Fields(buf.String()), " ")
	for _, want := range []string{
		"Latency (ms, last 60s)",
		"p50: 100",
		"total_requests: 2",
		"by_type[timeout]: 1",
		"heap: 1024",
		"external: n/a",
		"leak_trend: stable",
		"Route matching evaluations: 1 matched: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, buf.String())
		}
	}
}

func TestSnapshotSections_ErrorTypesSorted(t *testing.T) {
	snapshot := metrics.Snapshot{
		Errors: metrics.ErrorStats{
			TotalErrors: 3,
			ByType:      map[string]int64{"validation_error": 1, "connection_error": 1, "timeout": 1},
		},
	}

	sections := snapshotSections(snapshot)

	var errorsSection cli.Section
	for _, s := range sections {
		if s.Title == "Errors" {
			errorsSection = s
		}
	}

	var names []string
	for _, f := range errorsSection.Fields[2:] {
		names = append(names, f.Name)
	}
	want := "by_type[connection_error],by_type[timeout],by_type[validation_error]"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
