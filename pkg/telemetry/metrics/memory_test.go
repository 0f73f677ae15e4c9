package metrics

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

// TestMemoryHistory_Eviction tests that the ring buffer keeps the newest
// readings in order.
func TestMemoryHistory_Eviction(t *testing.T) {
	h := newMemoryHistory(10)

	for i := 1; i <= 15; i++ {
		h.push(memoryPoint{timestamp: time.Unix(int64(i), 0), value: float64(i)})
	}

	if h.len() != 10 {
		t.Fatalf("expected 10 points, got %d", h.len())
	}

	want := []float64{6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if got := h.values(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	h.reset()
	if h.len() != 0 || len(h.values()) != 0 {
		t.Errorf("expected empty history after reset, got %v", h.values())
	}
}

// TestMemoryHistory_PartiallyFilled tests ordering before the buffer wraps.
func TestMemoryHistory_PartiallyFilled(t *testing.T) {
	h := newMemoryHistory(5)
	h.push(memoryPoint{value: 1})
	h.push(memoryPoint{value: 2})

	if got := h.values(); !reflect.DeepEqual(got, []float64{1, 2}) {
		t.Errorf("expected [1 2], got %v", got)
	}
}

// TestCollector_HistoryBounded tests that the collector never keeps more
// readings than its configured capacity.
func TestCollector_HistoryBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryCapacity = 20
	cfg.Sampler = sequenceSampler(100)
	c := NewCollector(cfg)

	for i := 0; i < 50; i++ {
		c.RecordMemoryUsage()
	}

	if c.history.len() != 20 {
		t.Errorf("expected 20 readings, got %d", c.history.len())
	}
}

// TestLeakTrend tests the block comparison directly.
func TestLeakTrend(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Trend
	}{
		{"empty", nil, TrendStable},
		{"nine points", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, TrendStable},
		{"all zero", make([]float64, 20), TrendStable},
		{"last point jumps", []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 10}, TrendIncreasing},
		{"last point drops", []float64{5, 5, 5, 5, 5, 5, 5, 5, 10, 5}, TrendDecreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := leakTrend(tt.values); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestTrend_Code tests the numeric trend encoding.
func TestTrend_Code(t *testing.T) {
	tests := []struct {
		trend Trend
		want  int
	}{
		{TrendIncreasing, 1},
		{TrendStable, 0},
		{TrendDecreasing, -1},
		{Trend("unknown"), 0},
	}

	for _, tt := range tests {
		if got := tt.trend.Code(); got != tt.want {
			t.Errorf("%q.Code() = %d, want %d", tt.trend, got, tt.want)
		}
	}
}

// TestOptionalBytes_JSON tests that absent values marshal as null.
func TestOptionalBytes_JSON(t *testing.T) {
	stats := MemoryStats{
		Current:   1024,
		Heap:      Some(0),
		LeakTrend: TrendStable,
	}

	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["heap"] != float64(0) {
		t.Errorf("expected heap 0, got %v", decoded["heap"])
	}
	if v, ok := decoded["external"]; !ok || v != nil {
		t.Errorf("expected external null, got %v (present=%v)", v, ok)
	}
	if decoded["leak_trend"] != "stable" {
		t.Errorf("expected leak_trend stable, got %v", decoded["leak_trend"])
	}

	var roundTrip MemoryStats
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("unmarshal into MemoryStats failed: %v", err)
	}
	if roundTrip.Heap != Some(0) {
		t.Errorf("expected heap present with 0, got %+v", roundTrip.Heap)
	}
	if roundTrip.External.Valid {
		t.Errorf("expected external absent, got %+v", roundTrip.External)
	}
}

// TestRuntimeSampler tests sampling from the Go runtime.
func TestRuntimeSampler(t *testing.T) {
	tests := []struct {
		name    string
		sampler RuntimeSampler
	}{
		{"default proc mount", RuntimeSampler{}},
		{"missing proc mount", RuntimeSampler{ProcMountPoint: "/nonexistent/proc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading, err := tt.sampler.Sample()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reading.Resident <= 0 {
				t.Errorf("expected positive resident memory, got %v", reading.Resident)
			}
			if !reading.Heap.Valid || reading.Heap.Value <= 0 {
				t.Errorf("expected heap reading, got %+v", reading.Heap)
			}
			if !reading.ArrayBuffers.Valid {
				t.Errorf("expected stack reading, got %+v", reading.ArrayBuffers)
			}
		})
	}
}
