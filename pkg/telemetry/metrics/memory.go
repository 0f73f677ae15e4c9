package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/procfs"
)

// MemoryReading is a single process memory measurement in bytes.
// Resident is always set; the remaining fields may be unavailable.
type MemoryReading struct {
	Resident     float64
	Heap         OptionalBytes
	External     OptionalBytes
	ArrayBuffers OptionalBytes
}

// MemorySampler measures current process memory.
type MemorySampler interface {
	Sample() (MemoryReading, error)
}

// MemorySamplerFunc adapts a function to the MemorySampler interface.
type MemorySamplerFunc func() (MemoryReading, error)

// Sample calls f.
func (f MemorySamplerFunc) Sample() (MemoryReading, error) {
	return f()
}

// RuntimeSampler reads memory from the Go runtime and, where /proc is
// mounted, the resident set size of the current process.
//
// Field mapping:
//   - Resident: RSS from /proc/self/stat, or MemStats.Sys when unavailable
//   - Heap: MemStats.HeapAlloc
//   - External: MemStats.Sys - MemStats.HeapSys (runtime memory outside the heap)
//   - ArrayBuffers: MemStats.StackInuse
type RuntimeSampler struct {
	// ProcMountPoint overrides the procfs mount point. Empty means /proc.
	ProcMountPoint string
}

// Sample implements MemorySampler.
func (s RuntimeSampler) Sample() (MemoryReading, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	reading := MemoryReading{
		Resident:     float64(ms.Sys),
		Heap:         Some(float64(ms.HeapAlloc)),
		ArrayBuffers: Some(float64(ms.StackInuse)),
	}
	if ms.Sys >= ms.HeapSys {
		reading.External = Some(float64(ms.Sys - ms.HeapSys))
	}

	if rss, ok := s.residentMemory(); ok {
		reading.Resident = rss
	}

	return reading, nil
}

func (s RuntimeSampler) residentMemory() (float64, bool) {
	mount := s.ProcMountPoint
	if mount == "" {
		mount = procfs.DefaultMountPoint
	}

	fs, err := procfs.NewFS(mount)
	if err != nil {
		return 0, false
	}
	proc, err := fs.Self()
	if err != nil {
		return 0, false
	}
	stat, err := proc.Stat()
	if err != nil {
		return 0, false
	}
	return float64(stat.ResidentMemory()), true
}

// memoryPoint is one entry in the memory history.
type memoryPoint struct {
	timestamp time.Time
	value     float64
}

// memoryHistory is a fixed-capacity ring buffer of memory readings.
// When full, the oldest reading is overwritten.
type memoryHistory struct {
	points []memoryPoint
	start  int
	size   int
}

func newMemoryHistory(capacity int) *memoryHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &memoryHistory{points: make([]memoryPoint, capacity)}
}

func (h *memoryHistory) push(p memoryPoint) {
	if h.size < len(h.points) {
		h.points[(h.start+h.size)%len(h.points)] = p
		h.size++
		return
	}
	h.points[h.start] = p
	h.start = (h.start + 1) % len(h.points)
}

// values returns the readings oldest first.
func (h *memoryHistory) values() []float64 {
	out := make([]float64, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.points[(h.start+i)%len(h.points)].value
	}
	return out
}

func (h *memoryHistory) len() int {
	return h.size
}

func (h *memoryHistory) reset() {
	h.start = 0
	h.size = 0
}

// leakTrend compares the mean of the most recent 10% of readings with the
// mean of the 10% immediately before it.
func leakTrend(values []float64) Trend {
	n := len(values)
	if n < minTrendPoints {
		return TrendStable
	}

	block := n / 10
	if block < 1 {
		block = 1
	}

	recent := mean(values[n-block:])
	previous := mean(values[n-2*block : n-block])

	if previous == 0 {
		if recent > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}

	change := (recent - previous) / previous
	switch {
	case change > trendThreshold:
		return TrendIncreasing
	case change < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
