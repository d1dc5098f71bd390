package profiler

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/drawcall"
)

// Report is the summary of one update interval.
type Report struct {
	FPS float64
	// DrawsPerFrame and InstancesPerFrame are averages over the interval.
	DrawsPerFrame     float64
	InstancesPerFrame float64
	HeapMB            float64
	AllocRateMB       float64
	GCCount           uint32
	LastPauseUs       uint64
	MaxPauseUs        uint64
	SysMB             float64
}

// String formats the report as a single log line.
func (r Report) String() string {
	return fmt.Sprintf("FPS: %.2f | Draws: %.1f | Instances: %.1f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		r.FPS, r.DrawsPerFrame, r.InstancesPerFrame, r.HeapMB, r.AllocRateMB, r.GCCount, r.LastPauseUs, r.MaxPauseUs, r.SysMB)
}

// Profiler tracks frame rate, batcher throughput and memory statistics.
// Logs a Report at a configurable interval.
type Profiler struct {
	frameCount     int
	draws          int
	instances      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - interval: how often a report is produced, 1 second when not positive
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// Tick should be called once per frame with the batcher counts of that frame.
// Logs a report when the update interval has elapsed.
//
// Parameters:
//   - stats: the batcher counts of the frame
//
// Returns:
//   - Report: the report, valid when ok is true
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick(stats drawcall.Stats) (Report, bool) {
	report, ok := p.tick(time.Now(), stats)
	if ok {
		logging.Info("[Profiler] %s", report)
	}
	return report, ok
}

func (p *Profiler) tick(now time.Time, stats drawcall.Stats) (Report, bool) {
	p.frameCount++
	p.draws += stats.Draws
	p.instances += stats.Instances

	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	frames := float64(p.frameCount)
	r := Report{
		FPS:               frames / elapsed.Seconds(),
		DrawsPerFrame:     float64(p.draws) / frames,
		InstancesPerFrame: float64(p.instances) / frames,
	}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if r.GCCount-startIdx > 256 {
			startIdx = r.GCCount - 256
		}
		for i := startIdx; i < r.GCCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.frameCount = 0
	p.draws = 0
	p.instances = 0
	p.lastTime = now
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r, true
}
