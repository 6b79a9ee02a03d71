package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

const (
	report_perf_cpu        = "perf.cpu-percent"
	report_perf_memory     = "perf.allocated-mb"
	report_perf_goroutines = "perf.goroutines"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

type PerfStats struct {
	CPUPercent  float64 `json:"cpuPercent"`
	AllocatedMB int64   `json:"allocatedMb"`
	LiveObjects int64   `json:"liveObjects"`
	Goroutines  int64   `json:"goroutines"`
}

// ReadPerfStats samples the process, cpu usage is measured since the
// previous call.
func ReadPerfStats() PerfStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := PerfStats{
		AllocatedMB: int64(memStats.Alloc / 1_000_000),
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
		Goroutines:  int64(runtime.NumGoroutine()),
	}
	cpuUsage, err := cpu.Percent(0, false)
	if err == nil && len(cpuUsage) > 0 {
		stats.CPUPercent = cpuUsage[0]
	}
	return stats
}

// InstrumentPerfStats samples the process every interval until ctx is done,
// recording gauges and reporting counts through tel.
func InstrumentPerfStats(ctx context.Context, tel API, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := ReadPerfStats()

				cpuGauge.Record(ctx, stats.CPUPercent)
				memoryGauge.Record(ctx, stats.AllocatedMB)
				liveObjectsGauge.Record(ctx, stats.LiveObjects)
				goroutineGauge.Record(ctx, stats.Goroutines)

				tel.ReportCount(report_perf_cpu, int64(stats.CPUPercent))
				tel.ReportCount(report_perf_memory, stats.AllocatedMB)
				tel.ReportCount(report_perf_goroutines, stats.Goroutines)
			case <-ctx.Done():
				return
			}
		}
	}()
}
