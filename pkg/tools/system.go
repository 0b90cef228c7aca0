package tools

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// cpuSampleInterval is how long the CPU counters are observed per sample.
const cpuSampleInterval = 700 * time.Millisecond

const gb = 1024 * 1024 * 1024

// SystemStats is an instantaneous CPU/memory snapshot. Partial is set when
// only one of the two subsystems could be sampled.
type SystemStats struct {
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryUsedGB      float64 `json:"memory_used_gb"`
	MemoryAvailableGB float64 `json:"memory_available_gb"`
	MemoryTotalGB     float64 `json:"memory_total_gb"`
	Partial           bool    `json:"partial,omitempty"`
}

// StatsSampler reads system utilization. Replaceable in tests.
type StatsSampler func(ctx context.Context) (SystemStats, error)

// SystemStatsTool reports instantaneous CPU and memory utilization.
// It never fails fatally: a sampling error yields a result marked
// unavailable rather than an error.
type SystemStatsTool struct {
	sample StatsSampler
}

func NewSystemStatsTool() *SystemStatsTool {
	return &SystemStatsTool{sample: sampleSystem}
}

// NewSystemStatsToolWithSampler creates the tool with a custom sampler.
func NewSystemStatsToolWithSampler(sample StatsSampler) *SystemStatsTool {
	return &SystemStatsTool{sample: sample}
}

func (t *SystemStatsTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        NameSystemStats,
		Description: "Get current system load: CPU and memory utilization. Use for questions about system performance.",
		Parameters:  []ToolParameter{},
	}
}

func (t *SystemStatsTool) GetName() string {
	return NameSystemStats
}

func (t *SystemStatsTool) GetDescription() string {
	return "Report current CPU and memory utilization"
}

func (t *SystemStatsTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	start := time.Now()

	stats, err := t.sample(ctx)
	if err != nil {
		slog.Warn("System stats sampling failed", "error", err)
		return ToolResult{
			Success:       false,
			Content:       "System metrics are currently unavailable.",
			Error:         err.Error(),
			ToolName:      NameSystemStats,
			ExecutionTime: time.Since(start),
		}, nil
	}

	result := ToolResult{
		Success:       true,
		Content:       formatStats(stats),
		Output:        stats,
		ToolName:      NameSystemStats,
		ExecutionTime: time.Since(start),
	}
	if stats.Partial {
		result.Metadata = map[string]interface{}{"partial": true}
	}
	return result, nil
}

func formatStats(stats SystemStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CPU: %.1f%%\n", stats.CPUPercent)
	fmt.Fprintf(&b, "Memory: %.1f%% (%.2f GB / %.2f GB)\n", stats.MemoryPercent, stats.MemoryUsedGB, stats.MemoryTotalGB)
	fmt.Fprintf(&b, "Available: %.2f GB", stats.MemoryAvailableGB)
	if stats.Partial {
		b.WriteString("\n(partial: some metrics unavailable)")
	}
	return b.String()
}

// sampleSystem is the default sampler. It degrades to a partial result if
// only one of CPU/memory can be read, and errors only when both fail.
func sampleSystem(ctx context.Context) (SystemStats, error) {
	var stats SystemStats
	var cpuErr, memErr error

	percents, cpuErr := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if cpuErr == nil && len(percents) > 0 {
		stats.CPUPercent = round1(percents[0])
	} else if cpuErr == nil {
		cpuErr = fmt.Errorf("no CPU samples returned")
	}

	vm, memErr := mem.VirtualMemoryWithContext(ctx)
	if memErr == nil {
		stats.MemoryPercent = round1(vm.UsedPercent)
		stats.MemoryUsedGB = round2(float64(vm.Used) / gb)
		stats.MemoryAvailableGB = round2(float64(vm.Available) / gb)
		stats.MemoryTotalGB = round2(float64(vm.Total) / gb)
	}

	if cpuErr != nil && memErr != nil {
		return SystemStats{}, fmt.Errorf("sampling failed: cpu: %v; memory: %v", cpuErr, memErr)
	}

	stats.Partial = cpuErr != nil || memErr != nil
	return stats, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
