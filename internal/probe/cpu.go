package probe

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hostmond/hostmond/internal/state"
)

func (c *Collector) collectCPU(ctx context.Context) state.CPUStats {
	stats := state.CPUStats{}

	raw, err := os.ReadFile("/proc/stat")
	if err != nil {
		c.logger.Warn("cpu probe failed", "error", err)
	} else if total, idle, ok := parseCPUCounters(string(raw)); ok {
		// Usage is the busy share since the previous tick. The first
		// sample has no baseline and reports zero.
		if c.prevCPUTotal > 0 && total > c.prevCPUTotal {
			dTotal := total - c.prevCPUTotal
			dIdle := idle - c.prevCPUIdle
			stats.UsagePercent = round1(100 * float64(dTotal-dIdle) / float64(dTotal))
		}
		c.prevCPUTotal = total
		c.prevCPUIdle = idle
	}

	ctx, cancel := ctxWithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := runCommand(ctx, "sensors", "-A", "-u")
	if err == nil {
		if temp, ok := parseSensorsTemp(out); ok {
			stats.TemperatureC = round1(temp)
		}
	}

	return stats
}

// parseCPUCounters reads the aggregate cpu line. Idle time includes
// iowait.
func parseCPUCounters(stat string) (total, idle uint64, ok bool) {
	for _, line := range strings.Split(stat, "\n") {
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)[1:]
		if len(fields) < 5 {
			return 0, 0, false
		}
		for i, f := range fields {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return 0, 0, false
			}
			total += v
			if i == 3 || i == 4 {
				idle += v
			}
		}
		return total, idle, true
	}
	return 0, 0, false
}

func parseSensorsTemp(out string) (float64, bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "temp1_input:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		if v, err := strconv.ParseFloat(parts[1], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
