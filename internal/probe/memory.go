package probe

import (
	"os"
	"strconv"
	"strings"

	"github.com/hostmond/hostmond/internal/state"
)

func (c *Collector) collectMemory() state.MemoryStats {
	raw, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		c.logger.Warn("memory probe failed", "error", err)
		return state.MemoryStats{}
	}
	return parseMeminfo(string(raw))
}

// parseMeminfo derives used memory from MemTotal and MemAvailable,
// both reported in kilobytes.
func parseMeminfo(meminfo string) state.MemoryStats {
	var totalKB, availKB uint64
	for _, line := range strings.Split(meminfo, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB = v
		case "MemAvailable:":
			availKB = v
		}
	}

	if totalKB == 0 {
		return state.MemoryStats{}
	}

	usedKB := totalKB - availKB
	const kbPerGB = 1024 * 1024
	return state.MemoryStats{
		UsedGB:  round2(float64(usedKB) / kbPerGB),
		TotalGB: round2(float64(totalKB) / kbPerGB),
		Percent: round1(100 * float64(usedKB) / float64(totalKB)),
	}
}
