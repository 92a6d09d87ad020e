package probe

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hostmond/hostmond/internal/state"
)

var scanProgressRegex = regexp.MustCompile(`([0-9.]+)%(?:.*?(\d+h\d+m|\d+m\d+s|\d+s))?`)

func (c *Collector) collectPools(ctx context.Context) map[string]state.PoolRecord {
	pools := make(map[string]state.PoolRecord)

	lctx, cancel := ctxWithTimeout(ctx, 5*time.Second)
	out, err := runCommand(lctx, "zpool", "list", "-H", "-o", "name,size,alloc,free,cap,health")
	cancel()
	if err != nil {
		c.logger.Warn("zpool list failed", "error", err)
		return pools
	}

	for name, rec := range parsePoolList(out) {
		sctx, cancel := ctxWithTimeout(ctx, 5*time.Second)
		status, err := runCommand(sctx, "zpool", "status", name)
		cancel()
		if err != nil {
			c.logger.Warn("zpool status failed", "pool", name, "error", err)
		} else {
			rec.Resilver = parseScanProgress(status, "resilver in progress")
			rec.Scrub = parseScanProgress(status, "scrub in progress")
		}
		pools[name] = rec
	}

	return pools
}

// parsePoolList reads the tab separated machine output of zpool list.
func parsePoolList(out string) map[string]state.PoolRecord {
	pools := make(map[string]state.PoolRecord)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 6 {
			continue
		}
		capacity, _ := strconv.Atoi(strings.TrimSuffix(parts[4], "%"))
		pools[parts[0]] = state.PoolRecord{
			Size:            parts[1],
			Alloc:           parts[2],
			Free:            parts[3],
			CapacityPercent: capacity,
			Health:          parts[5],
		}
	}
	return pools
}

// parseScanProgress extracts percent and remaining time from the scan
// section of zpool status when the given operation is running.
func parseScanProgress(status, marker string) *state.Progress {
	if !strings.Contains(strings.ToLower(status), marker) {
		return nil
	}
	for _, line := range strings.Split(status, "\n") {
		if !strings.Contains(strings.ToLower(line), "scanned") || !strings.Contains(line, "%") {
			continue
		}
		m := scanProgressRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		percent, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		remaining := m[2]
		if remaining == "" {
			remaining = "calculating"
		}
		return &state.Progress{Percent: percent, TimeRemaining: remaining}
	}
	return nil
}
