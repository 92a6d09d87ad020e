package probe

import (
	"os"
	"strconv"
	"strings"

	"github.com/hostmond/hostmond/internal/state"
)

func (c *Collector) collectNetwork() map[string]state.InterfaceCounters {
	raw, err := os.ReadFile("/proc/net/dev")
	if err != nil {
		c.logger.Warn("network probe failed", "error", err)
		return make(map[string]state.InterfaceCounters)
	}
	return parseNetDev(string(raw))
}

// parseNetDev reads per-interface byte and packet counters, skipping
// loopback.
func parseNetDev(netdev string) map[string]state.InterfaceCounters {
	interfaces := make(map[string]state.InterfaceCounters)

	for _, line := range strings.Split(netdev, "\n") {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || name == "lo" {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) < 10 {
			continue
		}

		rbytes, _ := strconv.ParseUint(fields[0], 10, 64)
		rpackets, _ := strconv.ParseUint(fields[1], 10, 64)
		tbytes, _ := strconv.ParseUint(fields[8], 10, 64)
		tpackets, _ := strconv.ParseUint(fields[9], 10, 64)

		interfaces[name] = state.InterfaceCounters{
			BytesSent:   tbytes,
			BytesRecv:   rbytes,
			PacketsSent: tpackets,
			PacketsRecv: rpackets,
		}
	}

	return interfaces
}
