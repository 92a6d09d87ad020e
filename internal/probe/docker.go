package probe

import (
	"context"
	"strings"
	"time"

	"github.com/hostmond/hostmond/internal/state"
)

func (c *Collector) collectDocker(ctx context.Context) state.DockerStats {
	ctx, cancel := ctxWithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := runCommand(ctx, "docker", "ps", "-a", "--format", "{{.State}}")
	if err != nil {
		c.logger.Warn("docker probe failed", "error", err)
		return state.DockerStats{}
	}
	return parseDockerStates(out)
}

func parseDockerStates(out string) state.DockerStats {
	stats := state.DockerStats{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		stats.Containers++
		if line == "running" {
			stats.Running++
		}
	}
	return stats
}
