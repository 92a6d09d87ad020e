// Package probe samples live host facts into a state.SystemSnapshot.
// Every sub-probe degrades independently: a missing tool or a timed out
// command leaves its section at zero values and never fails the tick.
package probe

import (
	"context"
	"log/slog"
	"math"

	"github.com/hostmond/hostmond/internal/state"
)

// Source produces one snapshot per call. The scheduler depends on this
// rather than on the concrete collector so tests can substitute fakes.
type Source interface {
	Acquire(ctx context.Context) *state.SystemSnapshot
}

// Collector shells out to the usual host tooling (lsblk, smartctl,
// zpool, sensors, docker) and reads procfs directly. It is driven from
// a single goroutine; the CPU probe keeps counters between calls to
// compute usage across ticks.
type Collector struct {
	logger *slog.Logger

	prevCPUTotal uint64
	prevCPUIdle  uint64
}

func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger.With("component", "probe")}
}

// Acquire samples every subsystem and assembles the snapshot.
func (c *Collector) Acquire(ctx context.Context) *state.SystemSnapshot {
	snap := state.NewSnapshot()
	snap.CPU = c.collectCPU(ctx)
	snap.Memory = c.collectMemory()
	snap.Disks = c.collectDisks(ctx)
	snap.Pools = c.collectPools(ctx)
	snap.Docker = c.collectDocker(ctx)
	snap.Network = c.collectNetwork()
	return snap
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
