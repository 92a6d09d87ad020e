// Package detector compares consecutive system snapshots and emits the
// change events that matter operationally: disks appearing or
// disappearing, temperature excursions, pool health transitions, and
// rebuild lifecycle edges.
package detector

import (
	"sort"

	"github.com/hostmond/hostmond/internal/events"
	"github.com/hostmond/hostmond/internal/state"
)

// Thresholds controls the disk temperature warning rule. The values are
// deliberately configurable rather than derived: the warning level and
// hysteresis delta are operational conventions, not measured limits.
type Thresholds struct {
	DiskTempWarnC  int
	DiskTempDeltaC int
}

func DefaultThresholds() Thresholds {
	return Thresholds{DiskTempWarnC: 50, DiskTempDeltaC: 5}
}

// Detector holds exactly one retained snapshot of disk and pool state
// between ticks. Detect diffs against the retained copy, then replaces
// it, so a missed intermediate state is never revisited. Detect is
// driven by the sequential tick loop and is not safe for concurrent use.
type Detector struct {
	thresholds Thresholds
	lastDisks  map[string]state.DiskRecord
	lastPools  map[string]state.PoolRecord
}

func New(t Thresholds) *Detector {
	if t.DiskTempWarnC == 0 {
		t = DefaultThresholds()
	}
	return &Detector{
		thresholds: t,
		lastDisks:  make(map[string]state.DiskRecord),
		lastPools:  make(map[string]state.PoolRecord),
	}
}

// Detect diffs the current snapshot against the retained one and
// returns the changes, replacing the retained state regardless of
// whether any were found. Calling Detect twice with unchanged input
// yields events only on the first call.
func (d *Detector) Detect(current *state.SystemSnapshot) []events.Event {
	var out []events.Event
	out = append(out, d.detectDisks(current.Disks)...)
	out = append(out, d.detectPools(current.Pools)...)

	d.lastDisks = current.Disks
	d.lastPools = current.Pools
	return out
}

func (d *Detector) detectDisks(current map[string]state.DiskRecord) []events.Event {
	var out []events.Event

	for _, name := range sortedKeys(current) {
		if _, ok := d.lastDisks[name]; !ok {
			rec := current[name]
			out = append(out, events.DiskAdded{
				Disk:      name,
				Model:     rec.Model,
				SizeBytes: rec.SizeBytes,
			})
		}
	}

	for _, name := range sortedKeys(d.lastDisks) {
		if _, ok := current[name]; !ok {
			out = append(out, events.DiskRemoved{Disk: name})
		}
	}

	for _, name := range sortedKeys(current) {
		rec := current[name]
		if rec.TemperatureC == nil || *rec.TemperatureC <= d.thresholds.DiskTempWarnC {
			continue
		}
		// Hysteresis: only re-alert when the reading climbed by more
		// than the delta since the last retained sample.
		prev, ok := d.lastDisks[name]
		if !ok || prev.TemperatureC == nil || *rec.TemperatureC > *prev.TemperatureC+d.thresholds.DiskTempDeltaC {
			out = append(out, events.DiskTemperatureWarning{
				Disk:         name,
				TemperatureC: *rec.TemperatureC,
			})
		}
	}

	return out
}

func (d *Detector) detectPools(current map[string]state.PoolRecord) []events.Event {
	var out []events.Event

	for _, name := range sortedKeys(current) {
		rec := current[name]
		prev, known := d.lastPools[name]

		if rec.Resilver != nil && (!known || prev.Resilver == nil) {
			out = append(out, events.RebuildStarted{Pool: name, Percent: rec.Resilver.Percent})
		}
		if rec.Resilver == nil && known && prev.Resilver != nil {
			out = append(out, events.RebuildCompleted{Pool: name})
		}

		// A pool with no recorded history is assumed healthy, so a pool
		// first seen in a degraded state still raises a change.
		prevHealth := state.PoolOnline
		reportedOld := state.PoolUnknown
		if known {
			prevHealth = prev.Health
			reportedOld = prev.Health
		}
		if rec.Health != prevHealth {
			out = append(out, events.PoolHealthChanged{
				Pool:      name,
				OldHealth: reportedOld,
				NewHealth: rec.Health,
			})
		}
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
