// Package events defines the typed change events emitted by the
// detector, replacing the loose map-shaped payloads a generic event bus
// would carry with compile-time checked structs. Events are ephemeral:
// created during a tick, broadcast and alerted, never persisted.
package events

import (
	"encoding/json"
	"time"
)

// Wire type tags. These appear as the "type" field on the subscriber
// protocol and as keys in the alert enable map.
const (
	TypeDiskAdded       = "disk_added"
	TypeDiskRemoved     = "disk_removed"
	TypeDiskTempWarning = "disk_temperature_warning"
	TypePoolHealth      = "pool_health_change"
	TypeResilverStarted = "resilver_started"
	TypeResilverDone    = "resilver_completed"
	TypeHardware        = "hardware_event"
)

// Event is one detected state transition. Implementations are plain
// structs carrying the minimal fields needed to render an alert.
type Event interface {
	Type() string
}

type DiskAdded struct {
	Disk      string `json:"disk"`
	Model     string `json:"model"`
	SizeBytes int64  `json:"size_bytes"`
}

func (DiskAdded) Type() string { return TypeDiskAdded }

type DiskRemoved struct {
	Disk string `json:"disk"`
}

func (DiskRemoved) Type() string { return TypeDiskRemoved }

type DiskTemperatureWarning struct {
	Disk         string `json:"disk"`
	TemperatureC int    `json:"temperature"`
}

func (DiskTemperatureWarning) Type() string { return TypeDiskTempWarning }

type PoolHealthChanged struct {
	Pool      string `json:"pool"`
	OldHealth string `json:"old_health"`
	NewHealth string `json:"new_health"`
}

func (PoolHealthChanged) Type() string { return TypePoolHealth }

type RebuildStarted struct {
	Pool    string  `json:"pool"`
	Percent float64 `json:"progress"`
}

func (RebuildStarted) Type() string { return TypeResilverStarted }

type RebuildCompleted struct {
	Pool string `json:"pool"`
}

func (RebuildCompleted) Type() string { return TypeResilverDone }

// HardwareHotplug is pushed straight from the hot-plug source, bypassing
// the tick-based diff.
type HardwareHotplug struct {
	Action     string    `json:"action"` // "add" | "remove"
	Device     string    `json:"device"`
	DeviceType string    `json:"device_type"`
	Timestamp  time.Time `json:"timestamp"`
}

func (HardwareHotplug) Type() string { return TypeHardware }

// Wire encodes an event as a flat JSON object with its type tag
// injected, matching the subscriber protocol.
func Wire(e Event) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = e.Type()
	return json.Marshal(fields)
}
