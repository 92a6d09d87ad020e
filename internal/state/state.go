// Package state defines the typed point-in-time capture of monitored
// system facts. A SystemSnapshot is produced fresh on every sampling
// tick and never mutated after construction.
package state

// SMART health values as reported by the disk probe.
const (
	SmartPassed  = "PASSED"
	SmartFailed  = "FAILED"
	SmartUnknown = "UNKNOWN"
)

// Pool health values as reported by the pool probe.
const (
	PoolOnline   = "ONLINE"
	PoolDegraded = "DEGRADED"
	PoolFaulted  = "FAULTED"
	PoolUnknown  = "UNKNOWN"
)

type CPUStats struct {
	UsagePercent float64 `json:"usage"`
	TemperatureC float64 `json:"temp"`
}

type MemoryStats struct {
	UsedGB  float64 `json:"used"`
	TotalGB float64 `json:"total"`
	Percent float64 `json:"percent"`
}

// DiskRecord describes one physical block device. The identity key is
// the device name (map key in SystemSnapshot.Disks).
type DiskRecord struct {
	SizeBytes    int64  `json:"size_bytes"`
	Model        string `json:"model"`
	Serial       string `json:"serial"`
	SmartStatus  string `json:"smart_status"`
	TemperatureC *int   `json:"temperature"`
	Mountpoint   string `json:"mountpoint"`
}

// Progress tracks a running resilver or scrub.
type Progress struct {
	Percent       float64 `json:"progress"`
	TimeRemaining string  `json:"time_remaining"`
}

// PoolRecord describes one redundant-storage pool. The identity key is
// the pool name (map key in SystemSnapshot.Pools).
type PoolRecord struct {
	Size            string    `json:"size"`
	Alloc           string    `json:"alloc"`
	Free            string    `json:"free"`
	CapacityPercent int       `json:"capacity"`
	Health          string    `json:"health"`
	Resilver        *Progress `json:"resilver"`
	Scrub           *Progress `json:"scrub"`
}

type DockerStats struct {
	Containers int `json:"containers"`
	Running    int `json:"running"`
}

type InterfaceCounters struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// SystemSnapshot is a complete capture of monitored host state for one
// sampling tick.
type SystemSnapshot struct {
	CPU     CPUStats                     `json:"cpu"`
	Memory  MemoryStats                  `json:"memory"`
	Disks   map[string]DiskRecord        `json:"disks"`
	Pools   map[string]PoolRecord        `json:"zfs_pools"`
	Docker  DockerStats                  `json:"docker"`
	Network map[string]InterfaceCounters `json:"network"`
}

// NewSnapshot returns an empty snapshot with all maps initialized.
func NewSnapshot() *SystemSnapshot {
	return &SystemSnapshot{
		Disks:   make(map[string]DiskRecord),
		Pools:   make(map[string]PoolRecord),
		Network: make(map[string]InterfaceCounters),
	}
}
