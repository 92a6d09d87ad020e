package alerting

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/hostmond/hostmond/internal/events"
)

// Alert-config keys. These differ from the wire event types for
// historical reasons: operators enable "pool_degraded", the wire speaks
// "pool_health_change".
const (
	KeyDiskAdded        = "disk_added"
	KeyDiskRemoved      = "disk_removed"
	KeyDiskTempWarning  = "disk_temp_warning"
	KeyDiskSmartFailure = "disk_smart_failure"
	KeyPoolDegraded     = "pool_degraded"
	KeyResilverStarted  = "resilver_started"
	KeyResilverDone     = "resilver_completed"
)

// Render maps a change event to its alert message. The second return is
// false for event types that broadcast but never alert (hot-plug
// notifications, which duplicate the disk added/removed alerts).
func Render(e events.Event) (Message, bool) {
	switch ev := e.(type) {
	case events.DiskAdded:
		return Message{
			EventType: KeyDiskAdded,
			Title:     fmt.Sprintf("New Disk Detected: %s", ev.Disk),
			Body: fmt.Sprintf("A new disk has been connected:\n\nDevice: %s\nModel: %s\nSize: %s",
				ev.Disk, ev.Model, humanize.IBytes(uint64(ev.SizeBytes))),
			Priority: PriorityNormal,
		}, true

	case events.DiskRemoved:
		return Message{
			EventType: KeyDiskRemoved,
			Title:     fmt.Sprintf("Disk Removed: %s", ev.Disk),
			Body:      fmt.Sprintf("Disk %s has been disconnected from the system.", ev.Disk),
			Priority:  PriorityWarning,
		}, true

	case events.DiskTemperatureWarning:
		return Message{
			EventType: KeyDiskTempWarning,
			Title:     fmt.Sprintf("High Disk Temperature: %s", ev.Disk),
			Body: fmt.Sprintf("Disk %s temperature is %d°C\n\nRecommended action: check cooling system.",
				ev.Disk, ev.TemperatureC),
			Priority: PriorityWarning,
		}, true

	case events.PoolHealthChanged:
		return Message{
			EventType: KeyPoolDegraded,
			Title:     fmt.Sprintf("Pool Health Changed: %s", ev.Pool),
			Body: fmt.Sprintf("Pool %s is in %s state (was %s).\n\nCheck pool status and replace failed disks.",
				ev.Pool, ev.NewHealth, ev.OldHealth),
			Priority: PriorityCritical,
		}, true

	case events.RebuildStarted:
		return Message{
			EventType: KeyResilverStarted,
			Title:     fmt.Sprintf("Resilver Started: %s", ev.Pool),
			Body: fmt.Sprintf("A resilver operation has started on pool %s.\n\nThis may take several hours depending on pool size.",
				ev.Pool),
			Priority: PriorityNormal,
		}, true

	case events.RebuildCompleted:
		return Message{
			EventType: KeyResilverDone,
			Title:     fmt.Sprintf("Resilver Completed: %s", ev.Pool),
			Body:      fmt.Sprintf("Resilver operation completed successfully on pool %s.", ev.Pool),
			Priority:  PriorityNormal,
		}, true

	default:
		return Message{}, false
	}
}
