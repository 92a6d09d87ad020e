package alerting

import (
	"strings"
	"testing"
	"time"

	"github.com/hostmond/hostmond/internal/events"
)

func TestRender_DiskAdded(t *testing.T) {
	msg, ok := Render(events.DiskAdded{Disk: "sdb", Model: "ST4000VN008", SizeBytes: 4000787030016})
	if !ok {
		t.Fatal("disk_added should render")
	}
	if msg.EventType != KeyDiskAdded || msg.Priority != PriorityNormal {
		t.Errorf("unexpected message meta: %+v", msg)
	}
	if !strings.Contains(msg.Title, "sdb") {
		t.Errorf("title should name the disk: %q", msg.Title)
	}
	if !strings.Contains(msg.Body, "3.6 TiB") {
		t.Errorf("body should carry a humanized size: %q", msg.Body)
	}
}

func TestRender_PoolHealthChangedIsCritical(t *testing.T) {
	msg, ok := Render(events.PoolHealthChanged{Pool: "tank", OldHealth: "ONLINE", NewHealth: "DEGRADED"})
	if !ok {
		t.Fatal("pool health change should render")
	}
	if msg.EventType != KeyPoolDegraded {
		t.Errorf("expected alert key %q, got %q", KeyPoolDegraded, msg.EventType)
	}
	if msg.Priority != PriorityCritical {
		t.Errorf("pool degradation must be critical, got %v", msg.Priority)
	}
	if !strings.Contains(msg.Body, "DEGRADED") || !strings.Contains(msg.Body, "ONLINE") {
		t.Errorf("body should carry both health states: %q", msg.Body)
	}
}

func TestRender_ResilverPriorities(t *testing.T) {
	started, _ := Render(events.RebuildStarted{Pool: "tank", Percent: 1.0})
	done, _ := Render(events.RebuildCompleted{Pool: "tank"})
	if started.Priority != PriorityNormal || done.Priority != PriorityNormal {
		t.Error("resilver lifecycle alerts are informational")
	}
}

func TestRender_HotplugDoesNotAlert(t *testing.T) {
	if _, ok := Render(events.HardwareHotplug{Action: "add", Device: "/dev/sdc", Timestamp: time.Now()}); ok {
		t.Fatal("hot-plug events broadcast but never alert")
	}
}
