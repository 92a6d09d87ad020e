package events

import (
	"encoding/json"
	"testing"
)

func TestWire_InjectsTypeTag(t *testing.T) {
	raw, err := Wire(DiskAdded{Disk: "sda", Model: "WDC", SizeBytes: 1 << 40})
	if err != nil {
		t.Fatalf("wire: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["type"] != TypeDiskAdded {
		t.Fatalf("type = %v, want %q", fields["type"], TypeDiskAdded)
	}
	if fields["disk"] != "sda" {
		t.Fatalf("disk = %v, want sda", fields["disk"])
	}
	if fields["model"] != "WDC" {
		t.Fatalf("model = %v", fields["model"])
	}
}

func TestWire_FlatPayload(t *testing.T) {
	raw, err := Wire(PoolHealthChanged{Pool: "tank", OldHealth: "ONLINE", NewHealth: "DEGRADED"})
	if err != nil {
		t.Fatalf("wire: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"type", "pool", "old_health", "new_health"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing top-level field %q in %s", key, raw)
		}
	}
}
