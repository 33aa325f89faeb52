package metrics

import (
	"testing"
	"time"

	"github.com/essedev/doppia.os/internal/state"
)

func TestCollectorRecordsCounters(t *testing.T) {
	c := NewCollector(true)
	c.Record("wip", Drag)
	c.Record("wip", Resize)
	c.RecordSnap("wip", state.SnapLeft)
	c.RecordSnap("wip", state.SnapLeft)
	c.Record("about", Maximize)
	snap := c.Snapshot()
	if !snap.Enabled {
		t.Fatalf("expected snapshot to be enabled")
	}
	if snap.Totals.Drags != 1 || snap.Totals.Resizes != 1 || snap.Totals.Snaps != 2 || snap.Totals.Maximizes != 1 {
		t.Fatalf("unexpected totals: %#v", snap.Totals)
	}
	if len(snap.Windows) != 2 {
		t.Fatalf("expected two windows in snapshot, got %d", len(snap.Windows))
	}
	if snap.Windows[0].Window != "about" || snap.Windows[1].Window != "wip" {
		t.Fatalf("expected windows sorted by id: %#v", snap.Windows)
	}
	wip := snap.Windows[1]
	if wip.SnapsByType[state.SnapLeft] != 2 {
		t.Fatalf("unexpected snap breakdown: %#v", wip.SnapsByType)
	}
	if wip.LastInteraction.IsZero() {
		t.Fatalf("expected timestamp to be recorded: %#v", wip)
	}
}

func TestCollectorSnapshotIsIsolated(t *testing.T) {
	c := NewCollector(true)
	c.RecordSnap("wip", state.SnapTop)
	snap := c.Snapshot()
	snap.Windows[0].SnapsByType[state.SnapTop] = 42
	if got := c.Snapshot().Windows[0].SnapsByType[state.SnapTop]; got != 1 {
		t.Fatalf("snapshot mutation leaked into collector: %d", got)
	}
}

func TestCollectorToggle(t *testing.T) {
	c := NewCollector(false)
	c.Record("wip", Drag)
	if snap := c.Snapshot(); snap.Enabled || len(snap.Windows) != 0 {
		t.Fatalf("expected disabled snapshot: %#v", snap)
	}
	c.SetEnabled(true)
	c.Record("wip", Drag)
	c.Record("wip", Focus)
	snap := c.Snapshot()
	if !snap.Enabled || snap.Totals.Drags != 1 || snap.Totals.Focuses != 1 {
		t.Fatalf("unexpected enabled snapshot: %#v", snap)
	}
	c.SetEnabled(false)
	snap = c.Snapshot()
	if snap.Enabled {
		t.Fatalf("expected disabled after toggle")
	}
	if !snap.Started.IsZero() {
		t.Fatalf("expected started timestamp reset, got %v", snap.Started)
	}
	time.Sleep(10 * time.Millisecond)
	c.SetEnabled(true)
	c.Record("wip", Drag)
	snap = c.Snapshot()
	if snap.Totals.Drags != 1 {
		t.Fatalf("expected counters to reset after re-enable: %#v", snap)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record("wip", Drag)
	if c.Enabled() || c.Snapshot().Enabled {
		t.Fatalf("expected nil collector to be disabled")
	}
}
