package desktop

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/resize"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
	"github.com/essedev/doppia.os/internal/util"
)

func newTestDesktop(t *testing.T) (*Desktop, *state.Store, *metrics.Collector) {
	t.Helper()
	store := state.NewStore(state.Seed([]state.CatalogEntry{
		{ID: "a", Name: "A", Rect: layout.Rect{X: 100, Y: 100, Width: 650, Height: 400}, Active: true},
		{ID: "b", Name: "B", Rect: layout.Rect{X: 300, Y: 350, Width: 650, Height: 400}, Active: true},
		{ID: "c", Name: "C", Rect: layout.Rect{X: 20, Y: 70, Width: 650, Height: 400}},
	}))
	collector := metrics.NewCollector(true)
	d := New(store, util.NewLoggerWithWriter(util.LevelTrace, io.Discard), collector, Params{
		Viewport:    layout.Viewport{Width: 1000, Height: 800},
		Margins:     layout.Margins{Offset: 10, NavHeight: 40},
		SnapEnabled: true,
	})
	t.Cleanup(d.Close)
	return d, store, collector
}

func press(d *Desktop, x, y float64) {
	d.Deliver(&surface.Event{Type: surface.MouseDown, X: x, Y: y})
}

func move(d *Desktop, x, y float64) {
	d.Deliver(&surface.Event{Type: surface.MouseMove, X: x, Y: y})
}

func release(d *Desktop, x, y float64) {
	d.Deliver(&surface.Event{Type: surface.MouseUp, X: x, Y: y})
}

func mustFind(t *testing.T, store *state.Store, id string) state.WindowRecord {
	t.Helper()
	rec, ok := store.Find(id)
	if !ok {
		t.Fatalf("window %q not found", id)
	}
	return rec
}

func TestTitleBarDragMovesWindowAndFocuses(t *testing.T) {
	d, store, collector := newTestDesktop(t)
	press(d, 150, 110)
	move(d, 180, 130)
	move(d, 200, 150)
	release(d, 200, 150)

	a := mustFind(t, store, "a")
	if a.Rect() != (layout.Rect{X: 150, Y: 140, Width: 650, Height: 400}) {
		t.Fatalf("unexpected geometry after drag %+v", a.Rect())
	}
	if focused, _ := state.Focused(store.Snapshot()); focused.ID != "a" {
		t.Fatalf("expected a to be focused, got %s", focused.ID)
	}
	w, _ := d.Window("a")
	if w.Frame().Rect() != a.Rect() {
		t.Fatalf("frame out of sync: %+v vs %+v", w.Frame().Rect(), a.Rect())
	}
	if got := collector.Snapshot().Totals; got.Drags != 1 || got.Focuses != 1 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}

func TestDragIntoLeftZoneSnaps(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	press(d, 150, 110)
	move(d, 50, 200)

	previews := state.Previews(store.Snapshot(), "a")
	if len(previews) != 1 || previews[0].ID != "preview-a-left" {
		t.Fatalf("expected left preview while hovering, got %+v", previews)
	}
	release(d, 50, 200)

	a := mustFind(t, store, "a")
	if a.Rect() != (layout.Rect{X: 10, Y: 50, Width: 490, Height: 740}) {
		t.Fatalf("unexpected snapped geometry %+v", a.Rect())
	}
	if a.SnapType != state.SnapLeft || a.IsMaximized {
		t.Fatalf("unexpected snap state %+v", a)
	}
	want := &state.PreviousSize{W: 650, H: 400, Pos: layout.Point{X: 100, Y: 100}}
	if diff := cmp.Diff(want, a.PreviousSize); diff != "" {
		t.Fatalf("unexpected restore target (-want +got):\n%s", diff)
	}
	if n := len(state.Previews(store.Snapshot(), "a")); n != 0 {
		t.Fatalf("expected previews to be removed, got %d", n)
	}
}

func TestLeavingZoneRemovesPreview(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	press(d, 150, 110)
	move(d, 50, 200)
	move(d, 350, 300)
	if n := len(state.Previews(store.Snapshot(), "a")); n != 0 {
		t.Fatalf("expected preview to disappear outside zones, got %d", n)
	}
	release(d, 350, 300)
	if a := mustFind(t, store, "a"); a.Snapped() || a.PreviousSize != nil {
		t.Fatalf("expected floating window, got %+v", a)
	}
}

func TestDraggingSnappedWindowRestoresFloatingSize(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	if err := d.Snap("a", state.SnapLeft); err != nil {
		t.Fatalf("Snap: %v", err)
	}
	press(d, 255, 60)
	move(d, 455, 260)
	release(d, 455, 260)

	a := mustFind(t, store, "a")
	if a.Rect() != (layout.Rect{X: 130, Y: 250, Width: 650, Height: 400}) {
		t.Fatalf("unexpected geometry after unsnapping drag %+v", a.Rect())
	}
	if a.Snapped() || a.PreviousSize != nil {
		t.Fatalf("expected snap state to be cleared, got %+v", a)
	}
}

func TestSnapDisabledSkipsPreviews(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	d.SetSnapEnabled(false)
	press(d, 150, 110)
	move(d, 50, 200)
	if n := len(state.Previews(store.Snapshot(), "a")); n != 0 {
		t.Fatalf("expected no preview with snapping disabled, got %d", n)
	}
	release(d, 50, 200)
	if a := mustFind(t, store, "a"); a.Snapped() {
		t.Fatalf("expected no snap, got %+v", a)
	}
}

func TestResizeHandleCommitsOnRelease(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	press(d, 748, 300)
	move(d, 848, 300)
	if a := mustFind(t, store, "a"); a.Size.W != 650 {
		t.Fatalf("expected store untouched during resize, got %+v", a.Size)
	}
	w, _ := d.Window("a")
	if w.Frame().Rect().Width != 750 {
		t.Fatalf("expected frame to follow the handle, got %+v", w.Frame().Rect())
	}
	release(d, 848, 300)
	if a := mustFind(t, store, "a"); a.Rect() != (layout.Rect{X: 100, Y: 100, Width: 750, Height: 400}) {
		t.Fatalf("unexpected committed geometry %+v", a.Rect())
	}
}

func TestMaximizeDisablesResizeHandles(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	before := mustFind(t, store, "a")
	if err := d.ToggleMaximize("a"); err != nil {
		t.Fatalf("ToggleMaximize: %v", err)
	}
	a := mustFind(t, store, "a")
	if !a.IsMaximized || a.Rect() != (layout.Rect{X: 10, Y: 50, Width: 980, Height: 740}) {
		t.Fatalf("unexpected maximized record %+v", a)
	}
	w, _ := d.Window("a")
	for _, child := range w.Frame().Children() {
		if child.Class == "grabber" && !child.Hidden() {
			t.Fatalf("expected handle %s to be hidden", child.Data(resize.DirectionKey))
		}
	}
	if err := d.ToggleMaximize("a"); err != nil {
		t.Fatalf("ToggleMaximize: %v", err)
	}
	after := mustFind(t, store, "a")
	if after.Rect() != before.Rect() || after.IsMaximized {
		t.Fatalf("expected exact restore, got %+v", after)
	}
	for _, child := range w.Frame().Children() {
		if child.Class == "grabber" && child.Hidden() {
			t.Fatalf("expected handles to reappear")
		}
	}
}

func TestMaximizeDuringDragCancelsIt(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	press(d, 150, 110)
	move(d, 50, 200)
	if err := d.ToggleMaximize("a"); err != nil {
		t.Fatalf("ToggleMaximize: %v", err)
	}
	move(d, 400, 400)
	release(d, 400, 400)
	a := mustFind(t, store, "a")
	if !a.IsMaximized || a.Rect() != (layout.Rect{X: 10, Y: 50, Width: 980, Height: 740}) {
		t.Fatalf("expected maximized window untouched by the cancelled drag, got %+v", a)
	}
	if n := len(state.Previews(store.Snapshot(), "a")); n != 0 {
		t.Fatalf("expected previews to be removed, got %d", n)
	}
}

func TestMinimizeAndRestore(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	if err := d.Minimize("b"); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	w, _ := d.Window("b")
	if !w.Frame().Hidden() {
		t.Fatalf("expected minimized frame to be hidden")
	}
	if focused, _ := state.Focused(store.Snapshot()); focused.ID != "a" {
		t.Fatalf("expected focus to move to a, got %s", focused.ID)
	}
	if err := d.Focus("b"); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	b := mustFind(t, store, "b")
	if b.IsMinimized || w.Frame().Hidden() {
		t.Fatalf("expected focus to restore the minimized window")
	}
	if focused, _ := state.Focused(store.Snapshot()); focused.ID != "b" {
		t.Fatalf("expected b focused, got %s", focused.ID)
	}
}

func TestOpenCloseWindow(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	if err := d.Focus("c"); err == nil {
		t.Fatalf("expected focusing a closed window to fail")
	}
	if err := d.Open("c"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if focused, _ := state.Focused(store.Snapshot()); focused.ID != "c" {
		t.Fatalf("expected opened window on top, got %s", focused.ID)
	}
	if err := d.CloseWindow("c"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	w, _ := d.Window("c")
	if !w.Frame().Hidden() {
		t.Fatalf("expected closed window to be hidden")
	}
}

func TestUnknownWindowCommands(t *testing.T) {
	d, _, _ := newTestDesktop(t)
	for name, fn := range map[string]func(string) error{
		"focus":    d.Focus,
		"minimize": d.Minimize,
		"maximize": d.ToggleMaximize,
		"unsnap":   d.Unsnap,
	} {
		if err := fn("nope"); !errors.Is(err, ErrUnknownWindow) {
			t.Fatalf("%s: expected ErrUnknownWindow, got %v", name, err)
		}
	}
}

func TestSetViewportRefitsSnappedWindow(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	if err := d.Snap("a", state.SnapRight); err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if err := d.SetViewport(layout.Viewport{Width: 1200, Height: 900}); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	a := mustFind(t, store, "a")
	if a.Rect() != (layout.Rect{X: 605, Y: 50, Width: 590, Height: 840}) {
		t.Fatalf("unexpected refit geometry %+v", a.Rect())
	}
	if a.PreviousSize == nil || a.PreviousSize.W != 650 {
		t.Fatalf("expected floating geometry to survive refit, got %+v", a.PreviousSize)
	}
	if err := d.SetViewport(layout.Viewport{}); err == nil {
		t.Fatalf("expected error for empty viewport")
	}
}

func TestRunProcessesInputAndCommands(t *testing.T) {
	d, store, _ := newTestDesktop(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	input := make(chan *surface.Event)
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx, input) }()

	input <- &surface.Event{Type: surface.MouseDown, X: 150, Y: 110}
	input <- &surface.Event{Type: surface.MouseMove, X: 160, Y: 120}
	input <- &surface.Event{Type: surface.MouseUp, X: 160, Y: 120}
	if err := d.Do(ctx, func() error { return d.Minimize("b") }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if a := mustFind(t, store, "a"); a.Pos.Point() != (layout.Point{X: 110, Y: 110}) {
		t.Fatalf("unexpected position %+v", a.Pos)
	}
	if b := mustFind(t, store, "b"); !b.IsMinimized {
		t.Fatalf("expected b minimized")
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not exit")
	}
	if err := d.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after exit, got %v", err)
	}
}

func TestFormatTraceFieldsSortsKeys(t *testing.T) {
	got := formatTraceFields(map[string]any{"b": 1, "a": "x"})
	if got != `{"a":"x","b":1}` {
		t.Fatalf("unexpected trace fields %s", got)
	}
	if formatTraceFields(nil) != "{}" {
		t.Fatalf("expected empty object for nil fields")
	}
}
