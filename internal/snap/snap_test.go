package snap

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
)

var (
	testMargins = layout.Margins{Offset: 10, NavHeight: 40}
	testVP      = layout.Viewport{Width: 1000, Height: 800}
)

func newEngine(t *testing.T, size layout.Size, pos layout.Point) (*Engine, *state.Store, *layout.LiveCoords) {
	t.Helper()
	rec := state.WindowRecord{ID: "wip", Name: "WIP", Content: "wip", Active: true, Size: size, SnapType: state.SnapNone}
	rec.Pos.X, rec.Pos.Y = pos.X, pos.Y
	store := state.NewStore([]state.WindowRecord{rec})
	coords := layout.NewLiveCoords(pos, nil)
	return New("wip", store, coords, testMargins), store, coords
}

func TestDetectSnapZone(t *testing.T) {
	tests := []struct {
		name string
		size layout.Size
		at   layout.Point
		want state.SnapType
	}{
		{name: "top-left corner", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 5, Y: 5}, want: state.SnapTopLeft},
		{name: "top-right corner", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 680, Y: 60}, want: state.SnapTopRight},
		{name: "bottom-left corner", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 0, Y: 580}, want: state.SnapBottomLeft},
		{name: "bottom-right corner", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 690, Y: 590}, want: state.SnapBottomRight},
		{name: "top edge", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 300, Y: 45}, want: state.SnapTop},
		{name: "left edge", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 20, Y: 300}, want: state.SnapLeft},
		{name: "right edge", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 675, Y: 300}, want: state.SnapRight},
		{name: "floating", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 300, Y: 300}, want: state.SnapNone},
		{name: "below top threshold", size: layout.Size{W: 300, H: 200}, at: layout.Point{X: 300, Y: 51}, want: state.SnapNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, _ := newEngine(t, tt.size, tt.at)
			if got := eng.DetectSnapZone(tt.at.X, tt.at.Y, testVP.Width, testVP.Height); got != tt.want {
				t.Fatalf("DetectSnapZone(%v) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestDetectSnapZoneUnknownWindow(t *testing.T) {
	eng := New("missing", state.NewStore(nil), layout.NewLiveCoords(layout.Point{}, nil), testMargins)
	if got := eng.DetectSnapZone(0, 0, 1000, 800); got != state.SnapNone {
		t.Fatalf("expected none for unknown window, got %s", got)
	}
}

func TestCalculateSnapDimensions(t *testing.T) {
	eng, _, _ := newEngine(t, layout.Size{W: 650, H: 400}, layout.Point{X: 123, Y: 456})
	tests := map[state.SnapType]layout.Rect{
		state.SnapTop:         {X: 10, Y: 50, Width: 980, Height: 740},
		state.SnapLeft:        {X: 10, Y: 50, Width: 490, Height: 740},
		state.SnapRight:       {X: 505, Y: 50, Width: 490, Height: 740},
		state.SnapTopLeft:     {X: 10, Y: 50, Width: 490, Height: 370},
		state.SnapTopRight:    {X: 505, Y: 50, Width: 490, Height: 370},
		state.SnapBottomLeft:  {X: 10, Y: 440, Width: 490, Height: 370},
		state.SnapBottomRight: {X: 505, Y: 440, Width: 490, Height: 370},
		state.SnapNone:        {X: 123, Y: 456},
	}
	for st, want := range tests {
		if got := eng.CalculateSnapDimensions(st, 1000, 800); got != want {
			t.Fatalf("CalculateSnapDimensions(%s) = %+v, want %+v", st, got, want)
		}
	}
}

func TestCreateSnapPreviewReplacesPrevious(t *testing.T) {
	eng, store, _ := newEngine(t, layout.Size{W: 650, H: 400}, layout.Point{X: 100, Y: 100})
	if _, ok := eng.CreateSnapPreview(state.SnapNone, 1000, 800); ok {
		t.Fatalf("expected no preview for none")
	}
	if _, ok := eng.CreateSnapPreview(state.SnapLeft, 1000, 800); !ok {
		t.Fatalf("expected left preview")
	}
	id, ok := eng.CreateSnapPreview(state.SnapTop, 1000, 800)
	if !ok || id != "preview-wip-top" {
		t.Fatalf("unexpected preview id %q", id)
	}

	previews := state.Previews(store.Snapshot(), "wip")
	if len(previews) != 1 {
		t.Fatalf("expected exactly one preview, got %d", len(previews))
	}
	p := previews[0]
	if p.Pos.Z != PreviewZ || !p.IsMaximized || !p.Active || p.Name != "WIP" {
		t.Fatalf("unexpected preview record %+v", p)
	}
	if eng.Pending() != state.SnapTop {
		t.Fatalf("expected pending top, got %s", eng.Pending())
	}
	src, _ := store.Find("wip")
	if src.Rect() != (layout.Rect{X: 100, Y: 100, Width: 650, Height: 400}) {
		t.Fatalf("preview must not move the source window: %+v", src.Rect())
	}
}

func TestRemoveSnapPreviewsLeavesOtherWindowsAlone(t *testing.T) {
	eng, store, _ := newEngine(t, layout.Size{W: 650, H: 400}, layout.Point{X: 100, Y: 100})
	store.Update(func(records []state.WindowRecord) []state.WindowRecord {
		return append(records, state.WindowRecord{ID: "preview-about-left", IsPreview: true, PreviewFor: "about"})
	})
	eng.CreateSnapPreview(state.SnapRight, 1000, 800)
	eng.RemoveSnapPreviews()

	var ids []string
	for _, r := range store.Snapshot() {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"wip", "preview-about-left"}, ids); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestApplyAndRestoreRoundTrip(t *testing.T) {
	eng, store, coords := newEngine(t, layout.Size{W: 650, H: 400}, layout.Point{X: 100, Y: 120})
	temp := state.PreviousSize{W: 650, H: 400, Pos: layout.Point{X: 100, Y: 120}}

	eng.ApplySnap(state.SnapTopRight, 1000, 800, temp)
	rec, _ := store.Find("wip")
	if rec.Rect() != (layout.Rect{X: 505, Y: 50, Width: 490, Height: 370}) {
		t.Fatalf("unexpected snapped rect %+v", rec.Rect())
	}
	if !eng.IsSnapped() || eng.SnapType() != state.SnapTopRight || rec.IsMaximized {
		t.Fatalf("unexpected snap state %+v", rec)
	}
	if diff := cmp.Diff(&temp, rec.PreviousSize); diff != "" {
		t.Fatalf("unexpected previous size (-want +got):\n%s", diff)
	}
	if coords.Current() != (layout.Point{X: 505, Y: 50}) {
		t.Fatalf("expected coords to follow the snap, got %+v", coords.Current())
	}

	eng.RestoreFromSnap()
	rec, _ = store.Find("wip")
	if rec.Rect() != temp.Rect() || rec.PreviousSize != nil || rec.Snapped() || rec.IsMaximized {
		t.Fatalf("unexpected restored record %+v", rec)
	}
	if coords.Current() != temp.Pos {
		t.Fatalf("expected coords to be restored, got %+v", coords.Current())
	}
}

func TestApplySnapTopMaximizes(t *testing.T) {
	eng, store, _ := newEngine(t, layout.Size{W: 650, H: 400}, layout.Point{X: 100, Y: 120})
	eng.ApplySnap(state.SnapTop, 1000, 800, state.PreviousSize{W: 650, H: 400})
	rec, _ := store.Find("wip")
	if !rec.IsMaximized {
		t.Fatalf("expected top snap to mark the window maximized")
	}
}

func TestApplySnapNoneIsNoop(t *testing.T) {
	eng, store, _ := newEngine(t, layout.Size{W: 650, H: 400}, layout.Point{X: 100, Y: 120})
	eng.ApplySnap(state.SnapNone, 1000, 800, state.PreviousSize{})
	if store.Version() != 0 {
		t.Fatalf("expected no store update")
	}
}

func TestRestoreWithoutPreviousSizeResetsFlags(t *testing.T) {
	eng, store, _ := newEngine(t, layout.Size{W: 650, H: 400}, layout.Point{X: 100, Y: 120})
	store.UpdateRecord("wip", func(w *state.WindowRecord) {
		w.SnapType = state.SnapLeft
		w.IsMaximized = true
	})
	eng.RestoreFromSnap()
	rec, _ := store.Find("wip")
	if rec.Snapped() || rec.IsMaximized || rec.Rect() != (layout.Rect{X: 100, Y: 120, Width: 650, Height: 400}) {
		t.Fatalf("unexpected record %+v", rec)
	}
}
