package pan

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/surface"
)

type recorder struct {
	types   []surface.EventType
	details []Detail
}

func (r *recorder) listen(el *surface.Element) {
	for _, t := range []surface.EventType{surface.PanStart, surface.PanMove, surface.PanEnd} {
		el.AddListener(t, func(ev *surface.Event) {
			r.types = append(r.types, ev.Type)
			r.details = append(r.details, ev.Detail.(Detail))
		})
	}
}

func newFixture(t *testing.T) (*surface.Viewport, *surface.Element, *Controller, *recorder) {
	t.Helper()
	vp := surface.NewViewport(layout.Viewport{Width: 1000, Height: 800})
	el := surface.NewElement("bar", "titlebar")
	el.SetRect(layout.Rect{X: 100, Y: 100, Width: 200, Height: 30})
	vp.Root().AppendChild(el)
	rec := &recorder{}
	rec.listen(el)
	return vp, el, New(el, vp), rec
}

func TestMouseDragEmitsStartMovesEnd(t *testing.T) {
	vp, _, ctrl, rec := newFixture(t)
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 110, Y: 110})
	vp.Deliver(&surface.Event{Type: surface.MouseMove, X: 120, Y: 105})
	vp.Deliver(&surface.Event{Type: surface.MouseMove, X: 600, Y: 700})
	vp.Deliver(&surface.Event{Type: surface.MouseUp, X: 601, Y: 702})

	wantTypes := []surface.EventType{surface.PanStart, surface.PanMove, surface.PanMove, surface.PanEnd}
	if diff := cmp.Diff(wantTypes, rec.types); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
	wantDetails := []Detail{
		{X: 110, Y: 110},
		{X: 120, Y: 105, DX: 10, DY: -5},
		{X: 600, Y: 700, DX: 480, DY: 595},
		{X: 601, Y: 702},
	}
	if diff := cmp.Diff(wantDetails, rec.details); diff != "" {
		t.Fatalf("unexpected details (-want +got):\n%s", diff)
	}
	if ctrl.Panning() {
		t.Fatalf("expected panning to end after release")
	}
	if n := vp.ListenerCount(surface.MouseMove); n != 0 {
		t.Fatalf("expected move listeners to be detached, got %d", n)
	}
}

func TestMoveDeltasSumToDisplacement(t *testing.T) {
	vp, _, _, rec := newFixture(t)
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 150, Y: 110})
	path := []layout.Point{{X: 151, Y: 111}, {X: 140, Y: 300}, {X: -20, Y: 900}, {X: 333, Y: 44}}
	for _, p := range path {
		vp.Deliver(&surface.Event{Type: surface.MouseMove, X: p.X, Y: p.Y})
	}
	var sum layout.Point
	for i, d := range rec.details {
		if rec.types[i] == surface.PanMove {
			sum.X += d.DX
			sum.Y += d.DY
		}
	}
	if sum != (layout.Point{X: 333 - 150, Y: 44 - 110}) {
		t.Fatalf("expected deltas to sum to displacement, got %+v", sum)
	}
}

func TestSecondaryButtonIgnored(t *testing.T) {
	vp, _, ctrl, rec := newFixture(t)
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 110, Y: 110, Button: 2})
	if ctrl.Panning() || len(rec.types) != 0 {
		t.Fatalf("expected right click to be ignored")
	}
}

func TestPressWhilePanningIsIgnored(t *testing.T) {
	vp, _, _, rec := newFixture(t)
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 110, Y: 110})
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 120, Y: 120})
	if n := len(rec.types); n != 1 {
		t.Fatalf("expected a single panstart, got %d events", n)
	}
	if n := vp.ListenerCount(surface.MouseUp); n != 1 {
		t.Fatalf("expected one release listener, got %d", n)
	}
}

func TestTouchDragUsesChangedTouchesOnEnd(t *testing.T) {
	vp, _, _, rec := newFixture(t)
	vp.Deliver(&surface.Event{Type: surface.TouchStart, Touches: []layout.Point{{X: 110, Y: 110}}})
	vp.Deliver(&surface.Event{Type: surface.TouchMove, Touches: []layout.Point{{X: 115, Y: 112}}})
	vp.Deliver(&surface.Event{Type: surface.TouchMove, Touches: []layout.Point{{X: 400, Y: 400}, {X: 10, Y: 10}}})
	vp.Deliver(&surface.Event{Type: surface.TouchEnd, ChangedTouches: []layout.Point{{X: 116, Y: 113}}})

	wantTypes := []surface.EventType{surface.PanStart, surface.PanMove, surface.PanEnd}
	if diff := cmp.Diff(wantTypes, rec.types); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
	if end := rec.details[2]; end.X != 116 || end.Y != 113 {
		t.Fatalf("expected panend at changed touch, got %+v", end)
	}
}

func TestMultiFingerTouchStartIgnored(t *testing.T) {
	vp, _, ctrl, _ := newFixture(t)
	vp.Deliver(&surface.Event{Type: surface.TouchStart, Touches: []layout.Point{{X: 110, Y: 110}, {X: 120, Y: 110}}})
	if ctrl.Panning() {
		t.Fatalf("expected two-finger touch to be ignored")
	}
}

func TestDestroyMidPanSkipsPanEnd(t *testing.T) {
	vp, el, ctrl, rec := newFixture(t)
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 110, Y: 110})
	ctrl.Destroy()
	vp.Deliver(&surface.Event{Type: surface.MouseUp, X: 120, Y: 120})
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 110, Y: 110})
	if diff := cmp.Diff([]surface.EventType{surface.PanStart}, rec.types); diff != "" {
		t.Fatalf("unexpected events after destroy (-want +got):\n%s", diff)
	}
	if el.ListenerCount(surface.MouseDown) != 0 || vp.ListenerCount(surface.MouseUp) != 0 {
		t.Fatalf("expected all listeners to be detached")
	}
}

func TestCancelKeepsPressListeners(t *testing.T) {
	vp, _, ctrl, rec := newFixture(t)
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 110, Y: 110})
	ctrl.Cancel()
	vp.Deliver(&surface.Event{Type: surface.MouseMove, X: 200, Y: 200})
	vp.Deliver(&surface.Event{Type: surface.MouseDown, X: 110, Y: 110})
	want := []surface.EventType{surface.PanStart, surface.PanStart}
	if diff := cmp.Diff(want, rec.types); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
}
