package surface

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/essedev/doppia.os/internal/layout"
)

func TestDispatchBubblesUntilStopped(t *testing.T) {
	root := NewElement("root", "")
	mid := NewElement("mid", "")
	leaf := NewElement("leaf", "")
	root.AppendChild(mid)
	mid.AppendChild(leaf)

	var order []string
	record := func(name string) Handler {
		return func(ev *Event) { order = append(order, name+":"+ev.Target.ID) }
	}
	leaf.AddListener(PanMove, record("leaf"))
	mid.AddListener(PanMove, func(ev *Event) {
		order = append(order, "mid:"+ev.Target.ID)
		ev.StopPropagation()
	})
	root.AddListener(PanMove, record("root"))

	leaf.Dispatch(&Event{Type: PanMove})
	want := []string{"leaf:leaf", "mid:leaf"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("unexpected dispatch order (-want +got):\n%s", diff)
	}
}

func TestListenerRemoveDuringDispatch(t *testing.T) {
	el := NewElement("el", "")
	calls := 0
	var second *Listener
	el.AddListener(MouseUp, func(*Event) {
		calls++
		second.Remove()
	})
	second = el.AddListener(MouseUp, func(*Event) { calls += 10 })
	el.Dispatch(&Event{Type: MouseUp})
	if calls != 1 {
		t.Fatalf("expected removed listener to be skipped, calls=%d", calls)
	}
	if el.ListenerCount(MouseUp) != 1 {
		t.Fatalf("expected one remaining listener, got %d", el.ListenerCount(MouseUp))
	}
	second.Remove()
}

func TestBoundingRectAccumulatesParents(t *testing.T) {
	parent := NewElement("p", "")
	parent.SetRect(layout.Rect{X: 100, Y: 50, Width: 500, Height: 400})
	child := NewElement("c", "")
	child.SetRect(layout.Rect{X: 10, Y: 20, Width: 30, Height: 40})
	parent.AppendChild(child)
	want := layout.Rect{X: 110, Y: 70, Width: 30, Height: 40}
	if got := child.BoundingRect(); got != want {
		t.Fatalf("BoundingRect = %+v, want %+v", got, want)
	}
}

func TestHitTestPrefersHigherZIndex(t *testing.T) {
	vp := NewViewport(layout.Viewport{Width: 1000, Height: 800})
	low := NewElement("low", "window")
	low.SetRect(layout.Rect{X: 0, Y: 0, Width: 500, Height: 500})
	low.SetZIndex(5)
	high := NewElement("high", "window")
	high.SetRect(layout.Rect{X: 100, Y: 100, Width: 500, Height: 500})
	high.SetZIndex(1)
	vp.Root().AppendChild(low)
	vp.Root().AppendChild(high)

	if got := vp.HitTest(layout.Point{X: 150, Y: 150}); got != low {
		t.Fatalf("expected low (z=5) to win, got %s", got.ID)
	}
	high.SetZIndex(6)
	if got := vp.HitTest(layout.Point{X: 150, Y: 150}); got != high {
		t.Fatalf("expected high to win after raise, got %s", got.ID)
	}
	low.SetHidden(true)
	if got := vp.HitTest(layout.Point{X: 50, Y: 50}); got != vp.Root() {
		t.Fatalf("expected hidden element to be skipped, got %s", got.ID)
	}
	if got := vp.HitTest(layout.Point{X: -1, Y: 50}); got != nil {
		t.Fatalf("expected nil outside the page, got %s", got.ID)
	}
}

func TestDeliverReachesPageListenersAfterBubbling(t *testing.T) {
	vp := NewViewport(layout.Viewport{Width: 1000, Height: 800})
	el := NewElement("el", "")
	el.SetRect(layout.Rect{Width: 100, Height: 100})
	vp.Root().AppendChild(el)

	var order []string
	el.AddListener(MouseMove, func(*Event) { order = append(order, "element") })
	vp.AddListener(MouseMove, func(*Event) { order = append(order, "page") })
	vp.Deliver(&Event{Type: MouseMove, X: 10, Y: 10})
	vp.Deliver(&Event{Type: MouseMove, X: 500, Y: 500})

	want := []string{"element", "page", "page"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("unexpected delivery (-want +got):\n%s", diff)
	}
}

func TestEventPointForTouches(t *testing.T) {
	ev := &Event{Type: TouchEnd, ChangedTouches: []layout.Point{{X: 3, Y: 4}}}
	if ev.Point() != (layout.Point{X: 3, Y: 4}) {
		t.Fatalf("expected changed touch coordinate, got %+v", ev.Point())
	}
	ev = &Event{Type: TouchMove, Touches: []layout.Point{{X: 1, Y: 2}, {X: 9, Y: 9}}}
	if ev.Point() != (layout.Point{X: 1, Y: 2}) {
		t.Fatalf("expected first touch, got %+v", ev.Point())
	}
}

func TestHitTestReachesChildOutsideParent(t *testing.T) {
	vp := NewViewport(layout.Viewport{Width: 1000, Height: 800})
	win := NewElement("win", "window")
	win.SetRect(layout.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	handle := NewElement("handle", "resize")
	handle.SetRect(layout.Rect{X: 196, Y: 96, Width: 8, Height: 8})
	win.AppendChild(handle)
	vp.Root().AppendChild(win)

	if got := vp.HitTest(layout.Point{X: 302, Y: 202}); got != handle {
		t.Fatalf("expected handle outside the window border, got %v", got)
	}
	if got := vp.HitTest(layout.Point{X: 298, Y: 198}); got != handle {
		t.Fatalf("expected handle inside the window border, got %v", got)
	}
	if got := vp.HitTest(layout.Point{X: 310, Y: 150}); got != vp.Root() {
		t.Fatalf("expected root beside the window, got %v", got)
	}
}
