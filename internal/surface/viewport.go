package surface

import "github.com/essedev/doppia.os/internal/layout"

// Viewport is the page: a root element spanning the visible area plus
// listeners that observe every pointer event regardless of target.
type Viewport struct {
	root      *Element
	listeners listenerSet
}

// NewViewport creates a page of the given size.
func NewViewport(size layout.Viewport) *Viewport {
	root := NewElement("viewport", "viewport")
	root.SetRect(layout.Rect{Width: size.Width, Height: size.Height})
	return &Viewport{root: root}
}

// Root returns the page element.
func (v *Viewport) Root() *Element {
	return v.root
}

// Size returns the visible area.
func (v *Viewport) Size() layout.Viewport {
	r := v.root.Rect()
	return layout.Viewport{Width: r.Width, Height: r.Height}
}

// SetSize resizes the visible area.
func (v *Viewport) SetSize(size layout.Viewport) {
	v.root.SetRect(layout.Rect{Width: size.Width, Height: size.Height})
}

// AddListener registers fn for events of type t anywhere on the page.
func (v *Viewport) AddListener(t EventType, fn Handler) *Listener {
	return v.listeners.add(t, fn)
}

// ListenerCount returns the number of page-level handlers registered for t.
func (v *Viewport) ListenerCount(t EventType) int {
	return v.listeners.count(t)
}

// HitTest returns the topmost visible element under p, or the root when p is
// inside the page but over no element. Points outside the page and every
// element return nil.
func (v *Viewport) HitTest(p layout.Point) *Element {
	return v.root.hitTest(p)
}

// Deliver routes native input: the event bubbles from the element under the
// pointer up to the root and then reaches page-level listeners.
func (v *Viewport) Deliver(ev *Event) {
	if ev.Target == nil {
		ev.Target = v.HitTest(ev.Point())
		if ev.Target == nil {
			ev.Target = v.root
		}
	}
	ev.Target.Dispatch(ev)
	if ev.stopped {
		return
	}
	ev.CurrentTarget = nil
	v.listeners.fire(ev)
}
