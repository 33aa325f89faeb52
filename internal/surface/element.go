package surface

import (
	"sort"

	"github.com/essedev/doppia.os/internal/layout"
)

// Style is the positioned geometry of an element relative to its parent.
type Style struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
	ZIndex int
	Hidden bool
}

// Element is a node of the page tree. Elements are not safe for concurrent
// use; the desktop event loop owns them.
type Element struct {
	ID    string
	Class string

	parent    *Element
	children  []*Element
	style     Style
	data      map[string]string
	listeners listenerSet
}

// NewElement creates a detached element.
func NewElement(id, class string) *Element {
	return &Element{ID: id, Class: class}
}

// Parent returns the containing element or nil.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns a copy of the child list in insertion order.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// AppendChild moves c under e.
func (e *Element) AppendChild(c *Element) {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = e
	e.children = append(e.children, c)
}

// RemoveChild detaches c if it is a direct child of e.
func (e *Element) RemoveChild(c *Element) {
	for i, child := range e.children {
		if child == c {
			e.children = append(e.children[:i:i], e.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// SetData stores a data attribute.
func (e *Element) SetData(key, value string) {
	if e.data == nil {
		e.data = make(map[string]string)
	}
	e.data[key] = value
}

// Data returns a data attribute.
func (e *Element) Data(key string) string {
	return e.data[key]
}

func (e *Element) Style() Style {
	return e.style
}

func (e *Element) SetStyle(s Style) {
	e.style = s
}

// Rect returns the geometry relative to the parent.
func (e *Element) Rect() layout.Rect {
	return layout.Rect{X: e.style.Left, Y: e.style.Top, Width: e.style.Width, Height: e.style.Height}
}

// SetRect updates the geometry relative to the parent.
func (e *Element) SetRect(r layout.Rect) {
	e.style.Left, e.style.Top = r.X, r.Y
	e.style.Width, e.style.Height = r.Width, r.Height
}

func (e *Element) SetZIndex(z int) {
	e.style.ZIndex = z
}

func (e *Element) SetHidden(hidden bool) {
	e.style.Hidden = hidden
}

func (e *Element) Hidden() bool {
	return e.style.Hidden
}

// Visible reports whether e and all its ancestors are shown.
func (e *Element) Visible() bool {
	for n := e; n != nil; n = n.parent {
		if n.style.Hidden {
			return false
		}
	}
	return true
}

// BoundingRect returns the geometry in viewport coordinates.
func (e *Element) BoundingRect() layout.Rect {
	r := e.Rect()
	for p := e.parent; p != nil; p = p.parent {
		r.X += p.style.Left
		r.Y += p.style.Top
	}
	return r
}

// AddListener registers fn for events of type t reaching e.
func (e *Element) AddListener(t EventType, fn Handler) *Listener {
	return e.listeners.add(t, fn)
}

// ListenerCount returns the number of handlers registered for t.
func (e *Element) ListenerCount(t EventType) int {
	return e.listeners.count(t)
}

// Dispatch delivers ev to e and then to each ancestor until propagation is
// stopped.
func (e *Element) Dispatch(ev *Event) {
	if ev.Target == nil {
		ev.Target = e
	}
	for n := e; n != nil; n = n.parent {
		ev.CurrentTarget = n
		n.listeners.fire(ev)
		if ev.stopped {
			return
		}
	}
}

// hitTest returns the deepest visible descendant under p, which is given in
// the coordinate space of e's parent. Children are not clipped to their
// parent, so handles straddling a border are reachable from both sides.
func (e *Element) hitTest(p layout.Point) *Element {
	if e.style.Hidden {
		return nil
	}
	local := layout.Point{X: p.X - e.style.Left, Y: p.Y - e.style.Top}
	for _, c := range e.stackingOrder() {
		if hit := c.hitTest(local); hit != nil {
			return hit
		}
	}
	if e.Rect().Contains(p) {
		return e
	}
	return nil
}

// stackingOrder returns children topmost first: higher z-index wins, later
// siblings win ties.
func (e *Element) stackingOrder() []*Element {
	order := make([]*Element, len(e.children))
	for i := range e.children {
		order[i] = e.children[len(e.children)-1-i]
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].style.ZIndex > order[j].style.ZIndex
	})
	return order
}
