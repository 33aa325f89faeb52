// Package resize attaches eight edge and corner handles to an element and
// turns handle drags into resizing and resized events.
package resize

import (
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
)

// Handles are this many pixels thick and straddle the element border.
const HandleSize = 8

// DirectionKey is the data attribute naming a handle's direction.
const DirectionKey = "direction"

// Detail is the payload of resizing and resized events. X and Y are relative
// to the element's parent.
type Detail struct {
	W float64
	H float64
	X float64
	Y float64
}

// Rect converts the payload into a rect.
func (d Detail) Rect() layout.Rect {
	return layout.Rect{X: d.X, Y: d.Y, Width: d.W, Height: d.H}
}

// Options configure a controller.
type Options struct {
	Disabled bool
}

type handle struct {
	el  *surface.Element
	dir Direction
}

type session struct {
	dir     Direction
	origin  layout.Point
	initial layout.Rect
}

// Controller owns the handles of one element.
type Controller struct {
	el       *surface.Element
	vp       *surface.Viewport
	disabled bool

	handles   []handle
	listeners []*surface.Listener
	active    *session
}

// New creates the handles and registers page-level move and release
// listeners.
func New(el *surface.Element, vp *surface.Viewport, opts Options) *Controller {
	c := &Controller{el: el, vp: vp, disabled: opts.Disabled}
	for _, dir := range Directions {
		h := surface.NewElement(el.ID+"-grabber-"+dir.String(), "grabber")
		h.SetData(DirectionKey, dir.String())
		el.AppendChild(h)
		d := dir
		c.listeners = append(c.listeners,
			h.AddListener(surface.MouseDown, func(ev *surface.Event) { c.onPress(d, ev) }),
			h.AddListener(surface.TouchStart, func(ev *surface.Event) { c.onPress(d, ev) }),
		)
		c.handles = append(c.handles, handle{el: h, dir: dir})
	}
	c.listeners = append(c.listeners,
		vp.AddListener(surface.MouseMove, c.onMove),
		vp.AddListener(surface.TouchMove, c.onMove),
		vp.AddListener(surface.MouseUp, c.onRelease),
		vp.AddListener(surface.TouchEnd, c.onRelease),
	)
	c.Layout()
	c.syncHandles()
	return c
}

// Disabled reports whether the handles are inert.
func (c *Controller) Disabled() bool {
	return c.disabled
}

// Resizing reports whether a handle drag is in flight.
func (c *Controller) Resizing() bool {
	return c.active != nil
}

// SetDisabled toggles the handles. Disabling cancels an in-flight resize
// without a final event.
func (c *Controller) SetDisabled(disabled bool) {
	c.disabled = disabled
	if disabled {
		c.active = nil
	}
	c.syncHandles()
}

// Layout positions the handles along the element border. Call it after the
// element changes size.
func (c *Controller) Layout() {
	r := c.el.Rect()
	for _, h := range c.handles {
		h.el.SetRect(handleRect(h.dir, r.Width, r.Height))
	}
}

func handleRect(dir Direction, w, h float64) layout.Rect {
	const half = HandleSize / 2
	r := layout.Rect{X: half, Y: half, Width: w - HandleSize, Height: h - HandleSize}
	switch dir.Horizontal {
	case EdgeLeading:
		r.X, r.Width = -half, HandleSize
	case EdgeTrailing:
		r.X, r.Width = w-half, HandleSize
	}
	switch dir.Vertical {
	case EdgeLeading:
		r.Y, r.Height = -half, HandleSize
	case EdgeTrailing:
		r.Y, r.Height = h-half, HandleSize
	}
	return r
}

func (c *Controller) syncHandles() {
	for _, h := range c.handles {
		h.el.SetHidden(c.disabled)
		// Corners sit above edges.
		z := 1
		if h.dir.Horizontal != EdgeNone && h.dir.Vertical != EdgeNone {
			z = 2
		}
		h.el.SetZIndex(z)
	}
}

func (c *Controller) onPress(dir Direction, ev *surface.Event) {
	if c.disabled || c.active != nil {
		return
	}
	if ev.Type == surface.MouseDown && ev.Button != surface.PrimaryButton {
		return
	}
	if c.el.Parent() == nil {
		return
	}
	c.active = &session{dir: dir, origin: ev.Point(), initial: c.el.Rect()}
}

func (c *Controller) onMove(ev *surface.Event) {
	s := c.active
	if s == nil || c.disabled {
		return
	}
	p := ev.Point()
	dx := p.X - s.origin.X
	dy := p.Y - s.origin.Y
	current := c.el.Rect()
	next := current

	switch s.dir.Horizontal {
	case EdgeTrailing:
		if w := s.initial.Width + dx; w >= state.MinWidth {
			next.Width = w
		}
	case EdgeLeading:
		if w := s.initial.Width - dx; w >= state.MinWidth {
			next.Width = w
			next.X = s.initial.X + dx
		}
	}
	switch s.dir.Vertical {
	case EdgeTrailing:
		if h := s.initial.Height + dy; h >= state.MinHeight {
			next.Height = h
		}
	case EdgeLeading:
		if h := s.initial.Height - dy; h >= state.MinHeight {
			next.Height = h
			next.Y = s.initial.Y + dy
		}
	}

	if next == current {
		return
	}
	c.el.SetRect(next)
	c.Layout()
	c.emit(surface.Resizing, next)
}

func (c *Controller) onRelease(*surface.Event) {
	if c.active == nil {
		return
	}
	c.active = nil
	c.emit(surface.Resized, c.el.Rect())
}

func (c *Controller) emit(t surface.EventType, r layout.Rect) {
	d := Detail{W: r.Width, H: r.Height, X: r.X, Y: r.Y}
	c.el.Dispatch(&surface.Event{Type: t, X: r.X, Y: r.Y, Detail: d})
}

// Cancel abandons an in-flight resize without a final event.
func (c *Controller) Cancel() {
	c.active = nil
}

// Destroy removes the handles and every listener.
func (c *Controller) Destroy() {
	for _, l := range c.listeners {
		l.Remove()
	}
	c.listeners = nil
	for _, h := range c.handles {
		h.el.Remove()
	}
	c.handles = nil
	c.active = nil
}
