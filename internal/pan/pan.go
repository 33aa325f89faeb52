// Package pan turns press/move/release input on an element into panstart,
// panmove and panend events dispatched on that element.
package pan

import (
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/surface"
)

// Detail is the payload of pan events. DX and DY are only set on panmove and
// are measured from the previous move, not from the press origin.
type Detail struct {
	X  float64
	Y  float64
	DX float64
	DY float64
}

// Controller tracks one drag session on an element.
type Controller struct {
	el *surface.Element
	vp *surface.Viewport

	panning bool
	last    layout.Point

	press []*surface.Listener
	track []*surface.Listener
}

// New attaches press listeners to el. Drags continue outside the element
// because move and release are observed on the whole viewport.
func New(el *surface.Element, vp *surface.Viewport) *Controller {
	c := &Controller{el: el, vp: vp}
	c.press = []*surface.Listener{
		el.AddListener(surface.MouseDown, c.onPress),
		el.AddListener(surface.TouchStart, c.onPress),
	}
	return c
}

// Panning reports whether a drag is in flight.
func (c *Controller) Panning() bool {
	return c.panning
}

func (c *Controller) onPress(ev *surface.Event) {
	if c.panning {
		return
	}
	switch ev.Type {
	case surface.MouseDown:
		if ev.Button != surface.PrimaryButton {
			return
		}
	case surface.TouchStart:
		if len(ev.Touches) != 1 {
			return
		}
	}
	c.panning = true
	c.last = ev.Point()
	c.track = []*surface.Listener{
		c.vp.AddListener(surface.MouseMove, c.onMove),
		c.vp.AddListener(surface.TouchMove, c.onMove),
		c.vp.AddListener(surface.MouseUp, c.onRelease),
		c.vp.AddListener(surface.TouchEnd, c.onRelease),
	}
	c.emit(surface.PanStart, Detail{X: c.last.X, Y: c.last.Y})
}

func (c *Controller) onMove(ev *surface.Event) {
	if !c.panning {
		return
	}
	if ev.Type == surface.TouchMove && len(ev.Touches) > 1 {
		return
	}
	p := ev.Point()
	d := Detail{X: p.X, Y: p.Y, DX: p.X - c.last.X, DY: p.Y - c.last.Y}
	c.last = p
	c.emit(surface.PanMove, d)
}

func (c *Controller) onRelease(ev *surface.Event) {
	if !c.panning {
		return
	}
	p := ev.Point()
	c.emit(surface.PanEnd, Detail{X: p.X, Y: p.Y})
	c.detachTracking()
	c.panning = false
}

func (c *Controller) emit(t surface.EventType, d Detail) {
	c.el.Dispatch(&surface.Event{Type: t, X: d.X, Y: d.Y, Detail: d})
}

func (c *Controller) detachTracking() {
	for _, l := range c.track {
		l.Remove()
	}
	c.track = nil
}

// Cancel abandons an in-flight drag without emitting panend. Press listeners
// stay attached.
func (c *Controller) Cancel() {
	c.detachTracking()
	c.panning = false
}

// Destroy detaches every listener. A drag in flight ends silently.
func (c *Controller) Destroy() {
	c.Cancel()
	for _, l := range c.press {
		l.Remove()
	}
	c.press = nil
}
