package surface

import "github.com/essedev/doppia.os/internal/layout"

// EventType names a pointer or synthetic interaction event.
type EventType string

// Native input events.
const (
	MouseDown  EventType = "mousedown"
	MouseMove  EventType = "mousemove"
	MouseUp    EventType = "mouseup"
	TouchStart EventType = "touchstart"
	TouchMove  EventType = "touchmove"
	TouchEnd   EventType = "touchend"
)

// Synthetic events emitted by the interaction controllers.
const (
	PanStart EventType = "panstart"
	PanMove  EventType = "panmove"
	PanEnd   EventType = "panend"
	Resizing EventType = "resizing"
	Resized  EventType = "resized"
)

// PrimaryButton is the mouse button that starts drags.
const PrimaryButton = 0

// IsNative reports whether t is raw pointer input.
func (t EventType) IsNative() bool {
	switch t {
	case MouseDown, MouseMove, MouseUp, TouchStart, TouchMove, TouchEnd:
		return true
	}
	return false
}

// IsTouch reports whether t is a touch event.
func (t EventType) IsTouch() bool {
	return t == TouchStart || t == TouchMove || t == TouchEnd
}

// Event is delivered to listeners. Touches holds the points still in contact;
// ChangedTouches holds the points that triggered a touch event.
type Event struct {
	Type           EventType
	Target         *Element
	CurrentTarget  *Element
	X, Y           float64
	Button         int
	Touches        []layout.Point
	ChangedTouches []layout.Point
	Detail         any

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors and
// viewport listeners.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Point returns the primary pointer coordinate of the event. Touch events
// use the first active touch, or the first changed touch once all fingers are
// lifted.
func (e *Event) Point() layout.Point {
	if e.Type.IsTouch() {
		if len(e.Touches) > 0 {
			return e.Touches[0]
		}
		if len(e.ChangedTouches) > 0 {
			return e.ChangedTouches[0]
		}
	}
	return layout.Point{X: e.X, Y: e.Y}
}

// Handler consumes an event.
type Handler func(*Event)

// Listener is a registered handler. Remove detaches it.
type Listener struct {
	set     *listenerSet
	typ     EventType
	fn      Handler
	removed bool
}

// Remove detaches the listener. Calling it more than once is harmless.
func (l *Listener) Remove() {
	if l == nil || l.removed {
		return
	}
	l.removed = true
	l.set.remove(l)
}

type listenerSet struct {
	byType map[EventType][]*Listener
}

func (s *listenerSet) add(t EventType, fn Handler) *Listener {
	if s.byType == nil {
		s.byType = make(map[EventType][]*Listener)
	}
	l := &Listener{set: s, typ: t, fn: fn}
	s.byType[t] = append(s.byType[t], l)
	return l
}

func (s *listenerSet) remove(l *Listener) {
	list := s.byType[l.typ]
	for i, candidate := range list {
		if candidate == l {
			s.byType[l.typ] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(s.byType[l.typ]) == 0 {
		delete(s.byType, l.typ)
	}
}

func (s *listenerSet) count(t EventType) int {
	return len(s.byType[t])
}

// fire runs the listeners registered at the time of the call. Listeners
// removed by an earlier handler in the same pass are skipped.
func (s *listenerSet) fire(ev *Event) {
	list := append([]*Listener(nil), s.byType[ev.Type]...)
	for _, l := range list {
		if l.removed {
			continue
		}
		l.fn(ev)
	}
}
