package desktop

import (
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/pan"
	"github.com/essedev/doppia.os/internal/resize"
	"github.com/essedev/doppia.os/internal/snap"
	"github.com/essedev/doppia.os/internal/stack"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
)

// Window is the page binding of one record: its frame and title bar
// elements, live coordinates and controllers.
type Window struct {
	ID string

	d      *Desktop
	frame  *surface.Element
	bar    *surface.Element
	coords *layout.LiveCoords

	pan    *pan.Controller
	resize *resize.Controller
	snap   *snap.Engine
	stack  *stack.Manager

	listeners []*surface.Listener

	dragging bool
	tempSize state.PreviousSize
}

func (d *Desktop) newWindow(rec state.WindowRecord) *Window {
	w := &Window{ID: rec.ID, d: d}
	w.frame = surface.NewElement(rec.ID, "window")
	w.frame.SetData("window", rec.ID)
	w.frame.SetRect(rec.Rect())
	w.bar = surface.NewElement(rec.ID+"-titlebar", "titlebar")
	w.frame.AppendChild(w.bar)
	d.vp.Root().AppendChild(w.frame)

	w.coords = layout.NewLiveCoords(rec.Pos.Point(), w.moveFrame)
	w.snap = snap.New(rec.ID, d.store, w.coords, d.params.Margins)
	w.stack = stack.New(rec.ID, d.store, w.coords, d.params.Margins)
	w.pan = pan.New(w.bar, d.vp)
	w.resize = resize.New(w.frame, d.vp, resize.Options{Disabled: rec.IsMaximized})

	w.listeners = []*surface.Listener{
		w.frame.AddListener(surface.MouseDown, w.onPress),
		w.frame.AddListener(surface.TouchStart, w.onPress),
		w.frame.AddListener(surface.PanStart, w.onPanStart),
		w.frame.AddListener(surface.PanMove, w.onPanMove),
		w.frame.AddListener(surface.PanEnd, w.onPanEnd),
		w.frame.AddListener(surface.Resizing, w.onResizing),
		w.frame.AddListener(surface.Resized, w.onResized),
	}
	w.apply(rec)
	return w
}

// Frame returns the window element.
func (w *Window) Frame() *surface.Element {
	return w.frame
}

// TitleBar returns the drag handle element.
func (w *Window) TitleBar() *surface.Element {
	return w.bar
}

// Coords returns the live position.
func (w *Window) Coords() layout.Coords {
	return w.coords
}

// Dragging reports whether a title bar drag is in flight.
func (w *Window) Dragging() bool {
	return w.dragging
}

func (w *Window) moveFrame(p layout.Point) {
	r := w.frame.Rect()
	r.X, r.Y = p.X, p.Y
	w.frame.SetRect(r)
}

// apply mirrors a record onto the elements. Geometry owned by an in-flight
// drag or resize is left alone.
func (w *Window) apply(rec state.WindowRecord) {
	switch {
	case w.resize.Resizing():
	case w.dragging:
		r := w.frame.Rect()
		r.Width, r.Height = rec.Size.W, rec.Size.H
		w.frame.SetRect(r)
	default:
		w.frame.SetRect(rec.Rect())
		w.coords.Set(rec.Pos.Point())
	}
	w.frame.SetZIndex(rec.Pos.Z)
	w.frame.SetHidden(!rec.Visible())
	w.bar.SetRect(layout.Rect{Width: w.frame.Rect().Width, Height: TitleBarHeight})
	w.resize.Layout()
	if w.resize.Disabled() != rec.IsMaximized {
		w.resize.SetDisabled(rec.IsMaximized)
	}
}

func (w *Window) record() (state.WindowRecord, bool) {
	return w.d.store.Find(w.ID)
}

func (w *Window) onPress(ev *surface.Event) {
	if ev.Type == surface.MouseDown && ev.Button != surface.PrimaryButton {
		return
	}
	w.focus()
}

func (w *Window) focus() {
	if top, ok := state.Focused(w.d.store.Snapshot()); ok && top.ID == w.ID {
		return
	}
	w.stack.ToFront()
	w.d.metrics.Record(w.ID, metrics.Focus)
	w.d.trace("window.focus", map[string]any{"window": w.ID})
}

func (w *Window) onPanStart(ev *surface.Event) {
	d := ev.Detail.(pan.Detail)
	rec, ok := w.record()
	if !ok {
		return
	}
	w.dragging = true
	if rec.IsMaximized || rec.Snapped() {
		rec = w.unsnapUnderPointer(rec, layout.Point{X: d.X, Y: d.Y})
	}
	w.tempSize = state.PreviousSizeOf(rec.Rect())
	w.d.metrics.Record(w.ID, metrics.Drag)
	w.d.trace("drag.start", map[string]any{
		"window": w.ID,
		"x":      d.X,
		"y":      d.Y,
	})
}

// unsnapUnderPointer restores the floating size and keeps the grab point at
// the same relative position along the title bar.
func (w *Window) unsnapUnderPointer(rec state.WindowRecord, pointer layout.Point) state.WindowRecord {
	fx := 0.5
	if rec.Size.W > 0 {
		fx = (pointer.X - rec.Pos.X) / rec.Size.W
	}
	grabY := pointer.Y - rec.Pos.Y
	w.snap.RestoreFromSnap()
	restored, ok := w.record()
	if !ok {
		return rec
	}
	p := layout.Point{X: pointer.X - fx*restored.Size.W, Y: pointer.Y - grabY}
	w.coords.Set(p)
	w.d.store.UpdateRecord(w.ID, func(r *state.WindowRecord) {
		r.Pos.X, r.Pos.Y = p.X, p.Y
	})
	restored.Pos.X, restored.Pos.Y = p.X, p.Y
	return restored
}

func (w *Window) onPanMove(ev *surface.Event) {
	if !w.dragging {
		return
	}
	d := ev.Detail.(pan.Detail)
	vw, vh := w.d.viewportSize()
	w.coords.Set(w.coords.Current().Add(layout.Point{X: d.DX, Y: d.DY}))
	w.stack.CheckOverflow(vw, vh)
	if !w.d.params.SnapEnabled {
		return
	}
	cur := w.coords.Current()
	zone := w.snap.DetectSnapZone(cur.X, cur.Y, vw, vh)
	if zone == w.snap.Pending() {
		return
	}
	if zone == state.SnapNone {
		w.snap.RemoveSnapPreviews()
	} else {
		w.snap.CreateSnapPreview(zone, vw, vh)
	}
	w.d.trace("snap.zone", map[string]any{"window": w.ID, "zone": zone})
}

func (w *Window) onPanEnd(ev *surface.Event) {
	if !w.dragging {
		return
	}
	w.dragging = false
	zone := w.snap.Pending()
	w.snap.RemoveSnapPreviews()
	if zone != state.SnapNone {
		vw, vh := w.d.viewportSize()
		w.snap.ApplySnap(zone, vw, vh, w.tempSize)
		w.d.metrics.RecordSnap(w.ID, zone)
	}
	w.d.trace("drag.end", map[string]any{
		"window": w.ID,
		"snap":   zone,
		"pos":    w.coords.Current(),
	})
}

func (w *Window) onResizing(ev *surface.Event) {
	d := ev.Detail.(resize.Detail)
	w.coords.Set(layout.Point{X: d.X, Y: d.Y})
	w.bar.SetRect(layout.Rect{Width: d.W, Height: TitleBarHeight})
}

func (w *Window) onResized(ev *surface.Event) {
	d := ev.Detail.(resize.Detail)
	w.d.store.UpdateRecord(w.ID, func(r *state.WindowRecord) {
		r.SetRect(d.Rect())
	})
	w.d.metrics.Record(w.ID, metrics.Resize)
	w.d.trace("resize.end", map[string]any{"window": w.ID, "rect": d.Rect()})
}

// cancelInteraction abandons a drag or resize without committing it.
func (w *Window) cancelInteraction() {
	if w.dragging {
		w.snap.RemoveSnapPreviews()
	}
	w.dragging = false
	w.pan.Cancel()
	w.resize.Cancel()
}

func (w *Window) setMargins(m layout.Margins) {
	w.snap.SetMargins(m)
	w.stack.SetMargins(m)
}

func (w *Window) destroy() {
	w.pan.Destroy()
	w.resize.Destroy()
	for _, l := range w.listeners {
		l.Remove()
	}
	w.listeners = nil
	w.frame.Remove()
}
