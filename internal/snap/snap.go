// Package snap detects edge and corner snap zones for a dragged window,
// maintains the preview ghost shown while the pointer is inside a zone, and
// docks the window when the drag ends.
package snap

import (
	"fmt"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
)

// Threshold is the distance in pixels from an edge at which zones trigger.
const Threshold = 20

// PreviewZ keeps preview ghosts above every ranked window.
const PreviewZ = 9999

// Engine is the snap state of one window.
type Engine struct {
	id      string
	store   *state.Store
	coords  layout.Coords
	margins layout.Margins

	current state.SnapType
}

// New returns an engine for window id.
func New(id string, store *state.Store, coords layout.Coords, margins layout.Margins) *Engine {
	return &Engine{id: id, store: store, coords: coords, margins: margins, current: state.SnapNone}
}

// SetMargins updates the offset and navigation bar height.
func (e *Engine) SetMargins(m layout.Margins) {
	e.margins = m
}

// Pending returns the zone the current drag is hovering, as last reported
// through CreateSnapPreview or ApplySnap.
func (e *Engine) Pending() state.SnapType {
	return e.current
}

// PreviewID names the ghost shown for zone t.
func PreviewID(id string, t state.SnapType) string {
	return fmt.Sprintf("preview-%s-%s", id, t)
}

// DetectSnapZone classifies a window origin against the viewport edges using
// the window's stored size. Corners take precedence over edges.
func (e *Engine) DetectSnapZone(x, y, vw, vh float64) state.SnapType {
	rec, ok := e.store.Find(e.id)
	if !ok {
		return state.SnapNone
	}
	return Detect(layout.Point{X: x, Y: y}, rec.Size, layout.Viewport{Width: vw, Height: vh}, e.margins)
}

// Detect is DetectSnapZone without the store lookup.
func Detect(p layout.Point, size layout.Size, vp layout.Viewport, m layout.Margins) state.SnapType {
	const t = Threshold
	rightEdge := vp.Width - m.Offset
	topEdge := m.NavHeight + m.Offset
	bottomEdge := vp.Height - m.Offset

	nearLeft := p.X <= t
	nearRight := p.X+size.W >= rightEdge-t
	nearTop := p.Y <= topEdge+t
	nearBottom := p.Y+size.H >= bottomEdge-t

	switch {
	case nearLeft && nearTop:
		return state.SnapTopLeft
	case nearRight && nearTop:
		return state.SnapTopRight
	case nearLeft && nearBottom:
		return state.SnapBottomLeft
	case nearRight && nearBottom:
		return state.SnapBottomRight
	case p.Y <= topEdge:
		return state.SnapTop
	case nearLeft:
		return state.SnapLeft
	case nearRight:
		return state.SnapRight
	}
	return state.SnapNone
}

// CalculateSnapDimensions returns the docked geometry for zone t. For
// SnapNone it returns the live position with a zero size.
func (e *Engine) CalculateSnapDimensions(t state.SnapType, vw, vh float64) layout.Rect {
	if t == state.SnapNone || t == "" {
		return layout.Rect{X: e.coords.Current().X, Y: e.coords.Current().Y}
	}
	return Dimensions(t, layout.Viewport{Width: vw, Height: vh}, e.margins)
}

// Dimensions is CalculateSnapDimensions for a concrete zone.
func Dimensions(t state.SnapType, vp layout.Viewport, m layout.Margins) layout.Rect {
	maxW := vp.Width - 2*m.Offset
	maxH := vp.Height - m.NavHeight - 2*m.Offset
	left := m.Offset
	right := vp.Width/2 + m.Offset/2
	top := m.NavHeight + m.Offset
	bottom := m.NavHeight + vp.Height/2

	switch t {
	case state.SnapTop:
		return layout.Rect{X: left, Y: top, Width: maxW, Height: maxH}
	case state.SnapLeft:
		return layout.Rect{X: left, Y: top, Width: maxW / 2, Height: maxH}
	case state.SnapRight:
		return layout.Rect{X: right, Y: top, Width: maxW / 2, Height: maxH}
	case state.SnapTopLeft:
		return layout.Rect{X: left, Y: top, Width: maxW / 2, Height: maxH / 2}
	case state.SnapTopRight:
		return layout.Rect{X: right, Y: top, Width: maxW / 2, Height: maxH / 2}
	case state.SnapBottomLeft:
		return layout.Rect{X: left, Y: bottom, Width: maxW / 2, Height: maxH / 2}
	case state.SnapBottomRight:
		return layout.Rect{X: right, Y: bottom, Width: maxW / 2, Height: maxH / 2}
	}
	return layout.Rect{}
}

// CreateSnapPreview replaces this window's preview with a ghost for zone t and
// returns the ghost id. SnapNone creates nothing.
func (e *Engine) CreateSnapPreview(t state.SnapType, vw, vh float64) (string, bool) {
	if t == state.SnapNone || t == "" {
		return "", false
	}
	src, ok := e.store.Find(e.id)
	if !ok {
		return "", false
	}
	r := e.CalculateSnapDimensions(t, vw, vh)
	preview := state.WindowRecord{
		ID:          PreviewID(e.id, t),
		Name:        src.Name,
		Content:     src.Content,
		Active:      true,
		IsMaximized: t == state.SnapTop,
		IsPreview:   true,
		PreviewFor:  e.id,
		SnapType:    t,
	}
	preview.SetRect(r)
	preview.Pos.Z = PreviewZ

	e.store.Update(func(records []state.WindowRecord) []state.WindowRecord {
		return append(withoutPreviews(records, e.id), preview)
	})
	e.current = t
	return preview.ID, true
}

// RemoveSnapPreviews drops every ghost belonging to this window.
func (e *Engine) RemoveSnapPreviews() {
	e.current = state.SnapNone
	e.store.Update(func(records []state.WindowRecord) []state.WindowRecord {
		return withoutPreviews(records, e.id)
	})
}

func withoutPreviews(records []state.WindowRecord, source string) []state.WindowRecord {
	out := records[:0]
	for _, r := range records {
		if r.IsPreview && r.PreviewFor == source {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ApplySnap docks the window into zone t. tempSize is the floating geometry
// captured when the drag started and becomes the restore target.
func (e *Engine) ApplySnap(t state.SnapType, vw, vh float64, tempSize state.PreviousSize) {
	if t == state.SnapNone || t == "" {
		return
	}
	r := e.CalculateSnapDimensions(t, vw, vh)
	applied := e.store.UpdateRecord(e.id, func(w *state.WindowRecord) {
		prev := tempSize
		w.PreviousSize = &prev
		w.SetRect(r)
		w.IsMaximized = t == state.SnapTop
		w.SnapType = t
	})
	if !applied {
		return
	}
	e.current = t
	e.coords.Set(r.Origin())
}

// IsSnapped reads the stored snap state.
func (e *Engine) IsSnapped() bool {
	rec, ok := e.store.Find(e.id)
	return ok && rec.Snapped()
}

// SnapType reads the stored snap zone.
func (e *Engine) SnapType() state.SnapType {
	rec, ok := e.store.Find(e.id)
	if !ok || rec.SnapType == "" {
		return state.SnapNone
	}
	return rec.SnapType
}

// RestoreFromSnap returns the window to its floating geometry.
func (e *Engine) RestoreFromSnap() {
	var restored *layout.Point
	e.store.UpdateRecord(e.id, func(w *state.WindowRecord) {
		if w.PreviousSize != nil {
			w.SetRect(w.PreviousSize.Rect())
			p := w.PreviousSize.Pos
			restored = &p
			w.PreviousSize = nil
		}
		w.IsMaximized = false
		w.SnapType = state.SnapNone
	})
	e.current = state.SnapNone
	if restored != nil {
		e.coords.Set(*restored)
	}
}
