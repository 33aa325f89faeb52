// Package stack keeps a window inside the viewport and manages its place in
// the z-order: focus, minimize, maximize, open and close.
package stack

import (
	"sort"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
)

// Manager operates on one window of the shared store.
type Manager struct {
	id      string
	store   *state.Store
	coords  layout.Coords
	margins layout.Margins
}

// New returns a manager for window id.
func New(id string, store *state.Store, coords layout.Coords, margins layout.Margins) *Manager {
	return &Manager{id: id, store: store, coords: coords, margins: margins}
}

// SetMargins updates the offset and navigation bar height.
func (m *Manager) SetMargins(margins layout.Margins) {
	m.margins = margins
}

// CheckOverflow pulls the live position back inside the usable area and
// writes it to the store.
func (m *Manager) CheckOverflow(vw, vh float64) {
	rec, ok := m.store.Find(m.id)
	if !ok {
		return
	}
	p := layout.ClampOrigin(m.coords.Current(), rec.Size, layout.Viewport{Width: vw, Height: vh}, m.margins)
	m.coords.Set(p)
	m.store.UpdateRecord(m.id, func(w *state.WindowRecord) {
		w.Pos.X, w.Pos.Y = p.X, p.Y
	})
}

// ToFront gives the window the highest rank among active windows. Ranks stay
// dense from zero. Inactive windows and previews are left alone.
func (m *Manager) ToFront() {
	m.store.Update(func(records []state.WindowRecord) []state.WindowRecord {
		i := state.Find(records, m.id)
		if i < 0 || !records[i].Active || records[i].IsPreview {
			return records
		}
		rerank(records, m.id, true)
		return records
	})
}

// MinimizeWindow hides the window and hands focus to the next one by sinking
// the minimized window to the bottom of the stack.
func (m *Manager) MinimizeWindow() {
	m.store.UpdateRecord(m.id, func(w *state.WindowRecord) {
		w.IsMinimized = true
	})
	m.store.Update(func(records []state.WindowRecord) []state.WindowRecord {
		if i := state.Find(records, m.id); i >= 0 && records[i].Active {
			rerank(records, m.id, false)
		}
		return records
	})
}

// RestoreFromMinimized shows the window again and focuses it.
func (m *Manager) RestoreFromMinimized() {
	if !m.store.UpdateRecord(m.id, func(w *state.WindowRecord) {
		w.IsMinimized = false
	}) {
		return
	}
	m.ToFront()
}

// ToggleMaximize fills the usable area, or restores the geometry saved by the
// previous call.
func (m *Manager) ToggleMaximize(vw, vh float64) {
	var moved *layout.Point
	m.store.UpdateRecord(m.id, func(w *state.WindowRecord) {
		if w.IsMaximized {
			if w.PreviousSize != nil {
				w.SetRect(w.PreviousSize.Rect())
				p := w.PreviousSize.Pos
				moved = &p
				w.PreviousSize = nil
			}
			w.IsMaximized = false
			w.SnapType = state.SnapNone
			return
		}
		prev := state.PreviousSizeOf(w.Rect())
		if w.Snapped() && w.PreviousSize != nil {
			// Keep the floating geometry saved by the snap.
			prev = *w.PreviousSize
		}
		w.PreviousSize = &prev
		usable := layout.UsableArea(layout.Viewport{Width: vw, Height: vh}, m.margins)
		w.SetRect(usable)
		w.IsMaximized = true
		w.SnapType = state.SnapNone
		p := usable.Origin()
		moved = &p
	})
	if moved != nil {
		m.coords.Set(*moved)
	}
}

// Open activates the window and brings it to the front.
func (m *Manager) Open() {
	if !m.store.UpdateRecord(m.id, func(w *state.WindowRecord) {
		w.Active = true
		w.IsMinimized = false
	}) {
		return
	}
	m.ToFront()
}

// Close deactivates the window and compacts the remaining ranks.
func (m *Manager) Close() {
	m.store.Update(func(records []state.WindowRecord) []state.WindowRecord {
		i := state.Find(records, m.id)
		if i < 0 || !records[i].Active {
			return records
		}
		records[i].Active = false
		records[i].IsMinimized = false
		rerank(records, "", true)
		return records
	})
}

// rerank assigns dense ranks 0..n-1 to active non-preview windows in their
// current stacking order, moving id to the top or the bottom.
func rerank(records []state.WindowRecord, id string, top bool) {
	var idx []int
	for i := range records {
		if records[i].Active && !records[i].IsPreview {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := records[idx[a]], records[idx[b]]
		ka, kb := rankKey(ra, id, top), rankKey(rb, id, top)
		if ka != kb {
			return ka < kb
		}
		return ra.Pos.Z < rb.Pos.Z
	})
	for rank, i := range idx {
		records[i].Pos.Z = rank
	}
}

func rankKey(r state.WindowRecord, id string, top bool) int {
	if r.ID != id || id == "" {
		return 0
	}
	if top {
		return 1
	}
	return -1
}
