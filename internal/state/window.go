package state

import (
	"fmt"

	"github.com/essedev/doppia.os/internal/layout"
)

// SnapType names the viewport region a window is snapped to.
type SnapType string

const (
	SnapNone        SnapType = "none"
	SnapTop         SnapType = "top"
	SnapLeft        SnapType = "left"
	SnapRight       SnapType = "right"
	SnapTopLeft     SnapType = "top-left"
	SnapTopRight    SnapType = "top-right"
	SnapBottomLeft  SnapType = "bottom-left"
	SnapBottomRight SnapType = "bottom-right"
)

// SnapTypes lists every snap region, SnapNone excluded.
var SnapTypes = []SnapType{
	SnapTop, SnapLeft, SnapRight,
	SnapTopLeft, SnapTopRight, SnapBottomLeft, SnapBottomRight,
}

// ParseSnapType validates s. The empty string maps to SnapNone.
func ParseSnapType(s string) (SnapType, error) {
	if s == "" || s == string(SnapNone) {
		return SnapNone, nil
	}
	for _, t := range SnapTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return SnapNone, fmt.Errorf("unknown snap type %q", s)
}

// Minimum window dimensions enforced by interactive resizing.
const (
	MinWidth  = 300
	MinHeight = 200
)

// PreviousSize remembers the floating geometry of a maximized or snapped
// window so it can be restored.
type PreviousSize struct {
	W   float64      `json:"w"`
	H   float64      `json:"h"`
	Pos layout.Point `json:"pos"`
}

// Rect converts the snapshot into a rect.
func (p PreviousSize) Rect() layout.Rect {
	return layout.Rect{X: p.Pos.X, Y: p.Pos.Y, Width: p.W, Height: p.H}
}

// PreviousSizeOf snapshots the geometry of r.
func PreviousSizeOf(r layout.Rect) PreviousSize {
	return PreviousSize{W: r.Width, H: r.Height, Pos: r.Origin()}
}

// WindowRecord is one entry of the shared window collection.
type WindowRecord struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Content      string          `json:"content,omitempty"`
	Size         layout.Size     `json:"size"`
	Pos          layout.Position `json:"pos"`
	Active       bool            `json:"active"`
	IsMinimized  bool            `json:"isMinimized,omitempty"`
	IsMaximized  bool            `json:"isMaximized,omitempty"`
	IsPreview    bool            `json:"isPreview,omitempty"`
	PreviewFor   string          `json:"previewFor,omitempty"`
	SnapType     SnapType        `json:"snapType,omitempty"`
	PreviousSize *PreviousSize   `json:"previousSize,omitempty"`
}

// Rect returns the window geometry without its stacking rank.
func (w WindowRecord) Rect() layout.Rect {
	return layout.Rect{X: w.Pos.X, Y: w.Pos.Y, Width: w.Size.W, Height: w.Size.H}
}

// SetRect writes geometry while keeping the stacking rank.
func (w *WindowRecord) SetRect(r layout.Rect) {
	w.Pos.X, w.Pos.Y = r.X, r.Y
	w.Size = layout.Size{W: r.Width, H: r.Height}
}

// Snapped reports whether the record is docked to a snap region.
func (w WindowRecord) Snapped() bool {
	return w.SnapType != "" && w.SnapType != SnapNone
}

// Visible reports whether the window is drawn.
func (w WindowRecord) Visible() bool {
	return w.Active && !w.IsMinimized
}

func cloneRecord(w WindowRecord) WindowRecord {
	if w.PreviousSize != nil {
		prev := *w.PreviousSize
		w.PreviousSize = &prev
	}
	return w
}

// CloneRecords returns a deep copy of records.
func CloneRecords(src []WindowRecord) []WindowRecord {
	if src == nil {
		return nil
	}
	out := make([]WindowRecord, len(src))
	for i := range src {
		out[i] = cloneRecord(src[i])
	}
	return out
}

// Find returns the index of the record with id, or -1.
func Find(records []WindowRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// Focused returns the visible, non-preview window with the highest rank.
func Focused(records []WindowRecord) (WindowRecord, bool) {
	best := -1
	for i := range records {
		r := records[i]
		if r.IsPreview || !r.Visible() {
			continue
		}
		if best == -1 || r.Pos.Z > records[best].Pos.Z {
			best = i
		}
	}
	if best == -1 {
		return WindowRecord{}, false
	}
	return records[best], true
}

// Previews returns the preview records that belong to source.
func Previews(records []WindowRecord, source string) []WindowRecord {
	var out []WindowRecord
	for _, r := range records {
		if r.IsPreview && r.PreviewFor == source {
			out = append(out, r)
		}
	}
	return out
}
