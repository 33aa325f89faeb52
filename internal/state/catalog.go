package state

import "github.com/essedev/doppia.os/internal/layout"

// CatalogEntry seeds one window of the desktop.
type CatalogEntry struct {
	ID      string
	Name    string
	Content string
	Rect    layout.Rect
	Active  bool
}

var defaultWindowRect = layout.Rect{X: 20, Y: 70, Width: 650, Height: 400}

const defaultWindowZ = 10

// DefaultCatalog lists the windows shipped with the desktop.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{ID: "wip", Name: "WORK IN PROGRESS", Content: "wip", Rect: defaultWindowRect, Active: true},
		{ID: "about", Name: "About", Content: "about", Rect: defaultWindowRect},
		{ID: "projects", Name: "Projects", Content: "projects", Rect: defaultWindowRect},
		{ID: "contact", Name: "Contact", Content: "contact", Rect: defaultWindowRect},
		{ID: "photopea", Name: "Photopea", Content: "photopea", Rect: defaultWindowRect},
	}
}

// Seed converts catalog entries into initial window records. Active windows
// receive dense stacking ranks in catalog order; inactive windows start at
// the catalog default rank and are re-ranked when opened.
func Seed(entries []CatalogEntry) []WindowRecord {
	records := make([]WindowRecord, 0, len(entries))
	rank := 0
	for _, e := range entries {
		rec := WindowRecord{
			ID:       e.ID,
			Name:     e.Name,
			Content:  e.Content,
			Active:   e.Active,
			SnapType: SnapNone,
		}
		rec.SetRect(e.Rect)
		rec.Pos.Z = defaultWindowZ
		if e.Active {
			rec.Pos.Z = rank
			rank++
		}
		records = append(records, rec)
	}
	return records
}
