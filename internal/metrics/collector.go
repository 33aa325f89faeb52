package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/essedev/doppia.os/internal/state"
)

// Interaction names a counted window operation.
type Interaction string

const (
	Drag     Interaction = "drag"
	Resize   Interaction = "resize"
	Snap     Interaction = "snap"
	Maximize Interaction = "maximize"
	Minimize Interaction = "minimize"
	Focus    Interaction = "focus"
)

// Collector aggregates anonymous interaction counters per window.
type Collector struct {
	mu      sync.RWMutex
	enabled bool
	started time.Time
	windows map[string]*WindowMetrics
}

// WindowMetrics captures per-window counters tracked by the collector.
type WindowMetrics struct {
	Window          string                    `json:"window"`
	Drags           uint64                    `json:"drags"`
	Resizes         uint64                    `json:"resizes"`
	Snaps           uint64                    `json:"snaps"`
	SnapsByType     map[state.SnapType]uint64 `json:"snapsByType,omitempty"`
	Maximizes       uint64                    `json:"maximizes"`
	Minimizes       uint64                    `json:"minimizes"`
	Focuses         uint64                    `json:"focuses"`
	LastInteraction time.Time                 `json:"lastInteraction,omitempty"`
}

// Totals aggregates counters across all windows in a snapshot.
type Totals struct {
	Drags     uint64 `json:"drags"`
	Resizes   uint64 `json:"resizes"`
	Snaps     uint64 `json:"snaps"`
	Maximizes uint64 `json:"maximizes"`
	Minimizes uint64 `json:"minimizes"`
	Focuses   uint64 `json:"focuses"`
}

// Snapshot is the serializable view of the current metrics state.
type Snapshot struct {
	Enabled bool            `json:"enabled"`
	Started time.Time       `json:"started,omitempty"`
	Totals  Totals          `json:"totals"`
	Windows []WindowMetrics `json:"windows,omitempty"`
}

// NewCollector returns a collector with the provided opt-in state.
func NewCollector(enabled bool) *Collector {
	c := &Collector{}
	c.SetEnabled(enabled)
	return c
}

// Enabled reports whether telemetry collection is currently active.
func (c *Collector) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled toggles telemetry collection, resetting counters when enabling.
func (c *Collector) SetEnabled(enabled bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	if !enabled {
		c.windows = nil
		c.started = time.Time{}
		return
	}
	c.started = time.Now()
	c.windows = make(map[string]*WindowMetrics)
}

// Record increments the counter for kind on window.
func (c *Collector) Record(window string, kind Interaction) {
	c.update(window, func(m *WindowMetrics) {
		switch kind {
		case Drag:
			m.Drags++
		case Resize:
			m.Resizes++
		case Snap:
			m.Snaps++
		case Maximize:
			m.Maximizes++
		case Minimize:
			m.Minimizes++
		case Focus:
			m.Focuses++
		}
	})
}

// RecordSnap counts a snap into zone t.
func (c *Collector) RecordSnap(window string, t state.SnapType) {
	c.update(window, func(m *WindowMetrics) {
		m.Snaps++
		if m.SnapsByType == nil {
			m.SnapsByType = make(map[state.SnapType]uint64)
		}
		m.SnapsByType[t]++
	})
}

func (c *Collector) update(window string, mutate func(*WindowMetrics)) {
	if c == nil || mutate == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	if c.windows == nil {
		c.windows = make(map[string]*WindowMetrics)
	}
	metrics, exists := c.windows[window]
	if !exists {
		metrics = &WindowMetrics{Window: window}
		c.windows[window] = metrics
	}
	mutate(metrics)
	metrics.LastInteraction = now
}

// Snapshot returns the current counters for serialization or display.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{Enabled: c.enabled}
	if !c.enabled {
		return snap
	}
	snap.Started = c.started
	if len(c.windows) == 0 {
		return snap
	}
	snap.Windows = make([]WindowMetrics, 0, len(c.windows))
	for _, metrics := range c.windows {
		if metrics == nil {
			continue
		}
		clone := *metrics
		if metrics.SnapsByType != nil {
			clone.SnapsByType = make(map[state.SnapType]uint64, len(metrics.SnapsByType))
			for k, v := range metrics.SnapsByType {
				clone.SnapsByType[k] = v
			}
		}
		snap.Windows = append(snap.Windows, clone)
		snap.Totals.Drags += clone.Drags
		snap.Totals.Resizes += clone.Resizes
		snap.Totals.Snaps += clone.Snaps
		snap.Totals.Maximizes += clone.Maximizes
		snap.Totals.Minimizes += clone.Minimizes
		snap.Totals.Focuses += clone.Focuses
	}
	sort.Slice(snap.Windows, func(i, j int) bool {
		return snap.Windows[i].Window < snap.Windows[j].Window
	})
	return snap
}
