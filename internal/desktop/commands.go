package desktop

import (
	"fmt"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
)

// Focus brings a visible window to the front.
func (d *Desktop) Focus(id string) error {
	w, err := d.window(id)
	if err != nil {
		return err
	}
	rec, _ := w.record()
	if !rec.Active {
		return fmt.Errorf("window %q is closed", id)
	}
	if rec.IsMinimized {
		w.stack.RestoreFromMinimized()
		return nil
	}
	w.focus()
	return nil
}

// Minimize hides a window, abandoning any interaction in flight.
func (d *Desktop) Minimize(id string) error {
	w, err := d.window(id)
	if err != nil {
		return err
	}
	w.cancelInteraction()
	w.stack.MinimizeWindow()
	d.metrics.Record(id, metrics.Minimize)
	d.logger.Debugf("minimized %s", id)
	return nil
}

// Restore shows a minimized window and focuses it.
func (d *Desktop) Restore(id string) error {
	w, err := d.window(id)
	if err != nil {
		return err
	}
	w.stack.RestoreFromMinimized()
	return nil
}

// ToggleMaximize maximizes or restores a window. A drag in flight is dropped.
func (d *Desktop) ToggleMaximize(id string) error {
	w, err := d.window(id)
	if err != nil {
		return err
	}
	w.cancelInteraction()
	vw, vh := d.viewportSize()
	w.stack.ToggleMaximize(vw, vh)
	if rec, ok := w.record(); ok && rec.IsMaximized {
		d.metrics.Record(id, metrics.Maximize)
	}
	return nil
}

// Snap docks a window into zone t without a drag. SnapNone unsnaps.
func (d *Desktop) Snap(id string, t state.SnapType) error {
	w, err := d.window(id)
	if err != nil {
		return err
	}
	if t == state.SnapNone {
		return d.Unsnap(id)
	}
	w.cancelInteraction()
	rec, _ := w.record()
	temp := state.PreviousSizeOf(rec.Rect())
	if rec.PreviousSize != nil {
		temp = *rec.PreviousSize
	}
	vw, vh := d.viewportSize()
	w.snap.ApplySnap(t, vw, vh, temp)
	w.focus()
	d.metrics.RecordSnap(id, t)
	return nil
}

// Unsnap returns a snapped or maximized window to its floating geometry.
func (d *Desktop) Unsnap(id string) error {
	w, err := d.window(id)
	if err != nil {
		return err
	}
	w.cancelInteraction()
	w.snap.RestoreFromSnap()
	return nil
}

// Open activates a window and focuses it.
func (d *Desktop) Open(id string) error {
	w, err := d.window(id)
	if err != nil {
		return err
	}
	w.stack.Open()
	return nil
}

// CloseWindow deactivates a window.
func (d *Desktop) CloseWindow(id string) error {
	w, err := d.window(id)
	if err != nil {
		return err
	}
	w.cancelInteraction()
	w.stack.Close()
	return nil
}

// SetViewport resizes the page and refits docked, maximized and overflowing
// windows.
func (d *Desktop) SetViewport(vp layout.Viewport) error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return fmt.Errorf("invalid viewport %vx%v", vp.Width, vp.Height)
	}
	d.params.Viewport = vp
	d.vp.SetSize(vp)
	d.refit()
	d.logger.Infof("viewport resized to %vx%v", vp.Width, vp.Height)
	return nil
}

// SetMargins updates the offset and navigation bar height.
func (d *Desktop) SetMargins(m layout.Margins) {
	d.params.Margins = m
	for _, id := range d.order {
		d.windows[id].setMargins(m)
	}
	d.refit()
}

// SetSnapEnabled toggles snap zone detection during drags.
func (d *Desktop) SetSnapEnabled(enabled bool) {
	d.params.SnapEnabled = enabled
}

func (d *Desktop) refit() {
	vw, vh := d.viewportSize()
	usable := layout.UsableArea(d.params.Viewport, d.params.Margins)
	for _, id := range d.order {
		w := d.windows[id]
		rec, ok := w.record()
		if !ok || !rec.Active {
			continue
		}
		w.cancelInteraction()
		switch {
		case rec.Snapped() && rec.PreviousSize != nil:
			w.snap.ApplySnap(rec.SnapType, vw, vh, *rec.PreviousSize)
		case rec.IsMaximized:
			d.store.UpdateRecord(id, func(r *state.WindowRecord) {
				r.SetRect(usable)
			})
		default:
			w.stack.CheckOverflow(vw, vh)
		}
	}
}
