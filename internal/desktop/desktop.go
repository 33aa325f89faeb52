package desktop

import (
	"context"
	"errors"
	"fmt"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
	"github.com/essedev/doppia.os/internal/util"
)

// TitleBarHeight is the height of the drag handle at the top of each window.
const TitleBarHeight = 32

var (
	// ErrUnknownWindow is returned by commands naming a window that does not exist.
	ErrUnknownWindow = errors.New("unknown window")
	// ErrStopped is returned by Do once the event loop has exited.
	ErrStopped = errors.New("desktop stopped")
)

// Params configure the page.
type Params struct {
	Viewport    layout.Viewport
	Margins     layout.Margins
	SnapEnabled bool
}

type command struct {
	fn   func() error
	done chan error
}

// Desktop binds the interaction controllers of every window to the shared
// store. All methods except Do, Run and Windows must be called from the
// goroutine running Run, or before Run starts.
type Desktop struct {
	store   *state.Store
	vp      *surface.Viewport
	logger  *util.Logger
	metrics *metrics.Collector

	params  Params
	windows map[string]*Window
	order   []string

	cmds        chan command
	stopped     chan struct{}
	unsubscribe func()
}

// New creates a desktop for every non-preview record in store.
func New(store *state.Store, logger *util.Logger, collector *metrics.Collector, params Params) *Desktop {
	d := &Desktop{
		store:   store,
		vp:      surface.NewViewport(params.Viewport),
		logger:  logger,
		metrics: collector,
		params:  params,
		windows: make(map[string]*Window),
		cmds:    make(chan command),
		stopped: make(chan struct{}),
	}
	for _, rec := range store.Snapshot() {
		if rec.IsPreview {
			continue
		}
		d.windows[rec.ID] = d.newWindow(rec)
		d.order = append(d.order, rec.ID)
	}
	d.unsubscribe = store.Subscribe(d.sync)
	return d
}

// Viewport exposes the page that native input is delivered to.
func (d *Desktop) Viewport() *surface.Viewport {
	return d.vp
}

// Store returns the shared window collection.
func (d *Desktop) Store() *state.Store {
	return d.store
}

// Params returns the current page configuration.
func (d *Desktop) Params() Params {
	return d.params
}

// Windows returns a snapshot of every record, previews included. It is safe
// to call from any goroutine.
func (d *Desktop) Windows() []state.WindowRecord {
	return d.store.Snapshot()
}

// Window returns the binding for id.
func (d *Desktop) Window(id string) (*Window, bool) {
	w, ok := d.windows[id]
	return w, ok
}

// Deliver routes native input through the page.
func (d *Desktop) Deliver(ev *surface.Event) {
	if !ev.Type.IsNative() {
		d.logger.Debugf("ignoring non-native input %q", ev.Type)
		return
	}
	d.vp.Deliver(ev)
}

// Run consumes input and queued commands until ctx is done.
func (d *Desktop) Run(ctx context.Context, input <-chan *surface.Event) error {
	defer close(d.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-input:
			if !ok {
				return fmt.Errorf("input stream closed")
			}
			d.trace("input.received", map[string]any{
				"type": ev.Type,
				"x":    ev.X,
				"y":    ev.Y,
			})
			d.Deliver(ev)
		case cmd := <-d.cmds:
			cmd.done <- cmd.fn()
		}
	}
}

// Do runs fn on the event loop and returns its error.
func (d *Desktop) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case d.cmds <- command{fn: fn, done: done}:
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close detaches every controller and the store subscription.
func (d *Desktop) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
	for _, id := range d.order {
		d.windows[id].destroy()
	}
}

func (d *Desktop) window(id string) (*Window, error) {
	w, ok := d.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownWindow, id)
	}
	return w, nil
}

// sync mirrors published records onto the page.
func (d *Desktop) sync(records []state.WindowRecord) {
	for _, rec := range records {
		if rec.IsPreview {
			continue
		}
		if w, ok := d.windows[rec.ID]; ok {
			w.apply(rec)
		}
	}
}

func (d *Desktop) viewportSize() (float64, float64) {
	return d.params.Viewport.Width, d.params.Viewport.Height
}

func (d *Desktop) trace(event string, fields map[string]any) {
	if d.logger == nil || !d.logger.Enabled(util.LevelTrace) {
		return
	}
	d.logger.Tracef("%s %s", event, formatTraceFields(fields))
}
