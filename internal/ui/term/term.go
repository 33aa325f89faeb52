// Package term renders the desktop into a terminal and turns terminal mouse
// input into native pointer events.
package term

import (
	"context"
	"errors"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
	"github.com/essedev/doppia.os/internal/util"
)

// Pixel size of one terminal cell.
const (
	CellWidth  = 8
	CellHeight = 16
)

var errQuit = errors.New("quit")

// Desktop is the part of the desktop the frontend drives outside the input
// stream.
type Desktop interface {
	Do(ctx context.Context, fn func() error) error
	SetViewport(vp layout.Viewport) error
}

var (
	frameStyle   = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorBlack)
	titleStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	focusStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy).Bold(true)
	previewStyle = tcell.StyleDefault.Foreground(tcell.ColorTeal)
)

// Frontend owns a tcell screen.
type Frontend struct {
	screen  tcell.Screen
	store   *state.Store
	input   chan<- *surface.Event
	logger  *util.Logger
	buttons tcell.ButtonMask
}

// New creates a frontend. Mouse events are pushed into input.
func New(screen tcell.Screen, store *state.Store, input chan<- *surface.Event, logger *util.Logger) *Frontend {
	return &Frontend{screen: screen, store: store, input: input, logger: logger}
}

// ViewportFor converts a terminal size in cells into a page size in pixels.
func ViewportFor(cols, rows int) layout.Viewport {
	return layout.Viewport{Width: float64(cols * CellWidth), Height: float64(rows * CellHeight)}
}

// cellCenter maps a cell to the pixel at its center.
func cellCenter(x, y int) (float64, float64) {
	return float64(x*CellWidth + CellWidth/2), float64(y*CellHeight + CellHeight/2)
}

// Translate converts a terminal mouse report into a native pointer event by
// diffing the primary button against the previous report.
func (f *Frontend) Translate(ev *tcell.EventMouse) (*surface.Event, bool) {
	x, y := ev.Position()
	px, py := cellCenter(x, y)
	buttons := ev.Buttons()
	prev := f.buttons
	f.buttons = buttons

	pressed := buttons&tcell.Button1 != 0
	wasPressed := prev&tcell.Button1 != 0
	switch {
	case pressed && !wasPressed:
		return &surface.Event{Type: surface.MouseDown, X: px, Y: py, Button: surface.PrimaryButton}, true
	case !pressed && wasPressed:
		return &surface.Event{Type: surface.MouseUp, X: px, Y: py, Button: surface.PrimaryButton}, true
	case buttons&(tcell.WheelUp|tcell.WheelDown|tcell.WheelLeft|tcell.WheelRight) != 0:
		return nil, false
	}
	return &surface.Event{Type: surface.MouseMove, X: px, Y: py}, true
}

// Run draws the store and forwards input until ctx is done or the user quits
// with q, Esc or Ctrl+C.
func (f *Frontend) Run(ctx context.Context, desk Desktop) error {
	if err := f.screen.Init(); err != nil {
		return err
	}
	defer f.screen.Fini()
	f.screen.EnableMouse()

	quit := make(chan struct{})
	defer close(quit)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := f.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	redraw := make(chan struct{}, 1)
	unsubscribe := f.store.Subscribe(func([]state.WindowRecord) {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	if err := f.resize(ctx, desk); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-redraw:
			f.Draw(f.store.Snapshot())
		case ev := <-events:
			if err := f.handle(ctx, desk, ev); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func (f *Frontend) handle(ctx context.Context, desk Desktop, ev tcell.Event) error {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if e.Key() == tcell.KeyCtrlC || e.Key() == tcell.KeyEscape || (e.Key() == tcell.KeyRune && e.Rune() == 'q') {
			return errQuit
		}
	case *tcell.EventResize:
		f.screen.Sync()
		return f.resize(ctx, desk)
	case *tcell.EventMouse:
		out, ok := f.Translate(e)
		if !ok {
			return nil
		}
		select {
		case f.input <- out:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *Frontend) resize(ctx context.Context, desk Desktop) error {
	cols, rows := f.screen.Size()
	vp := ViewportFor(cols, rows)
	if err := desk.Do(ctx, func() error { return desk.SetViewport(vp) }); err != nil {
		return err
	}
	f.logger.Debugf("terminal viewport %dx%d cells (%vx%v)", cols, rows, vp.Width, vp.Height)
	f.Draw(f.store.Snapshot())
	return nil
}

// Draw paints records bottom to top. Previews are drawn as an outline.
func (f *Frontend) Draw(records []state.WindowRecord) {
	f.screen.Clear()
	ordered := make([]state.WindowRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsPreview || rec.Visible() {
			ordered = append(ordered, rec)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Pos.Z < ordered[j].Pos.Z })
	focused, hasFocus := state.Focused(records)
	for _, rec := range ordered {
		if rec.IsPreview {
			f.drawOutline(rec.Rect(), previewStyle)
			continue
		}
		title := titleStyle
		if hasFocus && rec.ID == focused.ID {
			title = focusStyle
		}
		f.drawWindow(rec, title)
	}
	f.screen.Show()
}

func cellBounds(r layout.Rect) (x0, y0, x1, y1 int) {
	x0 = int(r.X) / CellWidth
	y0 = int(r.Y) / CellHeight
	x1 = int(r.X+r.Width)/CellWidth - 1
	y1 = int(r.Y+r.Height)/CellHeight - 1
	return
}

func (f *Frontend) drawWindow(rec state.WindowRecord, title tcell.Style) {
	x0, y0, x1, y1 := cellBounds(rec.Rect())
	if x1 < x0 || y1 < y0 {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			f.screen.SetContent(x, y, ' ', nil, frameStyle)
		}
	}
	f.drawOutline(rec.Rect(), frameStyle)
	for x := x0 + 1; x < x1; x++ {
		f.screen.SetContent(x, y0, ' ', nil, title)
	}
	name := rec.Name
	if name == "" {
		name = rec.ID
	}
	f.drawText(x0+1, y0, x1-x0-1, name, title)
}

func (f *Frontend) drawOutline(r layout.Rect, style tcell.Style) {
	x0, y0, x1, y1 := cellBounds(r)
	if x1 <= x0 || y1 <= y0 {
		return
	}
	for x := x0 + 1; x < x1; x++ {
		f.screen.SetContent(x, y0, tcell.RuneHLine, nil, style)
		f.screen.SetContent(x, y1, tcell.RuneHLine, nil, style)
	}
	for y := y0 + 1; y < y1; y++ {
		f.screen.SetContent(x0, y, tcell.RuneVLine, nil, style)
		f.screen.SetContent(x1, y, tcell.RuneVLine, nil, style)
	}
	f.screen.SetContent(x0, y0, tcell.RuneULCorner, nil, style)
	f.screen.SetContent(x1, y0, tcell.RuneURCorner, nil, style)
	f.screen.SetContent(x0, y1, tcell.RuneLLCorner, nil, style)
	f.screen.SetContent(x1, y1, tcell.RuneLRCorner, nil, style)
}

// drawText writes s starting at (x, y), clipped to width cells.
func (f *Frontend) drawText(x, y, width int, s string, style tcell.Style) {
	if width <= 0 {
		return
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	for _, r := range s {
		f.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}
