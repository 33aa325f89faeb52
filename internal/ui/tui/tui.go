package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/essedev/doppia.os/internal/control/client"
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
)

const (
	defaultRefresh = 500 * time.Millisecond
	nameWidth      = 24
)

// Source is the daemon state the dashboard polls. *client.Client satisfies it.
type Source interface {
	Status(ctx context.Context) (client.Status, error)
	Windows(ctx context.Context) (client.WindowList, error)
	Metrics(ctx context.Context) (client.MetricsSnapshot, error)
}

// Renderer periodically polls the daemon and renders a textual dashboard.
type Renderer struct {
	Source  Source
	Writer  io.Writer
	Refresh time.Duration
	Now     func() time.Time
}

// New returns a renderer configured with sensible defaults.
func New(src Source, w io.Writer) *Renderer {
	return &Renderer{Source: src, Writer: w, Refresh: defaultRefresh, Now: time.Now}
}

// Run starts the render loop until the context is cancelled.
func (r *Renderer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.Writer == nil {
		r.Writer = os.Stdout
	}
	if r.Source == nil {
		return fmt.Errorf("tui renderer requires a control client")
	}

	refresh := r.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	fmt.Fprint(r.Writer, "\033[?25l")
	defer fmt.Fprint(r.Writer, "\033[?25h")

	fmt.Fprint(r.Writer, r.Render(ctx))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fmt.Fprint(r.Writer, r.Render(ctx))
		}
	}
}

// Render produces one dashboard frame.
func (r *Renderer) Render(ctx context.Context) string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	var buf bytes.Buffer
	buf.WriteString("\033[H\033[2J")
	buf.WriteString("doppia desktop (Ctrl+C to exit)\n")
	buf.WriteString(now().Format(time.RFC1123))
	buf.WriteString("\n\n")

	status, err := r.Source.Status(ctx)
	if err != nil {
		buf.WriteString(fmt.Sprintf("error: %v\n", err))
		return buf.String()
	}
	buf.WriteString(formatStatus(status))
	buf.WriteByte('\n')

	list, err := r.Source.Windows(ctx)
	if err != nil {
		buf.WriteString(fmt.Sprintf("error: %v\n", err))
		return buf.String()
	}
	buf.WriteString(renderWindows(list.Windows))

	if snapshot, err := r.Source.Metrics(ctx); err == nil && snapshot.Enabled {
		buf.WriteString(renderMetrics(snapshot))
	}
	return buf.String()
}

func formatStatus(status client.Status) string {
	focused := status.Focused
	if focused == "" {
		focused = "(none)"
	}
	snapping := "off"
	if status.SnapEnabled {
		snapping = "on"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Viewport: %.0fx%.0f  offset %.0f  nav %.0f\n",
		status.Viewport.Width, status.Viewport.Height, status.Offset, status.NavHeight))
	b.WriteString(fmt.Sprintf("Focused: %s  snapping: %s  version: %d\n", focused, snapping, status.Version))
	return b.String()
}

func renderWindows(records []state.WindowRecord) string {
	var b strings.Builder
	b.WriteString("Windows:\n")
	windows := make([]state.WindowRecord, 0, len(records))
	var previews []state.WindowRecord
	for _, rec := range records {
		if rec.IsPreview {
			previews = append(previews, rec)
			continue
		}
		windows = append(windows, rec)
	}
	if len(windows) == 0 {
		b.WriteString("  (none)\n\n")
		return b.String()
	}
	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].Active != windows[j].Active {
			return windows[i].Active
		}
		return windows[i].Pos.Z > windows[j].Pos.Z
	})
	focused, hasFocus := state.Focused(records)
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tGeometry\tZ\tSnap\tState")
	for _, rec := range windows {
		id := rec.ID
		if hasFocus && rec.ID == focused.ID {
			id = "*" + id
		}
		name := rec.Name
		if name == "" {
			name = "(untitled)"
		}
		snapLabel := "-"
		if rec.Snapped() {
			snapLabel = string(rec.SnapType)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", id, truncate(name, nameWidth), formatRect(rec.Rect()), rec.Pos.Z, snapLabel, windowState(rec))
	}
	tw.Flush()
	for _, p := range previews {
		fmt.Fprintf(&b, "  preview for %s: %s\n", p.PreviewFor, formatRect(p.Rect()))
	}
	b.WriteByte('\n')
	return b.String()
}

func renderMetrics(snapshot client.MetricsSnapshot) string {
	var b strings.Builder
	t := snapshot.Totals
	b.WriteString("Interactions:\n")
	b.WriteString(fmt.Sprintf("  drags %d  resizes %d  snaps %d  maximizes %d  minimizes %d  focuses %d\n\n",
		t.Drags, t.Resizes, t.Snaps, t.Maximizes, t.Minimizes, t.Focuses))
	return b.String()
}

func formatRect(rect layout.Rect) string {
	return fmt.Sprintf("%.0fx%.0f @ %.0f,%.0f", rect.Width, rect.Height, rect.X, rect.Y)
}

// truncate fits s into max terminal cells.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= 1 {
		return runewidth.Truncate(s, max, "")
	}
	return runewidth.Truncate(s, max, "…")
}

func windowState(rec state.WindowRecord) string {
	var parts []string
	if !rec.Active {
		parts = append(parts, "closed")
	}
	if rec.IsMinimized {
		parts = append(parts, "minimized")
	}
	if rec.IsMaximized {
		parts = append(parts, "maximized")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
