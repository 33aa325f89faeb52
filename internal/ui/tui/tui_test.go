package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/essedev/doppia.os/internal/control/client"
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
)

type fakeSource struct {
	status  client.Status
	windows []state.WindowRecord
	metrics client.MetricsSnapshot
	err     error
}

func (f *fakeSource) Status(context.Context) (client.Status, error) {
	return f.status, f.err
}

func (f *fakeSource) Windows(context.Context) (client.WindowList, error) {
	return client.WindowList{Windows: f.windows}, nil
}

func (f *fakeSource) Metrics(context.Context) (client.MetricsSnapshot, error) {
	return f.metrics, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestRenderListsWindowsAndPreviews(t *testing.T) {
	src := &fakeSource{
		status: client.Status{Viewport: layout.Viewport{Width: 1000, Height: 800}, Offset: 10, NavHeight: 40, SnapEnabled: true, Focused: "wip"},
		windows: []state.WindowRecord{
			{ID: "about", Name: "About", Size: layout.Size{W: 650, H: 400}, Pos: layout.Position{X: 20, Y: 70, Z: 10}, SnapType: state.SnapNone},
			{ID: "wip", Name: "WORK IN PROGRESS", Size: layout.Size{W: 490, H: 740}, Pos: layout.Position{X: 10, Y: 50}, Active: true, SnapType: state.SnapLeft},
			{ID: "preview-wip-left", IsPreview: true, PreviewFor: "wip", Size: layout.Size{W: 490, H: 740}, Pos: layout.Position{X: 10, Y: 50, Z: 9999}},
		},
		metrics: metrics.Snapshot{Enabled: true, Totals: metrics.Totals{Drags: 3}},
	}
	r := New(src, nil)
	r.Now = fixedNow
	out := r.Render(context.Background())

	for _, want := range []string{
		"Viewport: 1000x800  offset 10  nav 40",
		"Focused: wip  snapping: on",
		"*wip",
		"490x740 @ 10,50",
		"left",
		"closed",
		"preview for wip: 490x740 @ 10,50",
		"drags 3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "*wip") > strings.Index(out, "about") {
		t.Fatalf("expected active windows before closed ones:\n%s", out)
	}
}

func TestRenderReportsErrors(t *testing.T) {
	r := New(&fakeSource{err: errors.New("dial control socket: no such file")}, nil)
	out := r.Render(context.Background())
	if !strings.Contains(out, "error: dial control socket") {
		t.Fatalf("expected error in output:\n%s", out)
	}
}

func TestTruncateUsesCellWidth(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "About", max: 10, want: "About"},
		{in: "Photopea editor", max: 8, want: "Photope…"},
		{in: "日本語のウィンドウ", max: 7, want: "日本語…"},
		{in: "anything", max: 0, want: ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestRunRequiresSource(t *testing.T) {
	r := &Renderer{}
	if err := r.Run(context.Background()); err == nil {
		t.Fatalf("expected error without source")
	}
}
