package client

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/essedev/doppia.os/internal/control"
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
)

func startTestServer(t *testing.T, handler func(net.Conn)) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "socket")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen on unix socket: %v", err)
	}
	go func() {
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handler(conn)
	}()
	return path
}

// respondTo serves a single request, checks its action and replies with resp.
func respondTo(t *testing.T, action string, resp control.Response, seen *control.Request) string {
	t.Helper()
	return startTestServer(t, func(conn net.Conn) {
		defer conn.Close()
		var req control.Request
		if err := json.NewDecoder(conn).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Action != action {
			t.Errorf("unexpected action %q", req.Action)
		}
		if seen != nil {
			*seen = req
		}
		if err := json.NewEncoder(conn).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})
}

func TestWindowsSuccess(t *testing.T) {
	records := []state.WindowRecord{{
		ID:       "wip",
		Name:     "WORK IN PROGRESS",
		Size:     layout.Size{W: 650, H: 400},
		Pos:      layout.Position{X: 20, Y: 70, Z: 0},
		Active:   true,
		SnapType: state.SnapNone,
	}}
	path := respondTo(t, control.ActionWindowsList, control.Response{
		Status: control.StatusOK,
		Data:   control.WindowList{Version: 4, Windows: records},
	}, nil)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	list, err := cli.Windows(context.Background())
	if err != nil {
		t.Fatalf("Windows returned error: %v", err)
	}
	if list.Version != 4 {
		t.Fatalf("expected version 4, got %d", list.Version)
	}
	if diff := cmp.Diff(records, list.Windows); diff != "" {
		t.Fatalf("unexpected windows (-want +got):\n%s", diff)
	}
}

func TestSnapSendsTypeParam(t *testing.T) {
	var seen control.Request
	path := respondTo(t, control.ActionWindowSnap, control.Response{Status: control.StatusOK}, &seen)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := cli.Snap(context.Background(), "about", state.SnapTopRight); err != nil {
		t.Fatalf("Snap returned error: %v", err)
	}
	if seen.Params["id"] != "about" || seen.Params["type"] != "top-right" {
		t.Fatalf("unexpected params: %#v", seen.Params)
	}
}

func TestSnapRejectsUnknownTypeLocally(t *testing.T) {
	cli, err := New(filepath.Join(t.TempDir(), "missing.sock"))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := cli.Snap(context.Background(), "about", state.SnapType("middle")); err == nil {
		t.Fatalf("expected error for unknown snap type")
	}
}

func TestWindowActionRequiresID(t *testing.T) {
	cli, err := New(filepath.Join(t.TempDir(), "missing.sock"))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := cli.Focus(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if err := cli.SetViewport(context.Background(), layout.Viewport{Width: -1, Height: 10}); err == nil {
		t.Fatalf("expected error for invalid viewport")
	}
}

func TestFocusServerError(t *testing.T) {
	path := respondTo(t, control.ActionWindowFocus, control.Response{Status: control.StatusError, Error: "unknown window"}, nil)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	err = cli.Focus(context.Background(), "ghost")
	if err == nil || err.Error() != "unknown window" {
		t.Fatalf("expected unknown window error, got %v", err)
	}
}

func TestMetricsSuccess(t *testing.T) {
	path := respondTo(t, control.ActionMetricsGet, control.Response{Status: control.StatusOK, Data: metrics.Snapshot{
		Enabled: true,
		Totals:  metrics.Totals{Drags: 2, Snaps: 1},
		Windows: []metrics.WindowMetrics{{
			Window:      "wip",
			Drags:       2,
			Snaps:       1,
			SnapsByType: map[state.SnapType]uint64{state.SnapLeft: 1},
		}},
	}}, nil)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	snapshot, err := cli.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if !snapshot.Enabled {
		t.Fatalf("expected telemetry enabled")
	}
	if snapshot.Totals.Drags != 2 || snapshot.Totals.Snaps != 1 {
		t.Fatalf("unexpected totals: %#v", snapshot.Totals)
	}
	if len(snapshot.Windows) != 1 || snapshot.Windows[0].SnapsByType[state.SnapLeft] != 1 {
		t.Fatalf("unexpected window metrics: %#v", snapshot.Windows)
	}
}

func TestStatusSuccess(t *testing.T) {
	path := respondTo(t, control.ActionStatus, control.Response{Status: control.StatusOK, Data: control.Status{
		Viewport:    layout.Viewport{Width: 1280, Height: 800},
		Offset:      10,
		NavHeight:   40,
		SnapEnabled: true,
		Windows:     5,
		Focused:     "wip",
	}}, nil)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	status, err := cli.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.Focused != "wip" || status.Windows != 5 || status.Viewport.Width != 1280 {
		t.Fatalf("unexpected status: %#v", status)
	}
}

func TestDialError(t *testing.T) {
	cli, err := New(filepath.Join(t.TempDir(), "missing.sock"))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := cli.Reload(context.Background()); err == nil {
		t.Fatalf("expected dial error")
	}
}
