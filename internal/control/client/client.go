package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/essedev/doppia.os/internal/control"
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
)

const (
	// defaultTimeout is used when the caller does not provide a context deadline.
	defaultTimeout = 3 * time.Second
)

// Client talks to the running doppia daemon over its control socket.
type Client struct {
	socketPath string
}

type (
	// Status mirrors the daemon status payload.
	Status = control.Status
	// WindowList mirrors the windows.list payload.
	WindowList = control.WindowList
	// MetricsSnapshot mirrors the interaction counters returned by the daemon.
	MetricsSnapshot = metrics.Snapshot
)

// New creates a client that connects to the provided socket path. When path is
// empty, the default runtime path is used.
func New(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = control.DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Client{socketPath: path}, nil
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Status retrieves the daemon's viewport, margins and focus summary.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var status Status
	if err := c.do(ctx, control.Request{Action: control.ActionStatus}, &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// Windows retrieves the current window records, previews included.
func (c *Client) Windows(ctx context.Context) (WindowList, error) {
	var list WindowList
	if err := c.do(ctx, control.Request{Action: control.ActionWindowsList}, &list); err != nil {
		return WindowList{}, err
	}
	return list, nil
}

// Focus brings a window to the front, restoring it when minimized.
func (c *Client) Focus(ctx context.Context, id string) error {
	return c.windowAction(ctx, control.ActionWindowFocus, id, nil)
}

// Minimize hides a window.
func (c *Client) Minimize(ctx context.Context, id string) error {
	return c.windowAction(ctx, control.ActionWindowMinimize, id, nil)
}

// Restore shows a minimized window again.
func (c *Client) Restore(ctx context.Context, id string) error {
	return c.windowAction(ctx, control.ActionWindowRestore, id, nil)
}

// ToggleMaximize maximizes a floating window or restores a maximized one.
func (c *Client) ToggleMaximize(ctx context.Context, id string) error {
	return c.windowAction(ctx, control.ActionWindowMaximize, id, nil)
}

// Snap docks a window into the named zone.
func (c *Client) Snap(ctx context.Context, id string, t state.SnapType) error {
	if _, err := state.ParseSnapType(string(t)); err != nil {
		return err
	}
	return c.windowAction(ctx, control.ActionWindowSnap, id, map[string]any{"type": string(t)})
}

// Unsnap returns a docked window to its floating geometry.
func (c *Client) Unsnap(ctx context.Context, id string) error {
	return c.windowAction(ctx, control.ActionWindowUnsnap, id, nil)
}

// Open activates a catalog window.
func (c *Client) Open(ctx context.Context, id string) error {
	return c.windowAction(ctx, control.ActionWindowOpen, id, nil)
}

// CloseWindow deactivates a window.
func (c *Client) CloseWindow(ctx context.Context, id string) error {
	return c.windowAction(ctx, control.ActionWindowClose, id, nil)
}

// SetViewport resizes the daemon's page.
func (c *Client) SetViewport(ctx context.Context, vp layout.Viewport) error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return fmt.Errorf("invalid viewport %vx%v", vp.Width, vp.Height)
	}
	params := map[string]any{"width": vp.Width, "height": vp.Height}
	return c.do(ctx, control.Request{Action: control.ActionViewportSet, Params: params}, nil)
}

// Metrics retrieves the interaction counters.
func (c *Client) Metrics(ctx context.Context) (MetricsSnapshot, error) {
	var snapshot MetricsSnapshot
	if err := c.do(ctx, control.Request{Action: control.ActionMetricsGet}, &snapshot); err != nil {
		return MetricsSnapshot{}, err
	}
	return snapshot, nil
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionReload}, nil)
}

func (c *Client) windowAction(ctx context.Context, action, id string, extra map[string]any) error {
	if id == "" {
		return errors.New("window id cannot be empty")
	}
	params := map[string]any{"id": id}
	for k, v := range extra {
		params[k] = v
	}
	return c.do(ctx, control.Request{Action: action, Params: params}, nil)
}

func (c *Client) do(ctx context.Context, req control.Request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	var resp control.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != control.StatusOK {
		if resp.Error == "" {
			resp.Error = "unknown control error"
		}
		return errors.New(resp.Error)
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
