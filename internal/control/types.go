package control

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
)

const (
	// SocketFileName is the filename of the control socket within the runtime dir.
	SocketFileName = "control.sock"

	// Action names supported by the control protocol.
	ActionStatus         = "status"
	ActionWindowsList    = "windows.list"
	ActionWindowFocus    = "window.focus"
	ActionWindowMinimize = "window.minimize"
	ActionWindowRestore  = "window.restore"
	ActionWindowMaximize = "window.maximize"
	ActionWindowSnap     = "window.snap"
	ActionWindowUnsnap   = "window.unsnap"
	ActionWindowOpen     = "window.open"
	ActionWindowClose    = "window.close"
	ActionViewportSet    = "viewport.set"
	ActionMetricsGet     = "metrics.get"
	ActionReload         = "reload"

	// Response statuses.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a control API request.
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Response represents a control API response.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Status summarizes the running desktop.
type Status struct {
	Viewport    layout.Viewport `json:"viewport"`
	Offset      float64         `json:"offset"`
	NavHeight   float64         `json:"navHeight"`
	SnapEnabled bool            `json:"snapEnabled"`
	Windows     int             `json:"windows"`
	Previews    int             `json:"previews"`
	Focused     string          `json:"focused,omitempty"`
	Version     uint64          `json:"version"`
}

// WindowList is the payload of windows.list.
type WindowList struct {
	Version uint64               `json:"version"`
	Windows []state.WindowRecord `json:"windows"`
}

// DefaultSocketPath returns the expected location of the doppia control socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv("DOPPIA_CONTROL_SOCKET"); env != "" {
		return env, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	base := runtimeDir
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "doppia", SocketFileName), nil
}
