package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/essedev/doppia.os/internal/desktop"
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/util"
)

// Backend is the part of the desktop driven by the control API. Mutating
// calls are funneled through Do so they run on the event loop.
type Backend interface {
	Store() *state.Store
	Params() desktop.Params
	Do(ctx context.Context, fn func() error) error

	Focus(id string) error
	Minimize(id string) error
	Restore(id string) error
	ToggleMaximize(id string) error
	Snap(id string, t state.SnapType) error
	Unsnap(id string) error
	Open(id string) error
	CloseWindow(id string) error
	SetViewport(vp layout.Viewport) error
}

// Server hosts the doppia control socket and serves requests.
type Server struct {
	backend    Backend
	metrics    *metrics.Collector
	logger     *util.Logger
	reload     func(reason string) error
	socketPath string

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new control server. An empty socketPath selects
// DefaultSocketPath.
func NewServer(backend Backend, collector *metrics.Collector, logger *util.Logger, reload func(reason string) error, socketPath string) (*Server, error) {
	if socketPath == "" {
		path, err := DefaultSocketPath()
		if err != nil {
			return nil, err
		}
		socketPath = path
	}
	return &Server{
		backend:    backend,
		metrics:    collector,
		logger:     logger,
		reload:     reload,
		socketPath: socketPath,
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Serve listens on the control socket until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.prepareSocket(); err != nil {
		return err
	}
	s.logger.Infof("control server listening on %s", s.socketPath)
	defer s.cleanup()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := s.accept(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			s.logger.Errorf("control accept error: %v", err)
			continue
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil, context.Canceled
	}
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

func (s *Server) prepareSocket() error {
	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create control dir: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("chmod control socket: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *Server) cleanup() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()
	if listener != nil {
		listener.Close()
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warnf("remove control socket: %v", err)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	var req Request
	if err := dec.Decode(&req); err != nil {
		s.writeError(conn, fmt.Errorf("decode request: %w", err))
		return
	}
	s.logger.Debugf("control request %s", req.Action)
	switch req.Action {
	case ActionStatus:
		s.handleStatus(ctx, conn)
	case ActionWindowsList:
		s.handleWindowsList(conn)
	case ActionWindowFocus:
		s.handleWindow(ctx, conn, req.Params, s.backend.Focus)
	case ActionWindowMinimize:
		s.handleWindow(ctx, conn, req.Params, s.backend.Minimize)
	case ActionWindowRestore:
		s.handleWindow(ctx, conn, req.Params, s.backend.Restore)
	case ActionWindowMaximize:
		s.handleWindow(ctx, conn, req.Params, s.backend.ToggleMaximize)
	case ActionWindowUnsnap:
		s.handleWindow(ctx, conn, req.Params, s.backend.Unsnap)
	case ActionWindowOpen:
		s.handleWindow(ctx, conn, req.Params, s.backend.Open)
	case ActionWindowClose:
		s.handleWindow(ctx, conn, req.Params, s.backend.CloseWindow)
	case ActionWindowSnap:
		s.handleSnap(ctx, conn, req.Params)
	case ActionViewportSet:
		s.handleViewportSet(ctx, conn, req.Params)
	case ActionMetricsGet:
		s.writeOK(conn, s.metrics.Snapshot())
	case ActionReload:
		s.handleReload(conn)
	default:
		s.writeError(conn, fmt.Errorf("unknown action %q", req.Action))
	}
}

func (s *Server) handleStatus(ctx context.Context, conn net.Conn) {
	var params desktop.Params
	if err := s.backend.Do(ctx, func() error {
		params = s.backend.Params()
		return nil
	}); err != nil {
		s.writeError(conn, err)
		return
	}
	store := s.backend.Store()
	records := store.Snapshot()
	status := Status{
		Version:     store.Version(),
		Viewport:    params.Viewport,
		Offset:      params.Margins.Offset,
		NavHeight:   params.Margins.NavHeight,
		SnapEnabled: params.SnapEnabled,
	}
	for _, r := range records {
		if r.IsPreview {
			status.Previews++
			continue
		}
		status.Windows++
	}
	if focused, ok := state.Focused(records); ok {
		status.Focused = focused.ID
	}
	s.writeOK(conn, status)
}

func (s *Server) handleWindowsList(conn net.Conn) {
	store := s.backend.Store()
	s.writeOK(conn, WindowList{Version: store.Version(), Windows: store.Snapshot()})
}

func windowID(params map[string]any) (string, error) {
	id, _ := params["id"].(string)
	if id == "" {
		return "", errors.New("missing window id")
	}
	return id, nil
}

func (s *Server) handleWindow(ctx context.Context, conn net.Conn, params map[string]any, op func(string) error) {
	id, err := windowID(params)
	if err != nil {
		s.writeError(conn, err)
		return
	}
	if err := s.backend.Do(ctx, func() error { return op(id) }); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, nil)
}

func (s *Server) handleSnap(ctx context.Context, conn net.Conn, params map[string]any) {
	id, err := windowID(params)
	if err != nil {
		s.writeError(conn, err)
		return
	}
	raw, _ := params["type"].(string)
	t, err := state.ParseSnapType(raw)
	if err != nil {
		s.writeError(conn, err)
		return
	}
	if err := s.backend.Do(ctx, func() error { return s.backend.Snap(id, t) }); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, nil)
}

func (s *Server) handleViewportSet(ctx context.Context, conn net.Conn, params map[string]any) {
	w, _ := params["width"].(float64)
	h, _ := params["height"].(float64)
	vp := layout.Viewport{Width: w, Height: h}
	if err := s.backend.Do(ctx, func() error { return s.backend.SetViewport(vp) }); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, nil)
}

func (s *Server) handleReload(conn net.Conn) {
	if s.reload == nil {
		s.writeError(conn, errors.New("reload not supported"))
		return
	}
	if err := s.reload("control request"); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, nil)
}

func (s *Server) writeOK(conn net.Conn, data any) {
	resp := Response{Status: StatusOK}
	if data != nil {
		resp.Data = data
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

func (s *Server) writeError(conn net.Conn, err error) {
	resp := Response{Status: StatusError}
	if err != nil {
		resp.Error = err.Error()
	}
	_ = json.NewEncoder(conn).Encode(resp)
}
