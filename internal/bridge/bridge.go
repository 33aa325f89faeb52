// Package bridge mirrors the window store to browser clients over WebSocket
// and feeds their pointer input back into the desktop loop.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
	"github.com/essedev/doppia.os/internal/util"
)

// Message types exchanged with clients.
const (
	TypeSnapshot = "snapshot"
	TypePointer  = "pointer"
	TypeViewport = "viewport"
	TypeError    = "error"
)

// Desktop is the part of the desktop the bridge drives outside the input
// stream.
type Desktop interface {
	Do(ctx context.Context, fn func() error) error
	SetViewport(vp layout.Viewport) error
}

// Snapshot is the frame broadcast after every store update.
type Snapshot struct {
	Type    string               `json:"type"`
	Version uint64               `json:"version"`
	Windows []state.WindowRecord `json:"windows"`
}

// Inbound is a client frame. Pointer frames carry Kind and coordinates;
// viewport frames carry W and H.
type Inbound struct {
	Type           string            `json:"type"`
	Kind           surface.EventType `json:"kind,omitempty"`
	X              float64           `json:"x"`
	Y              float64           `json:"y"`
	Button         int               `json:"button"`
	Touches        []layout.Point    `json:"touches,omitempty"`
	ChangedTouches []layout.Point    `json:"changedTouches,omitempty"`
	W              float64           `json:"w,omitempty"`
	H              float64           `json:"h,omitempty"`
}

// Event converts a pointer frame into native input.
func (m Inbound) Event() (*surface.Event, error) {
	if !m.Kind.IsNative() {
		return nil, fmt.Errorf("unsupported pointer kind %q", m.Kind)
	}
	return &surface.Event{
		Type:           m.Kind,
		X:              m.X,
		Y:              m.Y,
		Button:         m.Button,
		Touches:        m.Touches,
		ChangedTouches: m.ChangedTouches,
	}, nil
}

// Server exposes the store over /ws and a liveness probe over /healthz.
type Server struct {
	addr     string
	store    *state.Store
	desktop  Desktop
	input    chan<- *surface.Event
	logger   *util.Logger
	hub      *hub
	upgrader websocket.Upgrader
}

// New creates a bridge. Pointer frames are pushed into input, which the
// desktop loop consumes.
func New(addr string, store *state.Store, desktop Desktop, input chan<- *surface.Event, logger *util.Logger) *Server {
	return &Server{
		addr:    addr,
		store:   store,
		desktop: desktop,
		input:   input,
		logger:  logger,
		hub:     newHub(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the bridge routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "ok")
	})
	return mux
}

// Publish broadcasts the store's current snapshot to every client.
func (s *Server) Publish() {
	payload, err := s.encodeSnapshot(s.store.Snapshot())
	if err != nil {
		s.logger.Errorf("encode snapshot: %v", err)
		return
	}
	s.hub.Broadcast(payload)
}

// Run serves the bridge until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	unsubscribe := s.store.Subscribe(func(records []state.WindowRecord) {
		payload, err := s.encodeSnapshot(records)
		if err != nil {
			s.logger.Errorf("encode snapshot: %v", err)
			return
		}
		s.hub.Broadcast(payload)
	})
	defer unsubscribe()

	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.hub.Close()
	}()
	s.logger.Infof("bridge listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("bridge listen: %w", err)
	}
	return nil
}

// Clients reports the number of connected clients.
func (s *Server) Clients() int {
	return s.hub.Len()
}

func (s *Server) encodeSnapshot(records []state.WindowRecord) ([]byte, error) {
	if records == nil {
		records = []state.WindowRecord{}
	}
	return json.Marshal(Snapshot{Type: TypeSnapshot, Version: s.store.Version(), Windows: records})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("upgrade bridge websocket: %v", err)
		return
	}
	c := newClient(conn, s.logger)
	s.logger.Debugf("bridge client %s connected from %s", c.id, r.RemoteAddr)
	if payload, err := s.encodeSnapshot(s.store.Snapshot()); err == nil {
		c.send <- payload
	}
	s.hub.Register(c)
	go c.writeLoop()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	c.readLoop(func(data []byte) {
		if err := s.dispatch(ctx, data); err != nil {
			s.logger.Warnf("bridge client %s: %v", c.id, err)
			c.reply(TypeError, err)
		}
	}, func() {
		s.hub.Unregister(c)
		s.logger.Debugf("bridge client %s disconnected", c.id)
	})
}

func (s *Server) dispatch(ctx context.Context, data []byte) error {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	switch msg.Type {
	case TypePointer:
		ev, err := msg.Event()
		if err != nil {
			return err
		}
		select {
		case s.input <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	case TypeViewport:
		vp := layout.Viewport{Width: msg.W, Height: msg.H}
		return s.desktop.Do(ctx, func() error { return s.desktop.SetViewport(vp) })
	default:
		return fmt.Errorf("unknown frame type %q", msg.Type)
	}
}

type hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *util.Logger
}

func newHub(logger *util.Logger) *hub {
	return &hub{clients: make(map[*client]struct{}), logger: logger}
}

func (h *hub) Register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) Unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.Close()
}

func (h *hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Infof("dropping bridge client %s for slow reader", c.id)
			go h.Unregister(c)
		}
	}
}

func (h *hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	maxFrameSize = 4096
)

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	logger *util.Logger

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func newClient(conn *websocket.Conn, logger *util.Logger) *client {
	return &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logger,
	}
}

func (c *client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.logger.Errorf("write bridge websocket message: %v", err)
			return
		}
	}
}

func (c *client) readLoop(onMessage func([]byte), onClose func()) {
	defer func() {
		if onClose != nil {
			onClose()
		}
	}()
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		onMessage(data)
	}
}

// reply queues an error frame unless the client is already closed.
func (c *client) reply(kind string, err error) {
	payload, mErr := json.Marshal(map[string]string{"type": kind, "error": err.Error()})
	if mErr != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *client) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
