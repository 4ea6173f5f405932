// Package adminws serves the read-only COOL telemetry surface of
// SPEC_FULL.md §2/§5: a websocket endpoint that periodically pushes a
// snapshot of every pre-registered login name's availability metrics.
//
// Grounded on gorilla/websocket's standard upgrade-then-pump pattern
// (teranos-QNTX/server/client.go's readPump/writePump split): one
// goroutine drains client-initiated control frames (close, pong), a
// second goroutine owns all writes to the connection.
package adminws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/steve-o/gomi/internal/cool"
	"github.com/steve-o/gomi/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Server upgrades GET /admin/cool connections and pushes a JSON COOL
// snapshot to every connected client at a fixed interval.
type Server struct {
	registry *cool.Registry
	log      logging.Logger
	now      func() time.Time
	interval time.Duration

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// New returns a Server pushing registry's snapshot every interval (or
// every 5 seconds if interval<=0).
func New(registry *cool.Registry, log logging.Logger, interval time.Duration) *Server {
	if log == nil {
		log = logging.Nop{}
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Server{
		registry: registry,
		log:      log,
		now:      time.Now,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// snapshotMessage is the wire shape of one push, keyed by login name.
type snapshotMessage struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Records   map[string]cool.Metrics `json:"records"`
}

// ServeHTTP upgrades the connection and runs its read/write pumps until
// the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("adminws: upgrade failed", "err", err)
		return
	}

	s.register(conn)
	defer s.unregister(conn)

	done := make(chan struct{})
	go s.readPump(conn, done)
	s.writePump(conn, done)
}

func (s *Server) register(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn] = struct{}{}
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// readPump discards control frames and exists only to observe the
// connection's close; adminws accepts no client-initiated messages.
func (s *Server) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(s.now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(s.now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns every write to conn: periodic COOL snapshots and
// keepalive pings, until done fires or a write fails.
func (s *Server) writePump(conn *websocket.Conn, done <-chan struct{}) {
	snapshotTicker := time.NewTicker(s.interval)
	pingTicker := time.NewTicker(pingPeriod)
	defer snapshotTicker.Stop()
	defer pingTicker.Stop()

	s.writeSnapshot(conn)

	for {
		select {
		case <-done:
			return
		case <-snapshotTicker.C:
			if err := s.writeSnapshot(conn); err != nil {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(s.now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn) error {
	now := s.now()
	msg := snapshotMessage{
		Type:      "cool_snapshot",
		Timestamp: now,
		Records:   s.registry.Snapshot(now),
	}
	conn.SetWriteDeadline(now.Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warn("adminws: snapshot write failed", "err", err)
		return err
	}
	return nil
}
