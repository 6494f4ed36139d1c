// Package livefeed implements the ground-support websocket
// broadcaster: one HTTP endpoint upgrades each client connection, and
// the aggregator pushes every emitted snapshot to all connected
// clients. Grounded on the teacher's calibration_handler.go upgrader
// pattern (websocket.Upgrader{CheckOrigin: ...}), useful on the bench
// before a radio link is available.
package livefeed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Niettzche/Rocket/internal/logging"
)

const (
	sourceTag    = "LIVEFEED"
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // ground-support bench tool, not exposed publicly
	},
}

// Feed is the broadcaster: an HTTP server with one upgrade endpoint
// and the set of currently connected clients.
type Feed struct {
	server *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// New constructs a Feed bound to addr, serving the upgrade endpoint at
// path. Call Start to begin serving.
func New(addr, path string) *Feed {
	f := &Feed{clients: make(map[*websocket.Conn]struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc(path, f.handleUpgrade)
	f.server = &http.Server{Addr: addr, Handler: mux}
	return f
}

// Start begins serving in the background. A bind failure is logged
// and leaves the feed permanently inert — matching the contingency
// every other optional sink in this system follows.
func (f *Feed) Start() {
	if f.server.Addr == "" {
		logging.Warn(sourceTag, "no bind address configured, live feed stubbed")
		return
	}
	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error(sourceTag, "server stopped: %v", err)
		}
	}()
}

func (f *Feed) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(sourceTag, "upgrade failed: %v", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = struct{}{}
	f.mu.Unlock()

	// Drain and discard any client reads; the protocol here is
	// server-push only. The read loop exists solely to detect the
	// client going away.
	go func() {
		defer f.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.clients, conn)
	f.mu.Unlock()
	conn.Close()
}

// Publish pushes payload to every connected client with a short write
// deadline. A failing client is dropped from the broadcast set; a
// failure here never blocks or fails the aggregator.
func (f *Feed) Publish(payload []byte) {
	f.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(f.clients))
	for c := range f.clients {
		conns = append(conns, c)
	}
	f.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			logging.Warn(sourceTag, "dropping client after write failure: %v", err)
			f.drop(c)
		}
	}
}

// Stop shuts down the HTTP server with a bounded grace period,
// matching the ambient sinks' context.Context-based shutdown idiom.
func (f *Feed) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	f.server.Shutdown(ctx)
}
