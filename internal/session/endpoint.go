// Package session owns the websocket endpoint: upgrading, heartbeat frame
// parsing, and connection lifecycle against the presence registry.
package session

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dm-relay/backend/internal/presence"
	userrepository "dm-relay/backend/internal/user/repository"
)

// transport is the subset of *websocket.Conn the endpoint uses, split out so
// the frame loop can be driven by a fake in tests.
type transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// wsConn adapts a websocket transport to presence.Conn. Writes are serialized
// with a mutex because gorilla/websocket allows only one concurrent writer.
type wsConn struct {
	id string
	mu sync.Mutex
	t  transport
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) WriteText(payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t.WriteMessage(websocket.TextMessage, []byte(payload))
}

// Endpoint upgrades GET /ws requests and consumes heartbeat frames of the
// form "<userId>,<userName>" until the peer closes the connection.
type Endpoint struct {
	registry *presence.Registry
	tracker  *presence.HeartbeatTracker
	users    userrepository.Repository
	upgrader websocket.Upgrader
	now      func() time.Time
}

// NewEndpoint builds the websocket endpoint.
func NewEndpoint(registry *presence.Registry, tracker *presence.HeartbeatTracker, users userrepository.Repository) *Endpoint {
	return &Endpoint{
		registry: registry,
		tracker:  tracker,
		users:    users,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins; there is no
			// cookie-based auth to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		now: time.Now,
	}
}

// ServeHTTP upgrades the request and runs the frame loop until close.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		log.Printf("session: upgrade failed: %v", err)
		return
	}
	e.serve(r.Context(), ws)
}

// serve consumes frames until the transport errors, then deregisters the
// connection exactly once.
func (e *Endpoint) serve(ctx context.Context, t transport) {
	conn := &wsConn{id: uuid.NewString(), t: t}
	defer func() {
		e.registry.Deregister(conn)
		if err := t.Close(); err != nil {
			log.Printf("session: close conn %s: %v", conn.id, err)
		}
	}()

	for {
		msgType, payload, err := t.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("session: conn %s closed: %v", conn.id, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		userID, userName, err := parseHeartbeat(string(payload))
		if err != nil {
			// A malformed frame never tears down the connection.
			log.Printf("session: conn %s: %v", conn.id, err)
			continue
		}
		e.heartbeat(ctx, conn, userID, userName)
	}
}

// heartbeat applies one identified frame: live-connection registration,
// in-memory liveness, and the durable last-seen timestamp.
func (e *Endpoint) heartbeat(ctx context.Context, conn *wsConn, userID int64, userName string) {
	now := e.now().UTC()
	e.registry.Register(userID, conn)
	e.tracker.Touch(userID, userName, now)
	if _, err := e.users.UpsertHeartbeat(ctx, userID, userName, now); err != nil {
		// In-memory presence already advanced; durability catches up on the
		// next frame.
		log.Printf("session: persist heartbeat for user %d: %v", userID, err)
	}
}

// parseHeartbeat splits a "<userId>,<userName>" frame. The name may itself
// contain commas; only the first comma separates the fields.
func parseHeartbeat(payload string) (int64, string, error) {
	idPart, name, ok := strings.Cut(payload, ",")
	if !ok {
		return 0, "", fmt.Errorf("malformed heartbeat frame %q", payload)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed heartbeat user id %q", idPart)
	}
	name = strings.TrimSpace(name)
	if id <= 0 || name == "" {
		return 0, "", fmt.Errorf("malformed heartbeat frame %q", payload)
	}
	return id, name, nil
}
