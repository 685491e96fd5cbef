// Package presence tracks which users currently have live connections and
// when each user last signaled liveness. Both structures are owned registries
// with process lifetime, passed by handle into request handlers; neither is
// global state.
package presence

import "sync"

// Conn is a live transport connection capable of receiving pushed text.
// The transport layer owns the connection; the registry only references it
// and must be told about closure via Deregister.
type Conn interface {
	// ID identifies the connection handle; Register is idempotent per ID.
	ID() string
	// WriteText pushes one text payload. Returns an error if the peer is gone.
	WriteText(payload string) error
}

// Registry maps user ids to their open connections. A user can hold several
// connections (multiple tabs/devices); a missing key means no known
// connections. All operations share one mutex so a close event can never
// race a snapshot over the same set.
type Registry struct {
	mu    sync.Mutex
	conns map[int64]map[string]Conn
}

// NewRegistry returns an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]map[string]Conn)}
}

// Register adds the connection to the user's live set. Idempotent for the
// same connection ID.
func (r *Registry) Register(userID int64, c Conn) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[string]Conn)
		r.conns[userID] = set
	}
	set[c.ID()] = c
}

// Deregister removes the connection from every user set that contains it and
// drops a user's entry once its set is empty. Removing a connection that was
// never registered is a no-op, not an error.
func (r *Registry) Deregister(c Conn) {
	if c == nil {
		return
	}
	id := c.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, set := range r.conns {
		if _, ok := set[id]; !ok {
			continue
		}
		delete(set, id)
		if len(set) == 0 {
			delete(r.conns, userID)
		}
	}
}

// ConnectionsFor returns a point-in-time copy of the user's live connections.
// The snapshot may be stale the moment it is returned; callers must tolerate
// write failures on individual connections.
func (r *Registry) ConnectionsFor(userID int64) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}
