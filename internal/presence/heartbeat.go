package presence

import (
	"sync"
	"time"
)

// UserStatus is one entry of a heartbeat snapshot.
type UserStatus struct {
	UserID   int64
	UserName string
	Online   bool
}

type heartbeat struct {
	userName string
	lastSeen time.Time
}

// HeartbeatTracker records the most recent liveness signal per user. It has
// its own lock, disjoint from the Registry's, so a slow presence operation
// cannot stall heartbeat ingestion.
type HeartbeatTracker struct {
	mu    sync.RWMutex
	beats map[int64]heartbeat
}

// NewHeartbeatTracker returns an empty heartbeat tracker.
func NewHeartbeatTracker() *HeartbeatTracker {
	return &HeartbeatTracker{beats: make(map[int64]heartbeat)}
}

// Touch records a liveness signal for the user at now, creating the entry if
// absent. The timestamp never moves backwards; concurrent touches are
// last-write-wins per user.
func (t *HeartbeatTracker) Touch(userID int64, userName string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, ok := t.beats[userID]
	if ok && now.Before(prev.lastSeen) {
		return
	}
	t.beats[userID] = heartbeat{userName: userName, lastSeen: now}
}

// IsOnline reports whether the user signaled liveness within window before
// now. Unknown users are offline; a zero timestamp is offline (fail-closed).
func (t *HeartbeatTracker) IsOnline(userID int64, now time.Time, window time.Duration) bool {
	t.mu.RLock()
	b, ok := t.beats[userID]
	t.mu.RUnlock()
	if !ok || b.lastSeen.IsZero() {
		return false
	}
	return now.Sub(b.lastSeen) <= window
}

// SnapshotAll returns the online status of every tracked user.
func (t *HeartbeatTracker) SnapshotAll(now time.Time, window time.Duration) []UserStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]UserStatus, 0, len(t.beats))
	for userID, b := range t.beats {
		online := !b.lastSeen.IsZero() && now.Sub(b.lastSeen) <= window
		out = append(out, UserStatus{UserID: userID, UserName: b.userName, Online: online})
	}
	return out
}
