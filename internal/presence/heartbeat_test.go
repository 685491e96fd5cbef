package presence

import (
	"sync"
	"testing"
	"time"
)

func TestHeartbeatTracker_OnlineWithinWindow(t *testing.T) {
	tr := NewHeartbeatTracker()
	now := time.Now().UTC()
	window := 10 * time.Second

	tr.Touch(7, "vijay", now)

	if !tr.IsOnline(7, now, window) {
		t.Error("user should be online immediately after Touch")
	}
	if !tr.IsOnline(7, now.Add(10*time.Second), window) {
		t.Error("user should still be online exactly at the window edge")
	}
	if tr.IsOnline(7, now.Add(11*time.Second), window) {
		t.Error("user should be offline 11s after the last touch with a 10s window")
	}
}

func TestHeartbeatTracker_UnknownUserIsOffline(t *testing.T) {
	tr := NewHeartbeatTracker()
	if tr.IsOnline(42, time.Now().UTC(), 10*time.Second) {
		t.Error("a user that never touched should be offline")
	}
}

func TestHeartbeatTracker_TimestampNeverMovesBackwards(t *testing.T) {
	tr := NewHeartbeatTracker()
	now := time.Now().UTC()
	window := 10 * time.Second

	tr.Touch(7, "vijay", now)
	tr.Touch(7, "vijay", now.Add(-time.Minute)) // stale signal, must be ignored

	if !tr.IsOnline(7, now, window) {
		t.Error("a stale Touch must not move the timestamp backwards")
	}
}

func TestHeartbeatTracker_SnapshotAll(t *testing.T) {
	tr := NewHeartbeatTracker()
	now := time.Now().UTC()
	window := 10 * time.Second

	tr.Touch(1, "vijay", now)
	tr.Touch(2, "suriya", now.Add(-time.Minute))

	snap := tr.SnapshotAll(now, window)
	if len(snap) != 2 {
		t.Fatalf("SnapshotAll returned %d entries, want 2", len(snap))
	}
	byName := make(map[string]bool, len(snap))
	for _, s := range snap {
		byName[s.UserName] = s.Online
	}
	if !byName["vijay"] {
		t.Error("vijay should be online")
	}
	if byName["suriya"] {
		t.Error("suriya should be offline after a minute of silence")
	}
}

func TestHeartbeatTracker_ConcurrentTouch(t *testing.T) {
	tr := NewHeartbeatTracker()
	now := time.Now().UTC()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tr.Touch(int64(n%4), "user", now.Add(time.Duration(n)*time.Millisecond))
			tr.IsOnline(int64(n%4), now, 10*time.Second)
		}(i)
	}

	wg.Wait()
	if got := len(tr.SnapshotAll(now, 10*time.Second)); got != 4 {
		t.Errorf("SnapshotAll returned %d entries, want 4", got)
	}
}
