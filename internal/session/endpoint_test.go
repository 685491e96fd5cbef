package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dm-relay/backend/internal/presence"
	userdomain "dm-relay/backend/internal/user/domain"
)

type frame struct {
	msgType int
	payload string
}

// fakeTransport replays scripted frames, then returns a close error.
type fakeTransport struct {
	frames  []frame
	closed  int
	written []string
}

func (t *fakeTransport) ReadMessage() (int, []byte, error) {
	if len(t.frames) == 0 {
		return 0, nil, io.EOF
	}
	f := t.frames[0]
	t.frames = t.frames[1:]
	return f.msgType, []byte(f.payload), nil
}

func (t *fakeTransport) WriteMessage(_ int, data []byte) error {
	t.written = append(t.written, string(data))
	return nil
}

func (t *fakeTransport) Close() error {
	t.closed++
	return nil
}

type mockUserRepository struct {
	upserts []int64
	err     error
}

func (m *mockUserRepository) GetByID(context.Context, int64) (*userdomain.User, error)  { return nil, nil }
func (m *mockUserRepository) GetByName(context.Context, string) (*userdomain.User, error) {
	return nil, nil
}
func (m *mockUserRepository) List(context.Context) ([]*userdomain.User, error) { return nil, nil }
func (m *mockUserRepository) Create(context.Context, string, time.Time) (*userdomain.User, error) {
	return nil, nil
}

func (m *mockUserRepository) UpsertHeartbeat(_ context.Context, id int64, userName string, at time.Time) (*userdomain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.upserts = append(m.upserts, id)
	return &userdomain.User{ID: id, UserName: userName, LastTimestamp: at}, nil
}

func newTestEndpoint(repo *mockUserRepository) (*Endpoint, *presence.Registry, *presence.HeartbeatTracker) {
	registry := presence.NewRegistry()
	tracker := presence.NewHeartbeatTracker()
	e := NewEndpoint(registry, tracker, repo)
	e.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return e, registry, tracker
}

func TestServe_HeartbeatRegistersAndTouches(t *testing.T) {
	repo := &mockUserRepository{}
	e, registry, tracker := newTestEndpoint(repo)

	transport := &fakeTransport{frames: []frame{
		{websocket.TextMessage, "7,vijay"},
	}}
	e.serve(context.Background(), transport)

	if got := registry.ConnectionsFor(7); len(got) != 0 {
		t.Errorf("connections should be removed after close, got %d", len(got))
	}
	if !tracker.IsOnline(7, e.now(), 10*time.Second) {
		t.Error("user 7 should be online after heartbeat")
	}
	if len(repo.upserts) != 1 || repo.upserts[0] != 7 {
		t.Errorf("upserts = %v, want [7]", repo.upserts)
	}
	if transport.closed != 1 {
		t.Errorf("transport closed %d times, want 1", transport.closed)
	}
}

func TestServe_MalformedFramesSkipped(t *testing.T) {
	repo := &mockUserRepository{}
	e, _, tracker := newTestEndpoint(repo)

	transport := &fakeTransport{frames: []frame{
		{websocket.TextMessage, "no-comma"},
		{websocket.TextMessage, "abc,vijay"},
		{websocket.TextMessage, "-1,vijay"},
		{websocket.TextMessage, "7,"},
		{websocket.TextMessage, "7,vijay"},
	}}
	e.serve(context.Background(), transport)

	if len(repo.upserts) != 1 {
		t.Errorf("upserts = %v, want exactly one from the valid frame", repo.upserts)
	}
	if !tracker.IsOnline(7, e.now(), 10*time.Second) {
		t.Error("valid frame after malformed ones should still count")
	}
}

func TestServe_NonTextFramesIgnored(t *testing.T) {
	repo := &mockUserRepository{}
	e, _, _ := newTestEndpoint(repo)

	transport := &fakeTransport{frames: []frame{
		{websocket.BinaryMessage, "7,vijay"},
	}}
	e.serve(context.Background(), transport)

	if len(repo.upserts) != 0 {
		t.Errorf("binary frame should be ignored, got upserts %v", repo.upserts)
	}
}

func TestServe_RepositoryFailureKeepsConnection(t *testing.T) {
	repo := &mockUserRepository{err: errors.New("db down")}
	e, _, tracker := newTestEndpoint(repo)

	transport := &fakeTransport{frames: []frame{
		{websocket.TextMessage, "7,vijay"},
		{websocket.TextMessage, "7,vijay"},
	}}
	e.serve(context.Background(), transport)

	if !tracker.IsOnline(7, e.now(), 10*time.Second) {
		t.Error("in-memory liveness should advance even when persistence fails")
	}
	if transport.closed != 1 {
		t.Errorf("transport closed %d times, want 1", transport.closed)
	}
}

func TestParseHeartbeat(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantID   int64
		wantName string
		wantErr  bool
	}{
		{name: "valid", payload: "7,vijay", wantID: 7, wantName: "vijay"},
		{name: "name with comma", payload: "7,a,b", wantID: 7, wantName: "a,b"},
		{name: "padded", payload: " 7 , vijay ", wantID: 7, wantName: "vijay"},
		{name: "no comma", payload: "7", wantErr: true},
		{name: "non-numeric id", payload: "x,vijay", wantErr: true},
		{name: "zero id", payload: "0,vijay", wantErr: true},
		{name: "empty name", payload: "7,", wantErr: true},
		{name: "empty frame", payload: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, name, err := parseHeartbeat(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseHeartbeat(%q) expected error", tt.payload)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHeartbeat(%q): %v", tt.payload, err)
			}
			if id != tt.wantID || name != tt.wantName {
				t.Errorf("parseHeartbeat(%q) = (%d, %q), want (%d, %q)", tt.payload, id, name, tt.wantID, tt.wantName)
			}
		})
	}
}
