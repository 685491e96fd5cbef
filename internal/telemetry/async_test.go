package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*Event
	emitErr error
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	// Should not panic
	EmitAsync(nil, context.Background(), &Event{EventType: "test"})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockEventEmitter{}

	// Should not panic and not emit
	EmitAsync(emitter, context.Background(), nil)

	time.Sleep(50 * time.Millisecond)
	if got := len(emitter.getEvents()); got != 0 {
		t.Errorf("emitted %d events for nil event, want 0", got)
	}
}

func TestEmitAsync_EmitsEvent(t *testing.T) {
	emitter := &mockEventEmitter{}
	event := &Event{EventType: "message_delivery", Source: "fanout"}

	EmitAsync(emitter, context.Background(), event)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(emitter.getEvents()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	events := emitter.getEvents()
	if len(events) != 1 {
		t.Fatalf("emitted %d events, want 1", len(events))
	}
	if events[0].EventType != "message_delivery" {
		t.Errorf("EventType = %q, want %q", events[0].EventType, "message_delivery")
	}
}

func TestEmitAsync_EmitterErrorIsSwallowed(t *testing.T) {
	emitter := &mockEventEmitter{emitErr: errors.New("boom")}

	// The error must be logged, never surfaced; nothing to assert beyond no panic.
	EmitAsync(emitter, context.Background(), &Event{EventType: "test"})
	time.Sleep(50 * time.Millisecond)
}

func TestShutdownDrainDuration(t *testing.T) {
	if ShutdownDrainDuration < emitTimeout {
		t.Errorf("ShutdownDrainDuration = %v, must be >= emitTimeout %v", ShutdownDrainDuration, emitTimeout)
	}
}
