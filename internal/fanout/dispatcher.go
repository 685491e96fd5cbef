// Package fanout pushes a persisted message to every channel member's live
// connections. Delivery is best-effort: persistence has already succeeded by
// the time Broadcast runs, and a failed push is logged and skipped, never
// retried or surfaced to the sender.
package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"dm-relay/backend/internal/presence"
	"dm-relay/backend/internal/telemetry"
)

// ConnectionSource supplies the live connections for a user id. Satisfied by
// *presence.Registry.
type ConnectionSource interface {
	ConnectionsFor(userID int64) []presence.Conn
}

// Dispatcher fans a message out to channel members. Safe for concurrent use;
// it holds no state beyond its collaborators.
type Dispatcher struct {
	conns   ConnectionSource
	emitter telemetry.EventEmitter

	deliveries metric.Int64Counter
	failures   metric.Int64Counter
	latency    metric.Float64Histogram
}

// NewDispatcher builds a dispatcher. meterProvider and emitter may be nil;
// metrics and telemetry events are then skipped.
func NewDispatcher(conns ConnectionSource, meterProvider metric.MeterProvider, emitter telemetry.EventEmitter) (*Dispatcher, error) {
	d := &Dispatcher{conns: conns, emitter: emitter}
	if meterProvider == nil {
		return d, nil
	}
	meter := meterProvider.Meter("dmrelay.fanout")
	var err error
	d.deliveries, err = meter.Int64Counter("fanout_deliveries_total",
		metric.WithDescription("Messages pushed to live connections"))
	if err != nil {
		return nil, fmt.Errorf("create deliveries counter: %w", err)
	}
	d.failures, err = meter.Int64Counter("fanout_failures_total",
		metric.WithDescription("Pushes that failed on a dead connection"))
	if err != nil {
		return nil, fmt.Errorf("create failures counter: %w", err)
	}
	d.latency, err = meter.Float64Histogram("fanout_broadcast_seconds",
		metric.WithDescription("Wall time of one broadcast across all recipients"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create latency histogram: %w", err)
	}
	return d, nil
}

// Broadcast pushes "<senderName>:<body>" to every member id except the sender.
// Members with no live connections are silently skipped. Returns the number of
// connections written to successfully.
func (d *Dispatcher) Broadcast(ctx context.Context, channelID int64, members []int64, senderID int64, senderName, body string) int {
	start := time.Now()
	payload := senderName + ":" + body

	var delivered, failed int64
	for _, memberID := range members {
		if memberID == senderID {
			continue
		}
		for _, c := range d.conns.ConnectionsFor(memberID) {
			if err := c.WriteText(payload); err != nil {
				failed++
				log.Printf("fanout: write to user %d conn %s failed: %v", memberID, c.ID(), err)
				continue
			}
			delivered++
		}
	}

	attrs := metric.WithAttributes(attribute.Int64("channel_id", channelID))
	if d.deliveries != nil {
		d.deliveries.Add(ctx, delivered, attrs)
	}
	if d.failures != nil && failed > 0 {
		d.failures.Add(ctx, failed, attrs)
	}
	if d.latency != nil {
		d.latency.Record(ctx, time.Since(start).Seconds(), attrs)
	}

	if d.emitter != nil {
		meta, _ := json.Marshal(map[string]int64{
			"delivered": delivered,
			"failed":    failed,
		})
		telemetry.EmitAsync(d.emitter, ctx, &telemetry.Event{
			UserID:    senderID,
			ChannelID: channelID,
			EventType: "message_delivery",
			Source:    "fanout",
			Metadata:  meta,
			CreatedAt: time.Now().UTC(),
		})
	}
	return int(delivered)
}
