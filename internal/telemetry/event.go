// Package telemetry defines the delivery/request event shape and best-effort
// emission helpers. Events flow either to OTel Logs (otel subpackage) or to
// Kafka (producer subpackage) and from there to Loki via cmd/worker.
package telemetry

import (
	"encoding/json"
	"time"
)

// Event is one telemetry event (e.g. an HTTP request or a message fan-out).
// Serialized as JSON on the wire; Metadata carries event-type-specific fields.
type Event struct {
	UserID    int64           `json:"userId,omitempty"`
	ChannelID int64           `json:"channelId,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
