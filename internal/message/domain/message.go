package domain

import (
	"errors"
	"time"
)

// Message is one chat message in a channel. Append-only; ordering is by
// created_at with message_id as the tiebreaker.
type Message struct {
	MessageID int64
	SenderID  int64
	ChannelID int64
	Msg       string
	CreatedAt time.Time
}

// Validate validates the message for persistence. Returns an error describing the first validation failure.
func (m *Message) Validate() error {
	if m.Msg == "" {
		return errors.New("msg is required")
	}
	if m.SenderID == 0 {
		return errors.New("sender_id is required")
	}
	if m.ChannelID == 0 {
		return errors.New("channel_id is required")
	}
	return nil
}
