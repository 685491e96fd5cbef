package repository

import (
	"context"
	"errors"
	"time"

	"dm-relay/backend/internal/channel/domain"
	messagedomain "dm-relay/backend/internal/message/domain"
)

// ErrPairExists is returned by CreateDirect when another caller created a
// channel for the same unordered pair first. Callers retry as a lookup.
var ErrPairExists = errors.New("direct channel already exists for pair")

// CreateDirectArgs describes one atomic direct-channel creation: the channel
// row, its pair row, both memberships and the synthetic first message.
type CreateDirectArgs struct {
	SenderID    int64
	ReceiverID  int64
	ChannelName string
	SystemMsg   string
	At          time.Time
}

// Repository defines persistence for channels.
type Repository interface {
	// GetDirectByPair returns the direct channel between the two users, or nil if none exists.
	// The pair is unordered; implementations normalize it.
	GetDirectByPair(ctx context.Context, userA, userB int64) (*domain.Channel, error)
	// CreateDirect creates the channel, pair, memberships and synthetic message as one unit.
	// Returns ErrPairExists if a concurrent call won the race for the same pair.
	CreateDirect(ctx context.Context, arg CreateDirectArgs) (*domain.Channel, *messagedomain.Message, error)
}
