// Package service implements channel resolution: map a pair of display names
// to their direct channel, creating it on first contact.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	channelrepository "dm-relay/backend/internal/channel/repository"
	messagedomain "dm-relay/backend/internal/message/domain"
	messagerepository "dm-relay/backend/internal/message/repository"
	userrepository "dm-relay/backend/internal/user/repository"
)

// historyLimit is how many recent messages an existing-channel resolution returns.
const historyLimit = 10

// ErrSelfChannel is returned when both names refer to the same user; a direct
// channel needs two distinct members. Handlers map it to a validation failure.
var ErrSelfChannel = errors.New("sender and receiver must be different users")

// UnknownUserError marks a resolution that referenced a display name with no
// user row. Handlers map it to a validation failure.
type UnknownUserError struct {
	UserName string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("unknown user %q", e.UserName)
}

// Broadcaster pushes a message body to the live connections of the given
// members, excluding the sender. Satisfied by *fanout.Dispatcher.
type Broadcaster interface {
	Broadcast(ctx context.Context, channelID int64, members []int64, senderID int64, senderName, body string) int
}

// Resolution is the tagged outcome of ResolveOrCreate. When Created is true,
// SystemMessage holds the synthetic first message; otherwise History holds up
// to the last ten messages, newest first.
type Resolution struct {
	ChannelID     int64
	Created       bool
	SystemMessage *messagedomain.Message
	History       []*messagedomain.Message
}

// Resolver resolves direct channels between display names.
type Resolver struct {
	users      userrepository.Repository
	channels   channelrepository.Repository
	messages   messagerepository.Repository
	dispatcher Broadcaster
	now        func() time.Time
}

// NewResolver builds a resolver. dispatcher may be nil; the synthetic message
// is then persisted but not pushed.
func NewResolver(users userrepository.Repository, channels channelrepository.Repository, messages messagerepository.Repository, dispatcher Broadcaster) *Resolver {
	return &Resolver{
		users:      users,
		channels:   channels,
		messages:   messages,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// ResolveOrCreate returns the direct channel between the two named users,
// creating it if this is their first contact. Creation persists the channel,
// both memberships and a synthetic first message atomically, then pushes the
// synthetic message to the receiver's live connections. A concurrent creation
// of the same pair degrades to a lookup, so racing calls converge on one
// channel id.
func (r *Resolver) ResolveOrCreate(ctx context.Context, senderName, receiverName string) (*Resolution, error) {
	if senderName == receiverName {
		return nil, ErrSelfChannel
	}
	sender, err := r.users.GetByName(ctx, senderName)
	if err != nil {
		return nil, fmt.Errorf("look up sender: %w", err)
	}
	if sender == nil {
		return nil, &UnknownUserError{UserName: senderName}
	}
	receiver, err := r.users.GetByName(ctx, receiverName)
	if err != nil {
		return nil, fmt.Errorf("look up receiver: %w", err)
	}
	if receiver == nil {
		return nil, &UnknownUserError{UserName: receiverName}
	}

	existing, err := r.channels.GetDirectByPair(ctx, sender.ID, receiver.ID)
	if err != nil {
		return nil, fmt.Errorf("look up channel: %w", err)
	}
	if existing != nil {
		return r.existing(ctx, existing.ChannelID)
	}

	channel, systemMsg, err := r.channels.CreateDirect(ctx, channelrepository.CreateDirectArgs{
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		ChannelName: senderName + "_" + receiverName,
		SystemMsg:   "channel created b/w you and " + receiverName,
		At:          r.now().UTC(),
	})
	if errors.Is(err, channelrepository.ErrPairExists) {
		// Lost the creation race; the winner's channel is the channel.
		winner, lookupErr := r.channels.GetDirectByPair(ctx, sender.ID, receiver.ID)
		if lookupErr != nil {
			return nil, fmt.Errorf("look up channel after lost race: %w", lookupErr)
		}
		if winner == nil {
			return nil, fmt.Errorf("pair exists but lookup found no channel: %w", err)
		}
		return r.existing(ctx, winner.ChannelID)
	}
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}

	if r.dispatcher != nil {
		r.dispatcher.Broadcast(ctx, channel.ChannelID, []int64{receiver.ID}, sender.ID, senderName, systemMsg.Msg)
	}
	return &Resolution{
		ChannelID:     channel.ChannelID,
		Created:       true,
		SystemMessage: systemMsg,
	}, nil
}

func (r *Resolver) existing(ctx context.Context, channelID int64) (*Resolution, error) {
	history, err := r.messages.ListRecentByChannel(ctx, channelID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load channel history: %w", err)
	}
	return &Resolution{ChannelID: channelID, History: history}, nil
}
