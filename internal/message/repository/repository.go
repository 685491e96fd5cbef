package repository

import (
	"context"
	"time"

	"dm-relay/backend/internal/message/domain"
)

// Repository defines persistence for messages.
type Repository interface {
	Create(ctx context.Context, senderID, channelID int64, msg string, at time.Time) (*domain.Message, error)
	// ListRecentByChannel returns up to limit messages for the channel, newest first.
	ListRecentByChannel(ctx context.Context, channelID int64, limit int32) ([]*domain.Message, error)
}
