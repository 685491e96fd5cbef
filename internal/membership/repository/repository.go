package repository

import (
	"context"

	"dm-relay/backend/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	ListByChannel(ctx context.Context, channelID int64) ([]*domain.Membership, error)
}
