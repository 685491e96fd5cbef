package repository

import (
	"context"
	"time"

	"dm-relay/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByName(ctx context.Context, userName string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, userName string, at time.Time) (*domain.User, error)
	// UpsertHeartbeat creates the user if the id is unknown, otherwise refreshes
	// last_timestamp. Creating with an explicit id must leave id assignment for
	// Create intact: a later Create may never collide with a heartbeat-created row.
	UpsertHeartbeat(ctx context.Context, id int64, userName string, at time.Time) (*domain.User, error)
}
