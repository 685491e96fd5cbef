package repository

import (
	"context"
	"database/sql"

	"dm-relay/backend/internal/db/sqlc/gen"
	"dm-relay/backend/internal/membership/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// ListByChannel returns all memberships for the channel ordered by membership_id.
func (r *PostgresRepository) ListByChannel(ctx context.Context, channelID int64) ([]*domain.Membership, error) {
	list, err := r.queries.ListMembershipsByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Membership, len(list))
	for i := range list {
		out[i] = &domain.Membership{
			MembershipID: list[i].MembershipID,
			ChannelID:    list[i].ChannelID,
			UserID:       list[i].UserID,
		}
	}
	return out, nil
}
