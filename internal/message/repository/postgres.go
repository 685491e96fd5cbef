package repository

import (
	"context"
	"database/sql"
	"time"

	"dm-relay/backend/internal/db/sqlc/gen"
	"dm-relay/backend/internal/message/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a message repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// Create appends one message; the id is assigned by the database.
func (r *PostgresRepository) Create(ctx context.Context, senderID, channelID int64, msg string, at time.Time) (*domain.Message, error) {
	m, err := r.queries.CreateMessage(ctx, gen.CreateMessageParams{
		SenderID:  senderID,
		ChannelID: channelID,
		Msg:       msg,
		CreatedAt: at,
	})
	if err != nil {
		return nil, err
	}
	return genMessageToDomain(&m), nil
}

// ListRecentByChannel returns up to limit messages for the channel, newest first
// (created_at descending, message_id as the tiebreaker).
func (r *PostgresRepository) ListRecentByChannel(ctx context.Context, channelID int64, limit int32) ([]*domain.Message, error) {
	list, err := r.queries.ListRecentMessagesByChannel(ctx, gen.ListRecentMessagesByChannelParams{
		ChannelID: channelID,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Message, len(list))
	for i := range list {
		out[i] = genMessageToDomain(&list[i])
	}
	return out, nil
}

func genMessageToDomain(m *gen.Message) *domain.Message {
	if m == nil {
		return nil
	}
	return &domain.Message{
		MessageID: m.MessageID,
		SenderID:  m.SenderID,
		ChannelID: m.ChannelID,
		Msg:       m.Msg,
		CreatedAt: m.CreatedAt,
	}
}
