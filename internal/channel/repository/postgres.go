package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"dm-relay/backend/internal/channel/domain"
	"dm-relay/backend/internal/db/sqlc/gen"
	messagedomain "dm-relay/backend/internal/message/domain"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db      *sql.DB
	queries *gen.Queries
}

// NewPostgresRepository returns a channel repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, queries: gen.New(db)}
}

// GetDirectByPair returns the direct channel between the two users, or nil if none exists.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetDirectByPair(ctx context.Context, userA, userB int64) (*domain.Channel, error) {
	lo, hi := normalizePair(userA, userB)
	ch, err := r.queries.GetDirectChannelByPair(ctx, gen.GetDirectChannelByPairParams{UserLo: lo, UserHi: hi})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genChannelToDomain(&ch), nil
}

// CreateDirect creates the channel, pair, both memberships and the synthetic
// message in one transaction. The unique index on direct_pairs(user_lo, user_hi)
// is the backstop against racing creators; losing the race returns ErrPairExists.
func (r *PostgresRepository) CreateDirect(ctx context.Context, arg CreateDirectArgs) (*domain.Channel, *messagedomain.Message, error) {
	lo, hi := normalizePair(arg.SenderID, arg.ReceiverID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := r.queries.WithTx(tx)

	ch, err := q.CreateChannel(ctx, gen.CreateChannelParams{
		ChannelType: domain.ChannelTypeDirect,
		ChannelName: arg.ChannelName,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := q.CreateDirectPair(ctx, gen.CreateDirectPairParams{
		ChannelID: ch.ChannelID,
		UserLo:    lo,
		UserHi:    hi,
	}); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrPairExists
		}
		return nil, nil, err
	}

	msg, err := q.CreateMessage(ctx, gen.CreateMessageParams{
		SenderID:  arg.SenderID,
		ChannelID: ch.ChannelID,
		Msg:       arg.SystemMsg,
		CreatedAt: arg.At,
	})
	if err != nil {
		return nil, nil, err
	}

	for _, userID := range []int64{arg.SenderID, arg.ReceiverID} {
		if _, err := q.CreateMembership(ctx, gen.CreateMembershipParams{
			ChannelID: ch.ChannelID,
			UserID:    userID,
		}); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}

	return genChannelToDomain(&ch), &messagedomain.Message{
		MessageID: msg.MessageID,
		SenderID:  msg.SenderID,
		ChannelID: msg.ChannelID,
		Msg:       msg.Msg,
		CreatedAt: msg.CreatedAt,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func normalizePair(a, b int64) (lo, hi int64) {
	if a < b {
		return a, b
	}
	return b, a
}

func genChannelToDomain(c *gen.Channel) *domain.Channel {
	if c == nil {
		return nil
	}
	return &domain.Channel{
		ChannelID:   c.ChannelID,
		ChannelType: c.ChannelType,
		ChannelName: c.ChannelName,
	}
}
