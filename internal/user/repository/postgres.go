package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dm-relay/backend/internal/db/sqlc/gen"
	"dm-relay/backend/internal/user/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genUserToDomain(&u), nil
}

// GetByName returns the user with the given display name, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByName(ctx context.Context, userName string) (*domain.User, error) {
	u, err := r.queries.GetUserByName(ctx, userName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genUserToDomain(&u), nil
}

// List returns all known users ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.User, error) {
	list, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, len(list))
	for i := range list {
		out[i] = genUserToDomain(&list[i])
	}
	return out, nil
}

// Create inserts a new user with the given display name; the id is assigned by the database.
func (r *PostgresRepository) Create(ctx context.Context, userName string, at time.Time) (*domain.User, error) {
	u, err := r.queries.CreateUser(ctx, gen.CreateUserParams{
		UserName:      userName,
		LastTimestamp: at,
	})
	if err != nil {
		return nil, err
	}
	return genUserToDomain(&u), nil
}

// UpsertHeartbeat creates the user if the id is unknown, otherwise refreshes
// last_timestamp. The query advances the id sequence past the explicit id so a
// later Create never collides with a heartbeat-created row.
func (r *PostgresRepository) UpsertHeartbeat(ctx context.Context, id int64, userName string, at time.Time) (*domain.User, error) {
	u, err := r.queries.UpsertUserHeartbeat(ctx, gen.UpsertUserHeartbeatParams{
		ID:            id,
		UserName:      userName,
		LastTimestamp: at,
	})
	if err != nil {
		return nil, err
	}
	return genUserToDomain(&u), nil
}

func genUserToDomain(u *gen.User) *domain.User {
	if u == nil {
		return nil
	}
	return &domain.User{
		ID:            u.ID,
		UserName:      u.UserName,
		LastTimestamp: u.LastTimestamp,
	}
}
