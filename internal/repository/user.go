package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/TimFooLabs/drtimfoo-api/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UpsertUser creates or updates a user record keyed by the Clerk id.
// The operation is idempotent: redelivered webhook events for the same
// account converge on the same row. An empty name clears the stored
// name (the provider no longer has one on file). Returns the row id.
func (r *Repository) UpsertUser(ctx context.Context, clerkID, email, name string) (string, error) {
	query := `
		INSERT INTO users (id, clerk_id, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'user', $5, $5)
		ON CONFLICT (clerk_id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, query,
		ulid.Make().String(),
		clerkID,
		email,
		nullIfEmpty(name),
		time.Now(),
	).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}

	return id, nil
}

// GetUserByClerkID retrieves a user by the external Clerk id.
func (r *Repository) GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	query := `
		SELECT id, clerk_id, email, COALESCE(name, ''), role, created_at, updated_at
		FROM users
		WHERE clerk_id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, clerkID).Scan(
		&user.ID,
		&user.ClerkID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by clerk id: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by their row id.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, clerk_id, email, COALESCE(name, ''), role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.ClerkID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// DeleteUserByClerkID removes a user record. The webhook dispatch path
// does not call this yet; user.deleted events are acknowledged without
// a mutation.
func (r *Repository) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
