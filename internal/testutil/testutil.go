package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/TimFooLabs/drtimfoo-api/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

func execMigration(ctx context.Context, pool *pgxpool.Pool, filename string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	sql, err := os.ReadFile(filepath.Join(root, "migrations", filename))
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filename, err)
	}

	return nil
}

func dropSchema(ctx context.Context, pool *pgxpool.Pool, migration string) error {
	return execMigration(ctx, pool, migration+".down.sql")
}

func applySchema(ctx context.Context, pool *pgxpool.Pool, migration string) error {
	return execMigration(ctx, pool, migration+".up.sql")
}

func resetSchema(ctx context.Context, pool *pgxpool.Pool, migration string) error {
	if err := dropSchema(ctx, pool, migration); err != nil {
		return err
	}
	return applySchema(ctx, pool, migration)
}

// ResetUsersSchema drops and recreates the users schema for tests.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000001_users")
}

// ResetBookingsSchema drops and recreates the bookings schema for tests.
// Bookings reference users, so the users schema is rebuilt underneath.
func ResetBookingsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := dropSchema(ctx, pool, "000002_bookings"); err != nil {
		return err
	}
	if err := ResetUsersSchema(ctx, pool); err != nil {
		return err
	}
	return applySchema(ctx, pool, "000002_bookings")
}

// ResetTestimonialsSchema drops and recreates the testimonials schema for tests.
// Testimonials reference users, so the users schema is rebuilt underneath.
func ResetTestimonialsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := dropSchema(ctx, pool, "000003_testimonials"); err != nil {
		return err
	}
	if err := ResetUsersSchema(ctx, pool); err != nil {
		return err
	}
	return applySchema(ctx, pool, "000003_testimonials")
}

// ResetContactsSchema drops and recreates the contacts schema for tests.
func ResetContactsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000004_contacts")
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestBooking creates a pending booking with sensible defaults.
func NewTestBooking(t testing.TB, userID string, date time.Time, slot string) *model.Booking {
	t.Helper()
	now := time.Now().UTC()
	return &model.Booking{
		ID:          ulid.Make().String(),
		UserID:      userID,
		ServiceType: model.ServiceRegularAdjustment,
		Date:        date,
		Time:        slot,
		Status:      model.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestTestimonial creates a pending testimonial with sensible defaults.
func NewTestTestimonial(t testing.TB, userID string) *model.Testimonial {
	t.Helper()
	now := time.Now().UTC()
	return &model.Testimonial{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      "Test Patient",
		Content:   "Great care, highly recommended.",
		Rating:    5,
		Status:    model.TestimonialPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestContact creates a contact submission with sensible defaults.
func NewTestContact(t testing.TB) *model.Contact {
	t.Helper()
	return &model.Contact{
		ID:        ulid.Make().String(),
		Name:      "Test Sender",
		Email:     "sender@example.com",
		Message:   "I would like to ask about opening hours.",
		Status:    model.ContactNew,
		CreatedAt: time.Now().UTC(),
	}
}

// UniqueClerkID generates a unique Clerk id for tests.
func UniqueClerkID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
