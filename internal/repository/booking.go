package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TimFooLabs/drtimfoo-api/internal/model"
)

// Common errors for booking repository operations.
var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotTaken       = errors.New("slot already booked")
)

const bookingColumns = `id, user_id, service_type, date, time, status, COALESCE(notes, ''), created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.ServiceType,
		&b.Date,
		&b.Time,
		&b.Status,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBooking inserts a new booking. A partial unique index on
// (date, time) over non-cancelled rows enforces one active booking per
// slot; a violation maps to ErrSlotTaken.
func (r *Repository) CreateBooking(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, service_type, date, time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.ServiceType,
		booking.Date,
		booking.Time,
		booking.Status,
		nullIfEmpty(booking.Notes),
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetBookingByID retrieves a booking by its id.
func (r *Repository) GetBookingByID(ctx context.Context, id string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// ListBookingsByUser returns a user's bookings, newest appointment first.
func (r *Repository) ListBookingsByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY date DESC, time DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// ListBookedTimes returns the slot times that are blocked on a given
// day. Cancelled bookings release their slot.
func (r *Repository) ListBookedTimes(ctx context.Context, date time.Time) ([]string, error) {
	query := `
		SELECT time
		FROM bookings
		WHERE date = $1 AND status != $2
		ORDER BY time
	`

	rows, err := r.pool.Query(ctx, query, date, model.BookingCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked times: %w", err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan booked time: %w", err)
		}
		times = append(times, t)
	}

	return times, rows.Err()
}

// ListBookedTimesRange returns blocked slot times keyed by date
// ("2006-01-02") for the inclusive range [from, to].
func (r *Repository) ListBookedTimesRange(ctx context.Context, from, to time.Time) (map[string][]string, error) {
	query := `
		SELECT date, time
		FROM bookings
		WHERE date >= $1 AND date <= $2 AND status != $3
		ORDER BY date, time
	`

	rows, err := r.pool.Query(ctx, query, from, to, model.BookingCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked times range: %w", err)
	}
	defer rows.Close()

	booked := make(map[string][]string)
	for rows.Next() {
		var date time.Time
		var slot string
		if err := rows.Scan(&date, &slot); err != nil {
			return nil, fmt.Errorf("failed to scan booked time: %w", err)
		}
		key := date.Format("2006-01-02")
		booked[key] = append(booked[key], slot)
	}

	return booked, rows.Err()
}

// ListUpcomingBookings returns bookings from today onward, excluding
// cancelled ones, soonest first.
func (r *Repository) ListUpcomingBookings(ctx context.Context, from time.Time, limit int) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE date >= $1 AND status != $2
		ORDER BY date, time
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, from, model.BookingCancelled, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// UpdateBookingStatus sets a booking's status. The caller is
// responsible for checking the transition is legal.
func (r *Repository) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	tag, err := r.pool.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}
