// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/TimFooLabs/drtimfoo-api/internal/availability"
	"github.com/TimFooLabs/drtimfoo-api/internal/metrics"
	"github.com/TimFooLabs/drtimfoo-api/internal/model"
	"github.com/TimFooLabs/drtimfoo-api/internal/repository"
)

// Service errors.
var (
	ErrInvalidServiceType = errors.New("invalid service type")
	ErrSlotUnavailable    = errors.New("slot is not available")
	ErrSlotTaken          = errors.New("slot already booked")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidStatus      = errors.New("invalid booking status")
	ErrInvalidTransition  = errors.New("status transition not allowed")
)

const (
	maxNotesLength       = 1000
	defaultUpcomingLimit = 50
	maxRangeDays         = 62
)

// BookingStore is the persistence surface the booking service needs.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *model.Booking) error
	GetBookingByID(ctx context.Context, id string) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	ListBookedTimesRange(ctx context.Context, from, to time.Time) (map[string][]string, error)
	ListUpcomingBookings(ctx context.Context, from time.Time, limit int) ([]*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error
}

// AvailabilityCache caches computed day availability.
type AvailabilityCache interface {
	GetDay(ctx context.Context, dateKey string) (*availability.Day, error)
	SetDay(ctx context.Context, dateKey string, day *availability.Day) error
	InvalidateDay(ctx context.Context, dateKey string) error
}

// BookingService handles booking business logic.
type BookingService struct {
	store   BookingStore
	cache   AvailabilityCache
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithClock overrides the service clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) { s.now = now }
}

// NewBookingService creates a new BookingService.
func NewBookingService(store BookingStore, cache AvailabilityCache, recorder metrics.Recorder, logger *slog.Logger, opts ...Option) *BookingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	s := &BookingService{
		store:   store,
		cache:   cache,
		metrics: recorder,
		logger:  logger.With("component", "booking"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBookingInput defines input for creating a booking.
type CreateBookingInput struct {
	UserID      string
	ServiceType string
	Date        time.Time
	Time        string
	Notes       string
}

// CreateBooking validates the calendar rules and inserts a pending
// booking. The slot-taken check is left to the store's unique index so
// two concurrent requests cannot both win.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*model.Booking, error) {
	serviceType := model.ServiceType(input.ServiceType)
	if !model.IsValidServiceType(serviceType) {
		return nil, ErrInvalidServiceType
	}

	if err := availability.CheckSlot(input.Date, input.Time, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSlotUnavailable, err)
	}

	notes := input.Notes
	if len(notes) > maxNotesLength {
		notes = notes[:maxNotesLength]
	}

	now := s.now().UTC()
	booking := &model.Booking{
		ID:          ulid.Make().String(),
		UserID:      input.UserID,
		ServiceType: serviceType,
		Date:        input.Date,
		Time:        input.Time,
		Status:      model.BookingPending,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.IncBookingCreated()
	s.invalidateDay(ctx, booking.Date)

	return booking, nil
}

// GetBooking retrieves a booking by id.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.store.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// ListBookingsByUser returns a user's booking history, newest first.
func (s *BookingService) ListBookingsByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

// ListUpcoming returns upcoming non-cancelled bookings, soonest first.
func (s *BookingService) ListUpcoming(ctx context.Context, limit int) ([]*model.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultUpcomingLimit
	}

	today := startOfDay(s.now())
	return s.store.ListUpcomingBookings(ctx, today, limit)
}

// UpdateStatus moves a booking through its lifecycle, enforcing the
// allowed transitions. Cancelling frees the slot, so the day's cached
// availability is invalidated.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	if !model.IsValidBookingStatus(status) {
		return nil, ErrInvalidStatus
	}

	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, status)
	}

	if err := s.store.UpdateBookingStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	s.metrics.IncBookingStatusChanged(string(status))

	if status == model.BookingCancelled {
		s.invalidateDay(ctx, booking.Date)
	}

	booking.Status = status
	booking.UpdatedAt = s.now().UTC()
	return booking, nil
}

// Availability computes per-day availability for [from, to], cache
// first. The range is capped; an inverted range yields no days.
func (s *BookingService) Availability(ctx context.Context, from, to time.Time) ([]availability.Day, error) {
	from = startOfDay(from)
	to = startOfDay(to)

	if maxTo := from.AddDate(0, 0, maxRangeDays-1); to.After(maxTo) {
		to = maxTo
	}

	now := s.now()
	var days []availability.Day
	var missed []time.Time

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if s.cache != nil {
			if day, err := s.cache.GetDay(ctx, availability.DateKey(d)); err == nil {
				s.metrics.IncAvailabilityCacheHit()
				days = append(days, *day)
				continue
			}
		}
		s.metrics.IncAvailabilityCacheMiss()
		missed = append(missed, d)
		days = append(days, availability.Day{}) // placeholder, filled below
	}

	if len(missed) == 0 {
		return days, nil
	}

	booked, err := s.store.ListBookedTimesRange(ctx, missed[0], missed[len(missed)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to load booked times: %w", err)
	}

	next := 0
	for i := range days {
		if days[i].Date != "" {
			continue
		}
		d := missed[next]
		next++

		computed := availability.ForRange(d, d, booked, now)
		days[i] = computed[0]

		if s.cache != nil {
			if err := s.cache.SetDay(ctx, days[i].Date, &days[i]); err != nil {
				s.logger.Debug("failed to cache availability", "date", days[i].Date, "error", err)
			}
		}
	}

	return days, nil
}

func (s *BookingService) invalidateDay(ctx context.Context, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDay(ctx, availability.DateKey(date)); err != nil {
		s.logger.Debug("failed to invalidate availability cache", "date", availability.DateKey(date), "error", err)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
