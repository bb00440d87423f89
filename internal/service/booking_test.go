package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/TimFooLabs/drtimfoo-api/internal/availability"
	"github.com/TimFooLabs/drtimfoo-api/internal/model"
	"github.com/TimFooLabs/drtimfoo-api/internal/repository"
)

// fixedNow is a Thursday morning; the following Monday and Tuesday are
// far enough out to satisfy the 24h notice rule.
var fixedNow = time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

var (
	monday  = time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	sunday  = time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC)
	tuesday = time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC)
)

type fakeBookingStore struct {
	bookings map[string]*model.Booking
	booked   map[string][]string
	createN  int
	failWith error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		bookings: make(map[string]*model.Booking),
		booked:   make(map[string][]string),
	}
}

func (f *fakeBookingStore) CreateBooking(_ context.Context, b *model.Booking) error {
	f.createN++
	if f.failWith != nil {
		return f.failWith
	}
	key := availability.DateKey(b.Date)
	for _, taken := range f.booked[key] {
		if taken == b.Time {
			return repository.ErrSlotTaken
		}
	}
	f.bookings[b.ID] = b
	f.booked[key] = append(f.booked[key], b.Time)
	return nil
}

func (f *fakeBookingStore) GetBookingByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingStore) ListBookingsByUser(_ context.Context, userID string) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListBookedTimesRange(_ context.Context, from, to time.Time) (map[string][]string, error) {
	return f.booked, nil
}

func (f *fakeBookingStore) ListUpcomingBookings(_ context.Context, from time.Time, limit int) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.Status != model.BookingCancelled && !b.Date.Before(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) UpdateBookingStatus(_ context.Context, id string, status model.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

type fakeAvailabilityCache struct {
	days        map[string]*availability.Day
	invalidated []string
}

func newFakeAvailabilityCache() *fakeAvailabilityCache {
	return &fakeAvailabilityCache{days: make(map[string]*availability.Day)}
}

func (f *fakeAvailabilityCache) GetDay(_ context.Context, key string) (*availability.Day, error) {
	day, ok := f.days[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return day, nil
}

func (f *fakeAvailabilityCache) SetDay(_ context.Context, key string, day *availability.Day) error {
	f.days[key] = day
	return nil
}

func (f *fakeAvailabilityCache) InvalidateDay(_ context.Context, key string) error {
	f.invalidated = append(f.invalidated, key)
	delete(f.days, key)
	return nil
}

func newTestService(store *fakeBookingStore, cache *fakeAvailabilityCache) *BookingService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBookingService(store, cache, nil, logger, WithClock(func() time.Time { return fixedNow }))
}

func TestCreateBooking_Valid(t *testing.T) {
	store := newFakeBookingStore()
	cache := newFakeAvailabilityCache()
	svc := newTestService(store, cache)

	booking, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		UserID:      "user-1",
		ServiceType: "initial-consultation",
		Date:        monday,
		Time:        "10:00",
		Notes:       "lower back pain",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if booking.ID == "" {
		t.Error("expected a generated id")
	}
	if booking.Status != model.BookingPending {
		t.Errorf("expected pending status, got %s", booking.Status)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "2026-10-05" {
		t.Errorf("expected availability invalidation for 2026-10-05, got %v", cache.invalidated)
	}
}

func TestCreateBooking_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateBookingInput
		wantErr error
	}{
		{
			name: "unknown service type",
			input: CreateBookingInput{
				UserID:      "user-1",
				ServiceType: "deep-tissue-massage",
				Date:        monday,
				Time:        "10:00",
			},
			wantErr: ErrInvalidServiceType,
		},
		{
			name: "sunday",
			input: CreateBookingInput{
				UserID:      "user-1",
				ServiceType: "regular-adjustment",
				Date:        sunday,
				Time:        "10:00",
			},
			wantErr: ErrSlotUnavailable,
		},
		{
			name: "lunch hour",
			input: CreateBookingInput{
				UserID:      "user-1",
				ServiceType: "regular-adjustment",
				Date:        monday,
				Time:        "12:00",
			},
			wantErr: ErrSlotUnavailable,
		},
		{
			name: "insufficient notice",
			input: CreateBookingInput{
				UserID:      "user-1",
				ServiceType: "regular-adjustment",
				Date:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
				Time:        "15:00",
			},
			wantErr: ErrSlotUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeBookingStore()
			svc := newTestService(store, newFakeAvailabilityCache())

			_, err := svc.CreateBooking(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateBooking error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == ErrInvalidServiceType && store.createN != 0 {
				t.Error("store should not be called for invalid service type")
			}
		})
	}
}

func TestCreateBooking_SlotTaken(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestService(store, newFakeAvailabilityCache())

	input := CreateBookingInput{
		UserID:      "user-1",
		ServiceType: "regular-adjustment",
		Date:        monday,
		Time:        "10:00",
	}

	if _, err := svc.CreateBooking(context.Background(), input); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	input.UserID = "user-2"
	if _, err := svc.CreateBooking(context.Background(), input); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    model.BookingStatus
		to      model.BookingStatus
		wantErr error
	}{
		{"confirm pending", model.BookingPending, model.BookingConfirmed, nil},
		{"cancel pending", model.BookingPending, model.BookingCancelled, nil},
		{"complete confirmed", model.BookingConfirmed, model.BookingCompleted, nil},
		{"cancel confirmed", model.BookingConfirmed, model.BookingCancelled, nil},
		{"complete pending", model.BookingPending, model.BookingCompleted, ErrInvalidTransition},
		{"revive cancelled", model.BookingCancelled, model.BookingConfirmed, ErrInvalidTransition},
		{"reopen completed", model.BookingCompleted, model.BookingPending, ErrInvalidTransition},
		{"unknown status", model.BookingPending, model.BookingStatus("archived"), ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeBookingStore()
			store.bookings["b1"] = &model.Booking{
				ID:     "b1",
				UserID: "user-1",
				Date:   monday,
				Time:   "10:00",
				Status: tt.from,
			}
			svc := newTestService(store, newFakeAvailabilityCache())

			updated, err := svc.UpdateStatus(context.Background(), "b1", tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateStatus error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && updated.Status != tt.to {
				t.Errorf("expected status %s, got %s", tt.to, updated.Status)
			}
		})
	}
}

func TestUpdateStatus_CancelInvalidatesAvailability(t *testing.T) {
	store := newFakeBookingStore()
	store.bookings["b1"] = &model.Booking{
		ID:     "b1",
		UserID: "user-1",
		Date:   monday,
		Time:   "10:00",
		Status: model.BookingPending,
	}
	cache := newFakeAvailabilityCache()
	svc := newTestService(store, cache)

	if _, err := svc.UpdateStatus(context.Background(), "b1", model.BookingCancelled); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "2026-10-05" {
		t.Errorf("expected invalidation for 2026-10-05, got %v", cache.invalidated)
	}

	// Confirming does not free a slot, so no invalidation.
	store.bookings["b2"] = &model.Booking{
		ID:     "b2",
		UserID: "user-1",
		Date:   tuesday,
		Time:   "10:00",
		Status: model.BookingPending,
	}
	if _, err := svc.UpdateStatus(context.Background(), "b2", model.BookingConfirmed); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if len(cache.invalidated) != 1 {
		t.Errorf("confirm should not invalidate availability, got %v", cache.invalidated)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := newTestService(newFakeBookingStore(), newFakeAvailabilityCache())

	_, err := svc.UpdateStatus(context.Background(), "missing", model.BookingConfirmed)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestAvailability_SundayClosedAndSlotsFree(t *testing.T) {
	store := newFakeBookingStore()
	store.booked["2026-10-05"] = []string{"09:00", "10:00"}
	svc := newTestService(store, newFakeAvailabilityCache())

	days, err := svc.Availability(context.Background(), sunday, monday)
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}

	if days[0].Date != "2026-10-04" || days[0].Open {
		t.Errorf("expected Sunday closed, got %+v", days[0])
	}
	if days[1].Date != "2026-10-05" || !days[1].Open {
		t.Errorf("expected Monday open, got %+v", days[1])
	}
	// 8 slots minus the two booked ones.
	if len(days[1].FreeSlots) != 6 {
		t.Errorf("expected 6 free slots, got %v", days[1].FreeSlots)
	}
	for _, slot := range days[1].FreeSlots {
		if slot == "09:00" || slot == "10:00" || slot == "12:00" {
			t.Errorf("slot %s should not be free", slot)
		}
	}
}

func TestAvailability_UsesCache(t *testing.T) {
	store := newFakeBookingStore()
	cache := newFakeAvailabilityCache()
	cache.days["2026-10-05"] = &availability.Day{
		Date:      "2026-10-05",
		Open:      true,
		FreeSlots: []string{"17:00"},
	}
	svc := newTestService(store, cache)

	days, err := svc.Availability(context.Background(), monday, monday)
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if len(days[0].FreeSlots) != 1 || days[0].FreeSlots[0] != "17:00" {
		t.Errorf("expected cached slots to be served, got %v", days[0].FreeSlots)
	}
}

func TestAvailability_BackfillsCache(t *testing.T) {
	store := newFakeBookingStore()
	cache := newFakeAvailabilityCache()
	svc := newTestService(store, cache)

	if _, err := svc.Availability(context.Background(), monday, monday); err != nil {
		t.Fatalf("Availability failed: %v", err)
	}

	if _, ok := cache.days["2026-10-05"]; !ok {
		t.Error("expected computed day to be cached")
	}
}
