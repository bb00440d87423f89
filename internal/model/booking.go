package model

import (
	"slices"
	"time"
)

// ServiceType identifies the appointment offerings of the practice.
type ServiceType string

const (
	ServiceInitialConsultation   ServiceType = "initial-consultation"
	ServiceRegularAdjustment     ServiceType = "regular-adjustment"
	ServiceExtendedComprehensive ServiceType = "extended-comprehensive"
)

// ValidServiceTypes contains all bookable service types.
var ValidServiceTypes = []ServiceType{
	ServiceInitialConsultation,
	ServiceRegularAdjustment,
	ServiceExtendedComprehensive,
}

// IsValidServiceType checks if a service type is bookable.
func IsValidServiceType(st ServiceType) bool {
	return slices.Contains(ValidServiceTypes, st)
}

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// IsValidBookingStatus checks if a status value is known.
func IsValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Booking is an appointment request. Date carries the calendar day and
// Time the slot start ("09:00" through "17:00").
type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	ServiceType ServiceType   `json:"service_type"`
	Date        time.Time     `json:"date"`
	Time        string        `json:"time"`
	Status      BookingStatus `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CanTransitionTo reports whether the status change is allowed.
// Pending bookings are confirmed or cancelled by the practice;
// confirmed ones complete after the visit or get cancelled.
// Cancelled and completed are terminal.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCompleted || next == BookingCancelled
	default:
		return false
	}
}

// IsTerminal returns true once no further status change is allowed.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCancelled || b.Status == BookingCompleted
}

// BlocksSlot reports whether the booking still occupies its time slot.
func (b *Booking) BlocksSlot() bool {
	return b.Status != BookingCancelled
}
