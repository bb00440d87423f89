// Package availability computes bookable days and time slots for the
// practice calendar. The rules mirror the front desk: hourly slots from
// 09:00 through 17:00 with the 12:00 lunch hour closed, no Sundays, and
// at least 24 hours notice for new appointments.
package availability

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	openHour  = 9
	closeHour = 17
	lunchHour = 12
)

// MinLeadTime is the minimum notice for a new appointment.
const MinLeadTime = 24 * time.Hour

// Errors explaining why a slot cannot be booked.
var (
	ErrUnknownSlot = errors.New("unknown time slot")
	ErrClosedDay   = errors.New("the practice is closed on that day")
	ErrLeadTime    = errors.New("bookings need at least 24 hours notice")
)

// Slots returns the bookable start times for one day, in order.
func Slots() []string {
	slots := make([]string, 0, closeHour-openHour)
	for hour := openHour; hour <= closeHour; hour++ {
		if hour == lunchHour {
			continue
		}
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
	}
	return slots
}

// IsSlot reports whether s names a valid slot start time.
func IsSlot(s string) bool {
	return slices.Contains(Slots(), s)
}

// SlotTime combines a calendar day with a slot start time.
// The slot must be valid; callers check IsSlot first.
func SlotTime(date time.Time, slot string) time.Time {
	parsed, err := time.Parse("15:04", slot)
	if err != nil {
		return date
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
}

// DateKey formats a day as the canonical "YYYY-MM-DD" key used across
// the API and the cache.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// CheckSlot validates that a slot on a given day can accept a new
// booking at time now. Slot conflicts are checked separately against
// the store.
func CheckSlot(date time.Time, slot string, now time.Time) error {
	if !IsSlot(slot) {
		return ErrUnknownSlot
	}
	if date.Weekday() == time.Sunday {
		return ErrClosedDay
	}
	if SlotTime(date, slot).Sub(now) < MinLeadTime {
		return ErrLeadTime
	}
	return nil
}

// Day is the availability of a single calendar day.
type Day struct {
	Date      string   `json:"date"`
	Open      bool     `json:"open"`
	FreeSlots []string `json:"free_slots"`
}

// ForRange computes per-day availability for [from, to] inclusive.
// booked maps DateKey -> slot start times already taken. A day is open
// when at least one slot is free and still satisfies the lead time.
func ForRange(from, to time.Time, booked map[string][]string, now time.Time) []Day {
	var days []Day

	for d := startOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := DateKey(d)
		day := Day{Date: key, FreeSlots: []string{}}

		if d.Weekday() != time.Sunday {
			taken := booked[key]
			for _, slot := range Slots() {
				if slices.Contains(taken, slot) {
					continue
				}
				if SlotTime(d, slot).Sub(now) < MinLeadTime {
					continue
				}
				day.FreeSlots = append(day.FreeSlots, slot)
			}
		}

		day.Open = len(day.FreeSlots) > 0
		days = append(days, day)
	}

	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
