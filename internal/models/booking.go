package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventDuration is the fixed length of a scheduled appointment event.
const EventDuration = time.Hour

// ErrInvalidSchedule marks a booking whose date or time cannot be parsed
// into a calendar event window.
var ErrInvalidSchedule = errors.New("invalid schedule input")

// BookingRequest is the transient form submission as supplied by the caller.
// No field is format-validated beyond presence; any non-empty text passes.
type BookingRequest struct {
	Name  string
	Email string
	Phone string
	Date  string // YYYY-MM-DD
	Time  string // leading HH:MM token, optional suffix ("10:30 AM")
}

// MissingFields returns the names of required fields that are empty,
// in a stable order. An empty result means the request is complete.
func (r *BookingRequest) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"phone", r.Phone},
		{"date", r.Date},
		{"time", r.Time},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Booking is the persisted appointment record. It is immutable after
// creation; the service never updates or deletes bookings.
type Booking struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBooking builds an unsaved record from a validated request.
func NewBooking(r *BookingRequest) *Booking {
	return &Booking{
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		Date:  r.Date,
		Time:  r.Time,
	}
}

// EventWindow computes the calendar event interval for the booking in the
// given location. Only the leading HH:MM token of Time participates; a
// period- or space-separated suffix such as "AM" is ignored. The window is
// always exactly EventDuration long.
func (b *Booking) EventWindow(loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	token := b.Time
	if i := strings.IndexAny(token, " ."); i >= 0 {
		token = token[:i]
	}
	start, err = time.ParseInLocation("2006-01-02 15:04", b.Date+" "+token, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: parse %q %q: %v", ErrInvalidSchedule, b.Date, b.Time, err)
	}
	return start, start.Add(EventDuration), nil
}
