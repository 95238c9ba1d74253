package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFields(t *testing.T) {
	complete := BookingRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "555-0100",
		Date:  "2024-06-01",
		Time:  "14:00",
	}

	assert.Empty(t, complete.MissingFields())

	tests := []struct {
		name   string
		mutate func(r *BookingRequest)
		want   []string
	}{
		{"name", func(r *BookingRequest) { r.Name = "" }, []string{"name"}},
		{"email", func(r *BookingRequest) { r.Email = "" }, []string{"email"}},
		{"phone", func(r *BookingRequest) { r.Phone = "" }, []string{"phone"}},
		{"date", func(r *BookingRequest) { r.Date = "" }, []string{"date"}},
		{"time", func(r *BookingRequest) { r.Time = "" }, []string{"time"}},
		{"whitespace only", func(r *BookingRequest) { r.Phone = "   " }, []string{"phone"}},
		{"several", func(r *BookingRequest) { r.Name = ""; r.Date = "" }, []string{"name", "date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := complete
			tt.mutate(&req)
			assert.Equal(t, tt.want, req.MissingFields())
		})
	}
}

func TestEventWindow(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name      string
		date      string
		time      string
		wantStart time.Time
	}{
		{"plain", "2024-06-01", "14:00", time.Date(2024, 6, 1, 14, 0, 0, 0, loc)},
		{"am suffix ignored", "2024-03-15", "10:30 AM", time.Date(2024, 3, 15, 10, 30, 0, 0, loc)},
		{"pm suffix ignored for math", "2024-03-15", "10:30 PM", time.Date(2024, 3, 15, 10, 30, 0, 0, loc)},
		{"period suffix", "2024-03-15", "10:30.AM", time.Date(2024, 3, 15, 10, 30, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Booking{Date: tt.date, Time: tt.time}
			start, end, err := b.EventWindow(loc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantStart.Add(time.Hour), end)
		})
	}
}

func TestEventWindowInvalid(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
	}{
		{"bad time", "2024-06-01", "not-a-time"},
		{"bad date", "junk", "14:00"},
		{"empty time", "2024-06-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Booking{Date: tt.date, Time: tt.time}
			_, _, err := b.EventWindow(time.UTC)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSchedule))
		})
	}
}

func TestEventWindowConfiguredZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	b := Booking{Date: "2024-03-15", Time: "10:30 AM"}
	start, end, err := b.EventWindow(loc)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15T10:30:00", start.Format("2006-01-02T15:04:05"))
	assert.Equal(t, "2024-03-15T11:30:00", end.Format("2006-01-02T15:04:05"))
	assert.Equal(t, loc, start.Location())
}
