// Package calendar registers booking events with Google Calendar.
package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"smilecare/internal/models"
)

// Config holds the already-authorized OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
	CalendarID   string
	Location     *time.Location
}

// Scheduler creates one calendar event per booking. Events are not
// tracked afterwards and no idempotency key is attached, so re-running a
// booking would create a duplicate event.
type Scheduler struct {
	events     eventInserter
	calendarID string
	loc        *time.Location
}

// eventInserter is the slice of the Calendar API the scheduler needs.
type eventInserter interface {
	Insert(ctx context.Context, calendarID string, event *gcal.Event) error
}

type googleEvents struct {
	svc *gcal.Service
}

func (g *googleEvents) Insert(ctx context.Context, calendarID string, event *gcal.Event) error {
	_, err := g.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	return err
}

// NewScheduler builds a Scheduler backed by the Google Calendar API,
// authorized through the configured refresh token.
func NewScheduler(ctx context.Context, cfg Config) (*Scheduler, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return newScheduler(&googleEvents{svc: svc}, cfg), nil
}

func newScheduler(events eventInserter, cfg Config) *Scheduler {
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{events: events, calendarID: calendarID, loc: loc}
}

// Schedule creates the one-hour event for the booking. Malformed
// date/time fails with models.ErrInvalidSchedule before any remote call.
func (s *Scheduler) Schedule(ctx context.Context, b *models.Booking) error {
	event, err := buildEvent(b, s.loc)
	if err != nil {
		return err
	}
	if err := s.events.Insert(ctx, s.calendarID, event); err != nil {
		return fmt.Errorf("insert calendar event: %w", err)
	}
	return nil
}

func buildEvent(b *models.Booking, loc *time.Location) (*gcal.Event, error) {
	start, end, err := b.EventWindow(loc)
	if err != nil {
		return nil, err
	}
	return &gcal.Event{
		Summary:     fmt.Sprintf("Dental Appointment - %s", b.Name),
		Description: fmt.Sprintf("Phone: %s, Email: %s", b.Phone, b.Email),
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}, nil
}
