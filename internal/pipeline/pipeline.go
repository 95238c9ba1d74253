// Package pipeline orchestrates the booking request chain:
// validate, persist, notify, schedule. Stages run strictly in order and
// each stage only runs after the previous one succeeded. There are no
// retries and no compensation: once the store commit succeeds the booking
// stays recorded even if a later stage fails.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smilecare/internal/metrics"
	"smilecare/internal/models"
)

// Store durably persists validated bookings.
type Store interface {
	InsertBooking(ctx context.Context, b *models.Booking) error
}

// Notifier tells the administrator about a new booking. Single attempt.
type Notifier interface {
	Notify(ctx context.Context, b *models.Booking) error
}

// Scheduler registers the one-hour appointment event with the calendar.
type Scheduler interface {
	Schedule(ctx context.Context, b *models.Booking) error
}

// Pipeline runs the booking chain against injected collaborators.
type Pipeline struct {
	store        Store
	notifier     Notifier
	scheduler    Scheduler
	stageTimeout time.Duration
	logger       *zerolog.Logger
}

// New constructs a pipeline. A non-positive stageTimeout defaults to 10s.
func New(store Store, notifier Notifier, scheduler Scheduler, stageTimeout time.Duration, logger *zerolog.Logger) *Pipeline {
	if stageTimeout <= 0 {
		stageTimeout = 10 * time.Second
	}
	return &Pipeline{
		store:        store,
		notifier:     notifier,
		scheduler:    scheduler,
		stageTimeout: stageTimeout,
		logger:       logger,
	}
}

// Process runs one booking request through the pipeline.
//
// On a validation failure it returns (nil, *StageError) before any side
// effect. After a successful persist the booking is returned even when a
// later stage fails, so callers can see that the record was committed;
// the error still reports the failed stage.
func (p *Pipeline) Process(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	log := p.logger.With().Str("request_id", uuid.New().String()).Logger()

	if missing := req.MissingFields(); len(missing) > 0 {
		metrics.IncBookingCreated("rejected")
		metrics.IncStageFailure(string(StageValidate))
		log.Warn().Strs("missing", missing).Msg("booking request incomplete")
		return nil, &StageError{Stage: StageValidate, Err: &IncompleteRequestError{Missing: missing}}
	}

	b := models.NewBooking(req)

	if err := p.runStage(ctx, StagePersist, &log, func(ctx context.Context) error {
		return p.store.InsertBooking(ctx, b)
	}); err != nil {
		metrics.IncBookingCreated("failed")
		return nil, err
	}

	log = log.With().Int64("booking_id", b.ID).Logger()

	if err := p.runStage(ctx, StageNotify, &log, func(ctx context.Context) error {
		return p.notifier.Notify(ctx, b)
	}); err != nil {
		// Booking stays persisted; the caller is told the request failed.
		metrics.IncBookingCreated("failed")
		return b, err
	}

	if err := p.runStage(ctx, StageSchedule, &log, func(ctx context.Context) error {
		return p.scheduler.Schedule(ctx, b)
	}); err != nil {
		metrics.IncBookingCreated("failed")
		return b, err
	}

	metrics.IncBookingCreated("created")
	log.Info().
		Str("date", b.Date).
		Str("time", b.Time).
		Msg("booking processed")
	return b, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, log *zerolog.Logger, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	started := time.Now()
	err := fn(ctx)
	metrics.ObserveStageDuration(string(stage), time.Since(started).Seconds())

	if err != nil {
		metrics.IncStageFailure(string(stage))
		log.Error().Err(err).Str("stage", string(stage)).Msg("pipeline stage failed")
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}
