package booking

import (
	"context"
	"errors"
	"fmt"

	"holidaze/internal/availability"
	"holidaze/internal/events"
	"holidaze/internal/metrics"
	"holidaze/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrRangeOverlap means the selection overlaps a booked interval.
	ErrRangeOverlap = errors.New("selected dates overlap an existing booking")
	// ErrSubmitInFlight means a submission for the form is still running.
	ErrSubmitInFlight = errors.New("booking submission already in progress")
	// ErrBookingConflict means the API rejected the dates because another
	// booking took them after availability was loaded.
	ErrBookingConflict = errors.New("dates were booked by someone else")
)

// Creator sends a booking draft to the API.
type Creator interface {
	CreateBooking(ctx context.Context, draft models.BookingDraft) (*models.Booking, error)
}

// Publisher receives booking lifecycle events.
type Publisher interface {
	Publish(event events.Event)
}

// conflicter is implemented by API errors that signal a booking race.
type conflicter interface {
	Conflict() bool
}

// Controller submits booking forms.
type Controller struct {
	api     Creator
	bus     Publisher
	refetch availability.Fetcher
	logger  zerolog.Logger
}

// NewController builds a controller. bus may be nil.
func NewController(api Creator, bus Publisher, logger zerolog.Logger) *Controller {
	return &Controller{
		api:    api,
		bus:    bus,
		logger: logger.With().Str("component", "booking").Logger(),
	}
}

// WithRefetch makes the controller reload a form's intervals after the API
// reports a booking race.
func (c *Controller) WithRefetch(f availability.Fetcher) *Controller {
	c.refetch = f
	return c
}

// Submit validates the form, re-checks overlap and posts the booking.
// On success the form is reset and a confirmation returned. On failure the
// selection is kept so the user can retry.
func (c *Controller) Submit(ctx context.Context, f *Form) (*Confirmation, error) {
	if !f.busy.CompareAndSwap(false, true) {
		metrics.IncSubmission("in_flight")
		return nil, ErrSubmitInFlight
	}
	defer f.busy.Store(false)

	select {
	case <-f.Ready():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	res := f.Validate()
	if !res.Ok() {
		metrics.IncSubmission("invalid")
		return nil, res.Err()
	}
	sel := res.Value()

	if f.checkOverlap(sel) {
		metrics.IncSubmission("overlap")
		return nil, ErrRangeOverlap
	}

	venue := f.Venue()
	draft := models.NewBookingDraft(sel.VenueID, sel.CheckIn, sel.CheckOut, sel.Guests)
	logger := c.logger.With().Str("venue_id", draft.VenueID).Str("date_from", draft.DateFrom).Str("date_to", draft.DateTo).Logger()

	created, err := c.api.CreateBooking(ctx, draft)
	if err != nil {
		var cf conflicter
		if errors.As(err, &cf) && cf.Conflict() {
			logger.Warn().Err(err).Msg("booking race detected")
			metrics.IncSubmission("conflict")
			c.publish(events.BookingRaceDetected, draft.VenueID, draft)
			c.refresh(ctx, f)
			return nil, fmt.Errorf("%w: %w", ErrBookingConflict, err)
		}

		logger.Error().Err(err).Msg("booking submission failed")
		metrics.IncSubmission("failed")
		f.setError(FailureMessage)
		c.publish(events.BookingRejected, draft.VenueID, draft)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	nights := models.Nights(sel.CheckIn, sel.CheckOut)
	conf := &Confirmation{
		Draft:    draft,
		Venue:    venue,
		CheckIn:  sel.CheckIn,
		CheckOut: sel.CheckOut,
		Nights:   nights,
		Total:    float64(nights) * venue.Price,
	}
	if created != nil {
		conf.BookingID = created.ID
	}

	f.Reset()
	metrics.IncSubmission("confirmed")
	logger.Info().Str("booking_id", conf.BookingID).Msg("booking confirmed")
	c.publish(events.BookingConfirmed, draft.VenueID, conf)
	return conf, nil
}

// refresh reloads intervals after a race. The overlap message wins when the
// new intervals explain the rejection; otherwise the generic message is set.
func (c *Controller) refresh(ctx context.Context, f *Form) {
	if c.refetch != nil {
		if err := f.Refresh(ctx, c.refetch, c.logger); err != nil {
			c.logger.Warn().Err(err).Msg("refetch after booking race failed")
		}
	}
	if f.State().ErrorMessage == "" {
		f.setError(FailureMessage)
	}
}

func (c *Controller) publish(eventType, venueID string, payload any) {
	if c.bus == nil {
		return
	}
	event, err := events.NewEvent(eventType, venueID, payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	c.bus.Publish(event)
}
