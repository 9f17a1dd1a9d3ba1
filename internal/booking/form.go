// Package booking implements the venue booking form: date-range selection
// against booked intervals, validation, submission and form sessions.
package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"holidaze/internal/availability"
	"holidaze/internal/models"

	"github.com/rs/zerolog"
)

// Messages shown on the form.
const (
	OverlapMessage = "The selected date range overlaps with unavailable dates. Please choose different dates."
	FailureMessage = "We could not complete your booking. Please try again."
)

// ErrPastCheckIn is returned when check-in is set before today.
var ErrPastCheckIn = errors.New("check-in cannot be in the past")

// Picker identifies which date picker a calendar day is shown in.
type Picker int

const (
	PickCheckIn Picker = iota
	PickCheckOut
)

// State is an immutable snapshot of the form.
type State struct {
	VenueID       string
	CheckIn       time.Time
	CheckOut      time.Time
	Guests        int
	MaxGuests     int
	Nights        int
	PricePerNight float64
	Total         float64
	ErrorMessage  string
	Loading       bool
	Busy          bool
}

// DayClass describes how a calendar day renders in a picker.
type DayClass struct {
	InRange    bool
	Booked     bool
	Selectable bool
	Past       bool
}

// Form is the date-range selection state for one venue. All mutations are
// serialised so the date pair and the error message change together.
type Form struct {
	mu       sync.Mutex
	venue    models.Venue
	set      *availability.Set
	today    time.Time
	checkIn  time.Time
	checkOut time.Time
	guests   int
	errMsg   string

	ready     chan struct{}
	readyOnce sync.Once
	busy      atomic.Bool
}

// NewForm creates a form whose availability is already known.
func NewForm(venue models.Venue, set *availability.Set, today time.Time) *Form {
	f := newForm(venue, today)
	f.set = set
	f.markReady()
	return f
}

// NewLoadingForm creates a form whose availability arrives later through
// Refresh or SetAvailability. Until then every date is treated as free.
func NewLoadingForm(venue models.Venue, today time.Time) *Form {
	return newForm(venue, today)
}

func newForm(venue models.Venue, today time.Time) *Form {
	venue.Bookings = nil
	f := &Form{
		venue: venue,
		today: models.Day(today),
		ready: make(chan struct{}),
	}
	f.resetLocked()
	return f
}

func (f *Form) resetLocked() {
	f.checkIn = models.AddDays(f.today, 1)
	f.checkOut = models.AddDays(f.today, 2)
	f.guests = 1
	f.errMsg = ""
}

func (f *Form) markReady() {
	f.readyOnce.Do(func() { close(f.ready) })
}

// Ready is closed once availability has been loaded or given up on.
func (f *Form) Ready() <-chan struct{} {
	return f.ready
}

// Venue returns the venue snapshot the form was created for.
func (f *Form) Venue() models.Venue {
	return f.venue
}

// Today returns the form's notion of the current day.
func (f *Form) Today() time.Time {
	return f.today
}

// CheckInChanged sets check-in. When check-out is not after the new
// check-in it is moved to the following day. The overlap message is
// recomputed against the resulting pair.
func (f *Form) CheckInChanged(d time.Time) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d = models.Day(d)
	if d.Before(f.today) {
		return f.stateLocked(), ErrPastCheckIn
	}
	f.checkIn = d
	if !f.checkOut.After(d) {
		f.checkOut = models.AddDays(d, 1)
	}
	f.recomputeLocked()
	return f.stateLocked(), nil
}

// CheckOutChanged sets check-out, clamped to at least one night after
// check-in, and recomputes the overlap message.
func (f *Form) CheckOutChanged(d time.Time) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	d = models.Day(d)
	if earliest := models.AddDays(f.checkIn, 1); d.Before(earliest) {
		d = earliest
	}
	f.checkOut = d
	f.recomputeLocked()
	return f.stateLocked()
}

// SetGuests records the guest count. Bounds are enforced by Validate.
func (f *Form) SetGuests(n int) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guests = n
	return f.stateLocked()
}

// SetAvailability replaces the booked intervals and recomputes the overlap
// message for the current selection.
func (f *Form) SetAvailability(set *availability.Set) State {
	f.mu.Lock()
	f.set = set
	f.recomputeLocked()
	st := f.stateLocked()
	f.mu.Unlock()

	f.markReady()
	st.Loading = false
	return st
}

// Availability returns the current interval set.
func (f *Form) Availability() *availability.Set {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

// Refresh reloads the venue's bookings. A result arriving after ctx is
// cancelled is discarded. A failed load keeps the previous intervals.
func (f *Form) Refresh(ctx context.Context, fetcher availability.Fetcher, logger zerolog.Logger) error {
	defer f.markReady()

	set, err := availability.Load(ctx, fetcher, f.venue.ID, logger)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	f.SetAvailability(set)
	return nil
}

// Reset restores the initial selection. Intervals are kept.
func (f *Form) Reset() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
	return f.stateLocked()
}

// State returns a snapshot with derived nights and total.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

// ClassifyDay reports how day renders in the given picker.
func (f *Form) ClassifyDay(day time.Time, picker Picker) DayClass {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := models.Day(day)
	booked := f.set.Blocked(d)
	earliest := f.today
	if picker == PickCheckOut {
		earliest = models.AddDays(f.checkIn, 1)
	}
	return DayClass{
		InRange:    !booked && !d.Before(f.checkIn) && !d.After(f.checkOut),
		Booked:     booked,
		Selectable: !booked && !d.Before(earliest),
		Past:       d.Before(f.today),
	}
}

// Validate checks the current selection.
func (f *Form) Validate() Result {
	f.mu.Lock()
	sel := f.selectionLocked()
	maxGuests := f.venue.MaxGuests
	f.mu.Unlock()
	return ValidateSelection(sel, maxGuests)
}

func (f *Form) selectionLocked() Selection {
	return Selection{
		VenueID:  f.venue.ID,
		CheckIn:  f.checkIn,
		CheckOut: f.checkOut,
		Guests:   f.guests,
	}
}

// checkOverlap re-runs the overlap test for sel and sets the message when
// it fails.
func (f *Form) checkOverlap(sel Selection) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set.Overlaps(sel.CheckIn, sel.CheckOut) {
		f.errMsg = OverlapMessage
		return true
	}
	return false
}

func (f *Form) setError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errMsg = msg
}

func (f *Form) recomputeLocked() {
	if f.set.Overlaps(f.checkIn, f.checkOut) {
		f.errMsg = OverlapMessage
		return
	}
	f.errMsg = ""
}

func (f *Form) stateLocked() State {
	nights := models.Nights(f.checkIn, f.checkOut)
	loading := true
	select {
	case <-f.ready:
		loading = false
	default:
	}
	return State{
		VenueID:       f.venue.ID,
		CheckIn:       f.checkIn,
		CheckOut:      f.checkOut,
		Guests:        f.guests,
		MaxGuests:     f.venue.MaxGuests,
		Nights:        nights,
		PricePerNight: f.venue.Price,
		Total:         float64(nights) * f.venue.Price,
		ErrorMessage:  f.errMsg,
		Loading:       loading,
		Busy:          f.busy.Load(),
	}
}
