// Package availability turns a venue's bookings into blocked calendar
// intervals and answers day and range queries against them.
package availability

import (
	"context"
	"time"

	"holidaze/internal/models"

	"github.com/rs/zerolog"
)

// Interval is a closed range of booked calendar days.
type Interval struct {
	Start time.Time
	End   time.Time
}

// BuildIntervals derives one interval per booking, in input order.
// Intervals are neither merged nor sorted.
func BuildIntervals(bookings []models.Booking) []Interval {
	intervals := make([]Interval, 0, len(bookings))
	for i := range bookings {
		intervals = append(intervals, Interval{
			Start: bookings[i].From(),
			End:   bookings[i].To(),
		})
	}
	return intervals
}

// IsDateBlocked reports whether date falls inside any interval, both ends
// inclusive, at day granularity.
func IsDateBlocked(date time.Time, intervals []Interval) bool {
	d := models.Day(date)
	for _, iv := range intervals {
		if !d.Before(models.Day(iv.Start)) && !d.After(models.Day(iv.End)) {
			return true
		}
	}
	return false
}

// RangesOverlap reports whether the closed range [start, end] shares any
// instant with an interval. Starts are normalised to 00:00 and ends to the
// last nanosecond of their calendar day.
func RangesOverlap(start, end time.Time, intervals []Interval) bool {
	s := startOfDay(start)
	e := endOfDay(end)
	for _, iv := range intervals {
		if !s.After(endOfDay(iv.End)) && !e.Before(startOfDay(iv.Start)) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	return models.Day(t)
}

func endOfDay(t time.Time) time.Time {
	return models.AddDays(t, 1).Add(-time.Nanosecond)
}

// Set is an immutable collection of intervals for one venue.
// A nil *Set behaves as an empty set.
type Set struct {
	intervals []Interval
}

// NewSet builds a set from bookings.
func NewSet(bookings []models.Booking) *Set {
	return &Set{intervals: BuildIntervals(bookings)}
}

// Blocked reports whether the calendar day is booked.
func (s *Set) Blocked(day time.Time) bool {
	if s == nil {
		return false
	}
	return IsDateBlocked(day, s.intervals)
}

// Overlaps reports whether [start, end] intersects any booked interval.
func (s *Set) Overlaps(start, end time.Time) bool {
	if s == nil {
		return false
	}
	return RangesOverlap(start, end, s.intervals)
}

// Intervals returns a copy of the intervals.
func (s *Set) Intervals() []Interval {
	if s == nil {
		return nil
	}
	return append([]Interval(nil), s.intervals...)
}

// Len returns the number of intervals.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.intervals)
}

// Fetcher loads the bookings of a venue.
type Fetcher interface {
	VenueBookings(ctx context.Context, venueID string) ([]models.Booking, error)
}

// Load fetches bookings and builds the interval set. A failed fetch yields
// an empty set so the calendar stays usable; the error is still returned for
// callers that want to report it.
func Load(ctx context.Context, f Fetcher, venueID string, logger zerolog.Logger) (*Set, error) {
	bookings, err := f.VenueBookings(ctx, venueID)
	if err != nil {
		logger.Warn().Err(err).Str("venue_id", venueID).Msg("failed to load venue bookings; treating all dates as available")
		return &Set{}, err
	}
	logger.Debug().Str("venue_id", venueID).Int("bookings", len(bookings)).Msg("availability loaded")
	return NewSet(bookings), nil
}
