package models

import (
	"math"
	"time"
)

// Booking is a confirmed reservation as returned by the Holidaze API.
type Booking struct {
	ID       string    `json:"id"`
	DateFrom time.Time `json:"dateFrom"`
	DateTo   time.Time `json:"dateTo"`
	Guests   int       `json:"guests"`
	Created  time.Time `json:"created,omitempty"`
	Updated  time.Time `json:"updated,omitempty"`
	Customer *Profile  `json:"customer,omitempty"`
	Venue    *Venue    `json:"venue,omitempty"`
}

// From returns the first booked calendar date.
func (b *Booking) From() time.Time {
	return Day(b.DateFrom)
}

// To returns the last booked calendar date.
func (b *Booking) To() time.Time {
	return Day(b.DateTo)
}

// Nights returns the number of nights covered by the booking.
func (b *Booking) Nights() int {
	return Nights(b.DateFrom, b.DateTo)
}

// ContainsDate checks if the booking covers a specific calendar date.
func (b *Booking) ContainsDate(date time.Time) bool {
	d := Day(date)
	return !d.Before(b.From()) && !d.After(b.To())
}

// OverlapsWith checks if two bookings share at least one calendar day.
// Both ends are inclusive.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return !b.To().Before(other.From()) && !other.To().Before(b.From())
}

// BookingDraft is the payload for POST /holidaze/bookings.
// Dates are plain YYYY-MM-DD strings with no time of day or offset.
type BookingDraft struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests"`
	VenueID  string `json:"venueId"`
}

// NewBookingDraft builds a draft from calendar dates.
func NewBookingDraft(venueID string, checkIn, checkOut time.Time, guests int) BookingDraft {
	return BookingDraft{
		DateFrom: FormatDay(checkIn),
		DateTo:   FormatDay(checkOut),
		Guests:   guests,
		VenueID:  venueID,
	}
}

// Nights is ceil((to - from) / 1 day), never less than 1.
func Nights(from, to time.Time) int {
	diff := Day(to).Sub(Day(from))
	n := int(math.Ceil(diff.Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}
