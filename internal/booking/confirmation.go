package booking

import (
	"fmt"
	"io"
	"time"

	"holidaze/internal/format"
	"holidaze/internal/models"
)

// Confirmation is what the confirmation view shows after a successful
// submission.
type Confirmation struct {
	BookingID string              `json:"bookingId,omitempty"`
	Draft     models.BookingDraft `json:"draft"`
	Venue     models.Venue        `json:"venue"`
	CheckIn   time.Time           `json:"checkIn"`
	CheckOut  time.Time           `json:"checkOut"`
	Nights    int                 `json:"nights"`
	Total     float64             `json:"total"`
}

// Render writes the confirmation. A nil confirmation renders the
// missing-details fallback.
func (c *Confirmation) Render(w io.Writer) error {
	if c == nil {
		_, err := fmt.Fprintln(w, "Booking details are missing\nPlease try again from the venue page.")
		return err
	}

	guests := "guest"
	if c.Draft.Guests != 1 {
		guests = "guests"
	}
	nights := "night"
	if c.Nights != 1 {
		nights = "nights"
	}

	_, err := fmt.Fprintf(w,
		"Booking confirmed!\n\n%s\n%s\n%s\n%d %s, %d %s\nTotal: $%s\n",
		c.Venue.Title(),
		c.Venue.Location.String(),
		format.DateRange(c.CheckIn, c.CheckOut),
		c.Nights, nights,
		c.Draft.Guests, guests,
		format.Price(c.Total),
	)
	if err != nil {
		return err
	}
	if c.BookingID != "" {
		_, err = fmt.Fprintf(w, "Reference: %s\n", c.BookingID)
	}
	return err
}
