package booking

import (
	"bytes"
	"testing"

	"holidaze/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmation_Render(t *testing.T) {
	conf := &Confirmation{
		BookingID: "bk-1",
		Draft:     models.BookingDraft{DateFrom: "2025-06-16", DateTo: "2025-06-18", Guests: 2, VenueID: "venue-1"},
		Venue:     testVenue(),
		CheckIn:   day(2025, 6, 16),
		CheckOut:  day(2025, 6, 18),
		Nights:    2,
		Total:     2400,
	}

	var buf bytes.Buffer
	require.NoError(t, conf.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "Fjord Cabin")
	assert.Contains(t, out, "Bergen, Norway")
	assert.Contains(t, out, "16–18 Jun 2025")
	assert.Contains(t, out, "2 nights, 2 guests")
	assert.Contains(t, out, "Total: $2 400")
	assert.Contains(t, out, "Reference: bk-1")
}

func TestConfirmation_RenderMissing(t *testing.T) {
	var conf *Confirmation
	var buf bytes.Buffer
	require.NotPanics(t, func() {
		require.NoError(t, conf.Render(&buf))
	})
	assert.Equal(t, "Booking details are missing\nPlease try again from the venue page.\n", buf.String())
}
