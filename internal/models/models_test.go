package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBooking_Helpers(t *testing.T) {
	b := &Booking{
		DateFrom: time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2025, 6, 12, 11, 0, 0, 0, time.UTC),
	}

	t.Run("From/To", func(t *testing.T) {
		assert.Equal(t, day(2025, 6, 10), b.From())
		assert.Equal(t, day(2025, 6, 12), b.To())
	})

	t.Run("Nights", func(t *testing.T) {
		assert.Equal(t, 2, b.Nights())
	})

	t.Run("ContainsDate", func(t *testing.T) {
		assert.True(t, b.ContainsDate(day(2025, 6, 10)))
		assert.True(t, b.ContainsDate(day(2025, 6, 12).Add(23*time.Hour)))
		assert.False(t, b.ContainsDate(day(2025, 6, 9)))
		assert.False(t, b.ContainsDate(day(2025, 6, 13)))
	})

	t.Run("OverlapsWith", func(t *testing.T) {
		touching := &Booking{DateFrom: day(2025, 6, 12), DateTo: day(2025, 6, 14)}
		after := &Booking{DateFrom: day(2025, 6, 13), DateTo: day(2025, 6, 14)}
		assert.True(t, b.OverlapsWith(touching))
		assert.False(t, b.OverlapsWith(after))
	})
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"one night", day(2025, 9, 1), day(2025, 9, 2), 1},
		{"five nights", day(2025, 9, 1), day(2025, 9, 6), 5},
		{"same day floors at one", day(2025, 9, 1), day(2025, 9, 1), 1},
		{"reversed floors at one", day(2025, 9, 5), day(2025, 9, 1), 1},
		{"across month", day(2025, 1, 30), day(2025, 2, 2), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nights(tt.from, tt.to))
		})
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, day(2025, 6, 10), d)

	d, err = ParseDay("2025-06-10T00:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, day(2025, 6, 10), d)

	_, err = ParseDay("10.06.2025")
	assert.Error(t, err)

	_, err = ParseDay("")
	assert.Error(t, err)
}

func TestToday_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2025, 6, 10, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, day(2025, 6, 11), Today(now, loc))
	assert.Equal(t, day(2025, 6, 10), Today(now, nil))
}

func TestBookingDraft_JSON(t *testing.T) {
	draft := NewBookingDraft("v1", day(2025, 9, 1), day(2025, 9, 3), 2)
	data, err := json.Marshal(draft)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dateFrom":"2025-09-01","dateTo":"2025-09-03","guests":2,"venueId":"v1"}`, string(data))
}

func TestBooking_DecodeAPITimestamps(t *testing.T) {
	var b Booking
	err := json.Unmarshal([]byte(`{"id":"b1","dateFrom":"2025-06-10T00:00:00.000Z","dateTo":"2025-06-12T00:00:00.000Z","guests":2}`), &b)
	require.NoError(t, err)
	assert.Equal(t, day(2025, 6, 10), b.From())
	assert.Equal(t, day(2025, 6, 12), b.To())
}

func TestVenue_Helpers(t *testing.T) {
	v := &Venue{Name: "Sea Cabin", Location: Location{City: "Bergen", Country: "Norway"}}
	assert.Equal(t, "Sea Cabin", v.Title())
	assert.Equal(t, "Bergen, Norway", v.Location.String())
	assert.True(t, v.Matches("berg"))
	assert.True(t, v.Matches(""))
	assert.False(t, v.Matches("oslo"))

	empty := &Venue{}
	assert.Equal(t, "Venue title not available", empty.Title())
	assert.Equal(t, "Location not available", empty.Location.String())
}
