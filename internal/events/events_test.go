package events

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	var got []string
	bus.Subscribe(BookingConfirmed, func(e Event) error {
		got = append(got, "first:"+e.VenueID)
		return errors.New("ignored")
	})
	bus.Subscribe(BookingConfirmed, func(e Event) error {
		got = append(got, "second:"+e.VenueID)
		return nil
	})
	bus.Subscribe(BookingRejected, func(e Event) error {
		got = append(got, "rejected")
		return nil
	})

	bus.Publish(Event{Type: BookingConfirmed, VenueID: "v1"})

	assert.Equal(t, []string{"first:v1", "second:v1"}, got)
}

func TestEventBus_FillsIDAndTime(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	var seen Event
	bus.Subscribe(BookingCancelled, func(e Event) error {
		seen = e
		return nil
	})
	bus.Publish(Event{Type: BookingCancelled})
	assert.NotEmpty(t, seen.ID)
	assert.False(t, seen.CreatedAt.IsZero())
}

func TestEventBus_SubscribeAsyncDoesNotBlockPublish(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	release := make(chan struct{})
	var done atomic.Bool
	bus.SubscribeAsync(BookingConfirmed, func(e Event) error {
		<-release
		done.Store(true)
		return errors.New("logged, not returned")
	})

	start := time.Now()
	bus.Publish(Event{Type: BookingConfirmed, VenueID: "v1"})
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.False(t, done.Load())

	close(release)
	bus.Wait()
	assert.True(t, done.Load())
}

func TestNewEvent_Payload(t *testing.T) {
	e, err := NewEvent(BookingRaceDetected, "v9", map[string]string{"dateFrom": "2025-06-16"})
	require.NoError(t, err)
	assert.Equal(t, "v9", e.VenueID)

	var payload map[string]string
	require.NoError(t, e.Decode(&payload))
	assert.Equal(t, "2025-06-16", payload["dateFrom"])
}
