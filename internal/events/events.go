package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Booking lifecycle event types.
const (
	BookingConfirmed    = "booking.confirmed"
	BookingRejected     = "booking.rejected"
	BookingRaceDetected = "booking.race_detected"
	BookingCancelled    = "booking.cancelled"
)

// Event represents a lightweight domain event.
type Event struct {
	ID        string
	Type      string
	VenueID   string
	Payload   []byte
	CreatedAt time.Time
}

// NewEvent builds an event with a JSON payload.
func NewEvent(eventType, venueID string, payload any) (Event, error) {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		VenueID:   venueID,
		Payload:   data,
		CreatedAt: time.Now(),
	}, nil
}

// Decode unmarshals the payload into out.
func (e Event) Decode(out any) error {
	return json.Unmarshal(e.Payload, out)
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	inflight    sync.WaitGroup
	logger      zerolog.Logger
}

// NewEventBus constructs an empty bus.
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		logger:      logger.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAsync registers a handler that runs on its own goroutine, so
// Publish does not wait for it. Handlers doing network I/O belong here.
func (b *EventBus) SubscribeAsync(eventType string, handler EventHandler) {
	b.Subscribe(eventType, func(event Event) error {
		b.inflight.Add(1)
		go func() {
			defer b.inflight.Done()
			if err := handler(event); err != nil {
				b.logger.Warn().Err(err).Str("event_type", event.Type).Str("event_id", event.ID).Msg("async event handler failed")
			}
		}()
		return nil
	})
}

// Wait blocks until every async handler started so far has returned.
func (b *EventBus) Wait() {
	b.inflight.Wait()
}

// Publish notifies subscribers of the event type. Handlers registered with
// Subscribe run synchronously and must not block; a failing handler does not
// stop the others.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("event_type", event.Type).Str("event_id", event.ID).Msg("event handler failed")
		}
	}
}
