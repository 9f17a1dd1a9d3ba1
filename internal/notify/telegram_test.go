package notify

import (
	"errors"
	"testing"
	"time"

	"holidaze/internal/booking"
	"holidaze/internal/events"
	"holidaze/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

func confirmation() *booking.Confirmation {
	return &booking.Confirmation{
		BookingID: "bk-1",
		Draft:     models.BookingDraft{DateFrom: "2025-06-16", DateTo: "2025-06-18", Guests: 2, VenueID: "v1"},
		Venue:     models.Venue{ID: "v1", Name: "Fjord Cabin", Price: 1200},
		CheckIn:   time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC),
		Nights:    2,
		Total:     2400,
	}
}

func TestTelegramNotifier_SendsOnConfirmed(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42 && msg.Text == FormatConfirmation(confirmation())
	})).Return(nil).Once()

	n := NewTelegramNotifierWithSender(sender, 42, zerolog.Nop())
	bus := events.NewEventBus(zerolog.Nop())
	n.Attach(bus)

	e, err := events.NewEvent(events.BookingConfirmed, "v1", confirmation())
	require.NoError(t, err)
	bus.Publish(e)
	bus.Wait()

	sender.AssertExpectations(t)
}

type blockingSender struct {
	release chan struct{}
	sent    chan tgbotapi.Chattable
}

func (b *blockingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	<-b.release
	b.sent <- c
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier_SlowSendDoesNotBlockPublish(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{}), sent: make(chan tgbotapi.Chattable, 1)}
	n := NewTelegramNotifierWithSender(sender, 42, zerolog.Nop())
	bus := events.NewEventBus(zerolog.Nop())
	n.Attach(bus)

	e, err := events.NewEvent(events.BookingConfirmed, "v1", confirmation())
	require.NoError(t, err)

	start := time.Now()
	bus.Publish(e)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, sender.sent)

	close(sender.release)
	bus.Wait()
	require.Len(t, sender.sent, 1)
	msg := (<-sender.sent).(tgbotapi.MessageConfig)
	assert.Equal(t, int64(42), msg.ChatID)
}

func TestTelegramNotifier_SendFailure(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(errors.New("telegram down"))
	n := NewTelegramNotifierWithSender(sender, 42, zerolog.Nop())

	e, err := events.NewEvent(events.BookingConfirmed, "v1", confirmation())
	require.NoError(t, err)
	assert.Error(t, n.HandleConfirmed(e))
}

func TestTelegramNotifier_BadPayload(t *testing.T) {
	sender := &mockSender{}
	n := NewTelegramNotifierWithSender(sender, 42, zerolog.Nop())
	assert.Error(t, n.HandleConfirmed(events.Event{Type: events.BookingConfirmed, Payload: []byte("{")}))
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestFormatConfirmation(t *testing.T) {
	text := FormatConfirmation(confirmation())
	assert.Contains(t, text, "Fjord Cabin")
	assert.Contains(t, text, "16–18 Jun 2025")
	assert.Contains(t, text, "Total: 2 400")
	assert.Contains(t, text, "Ref: bk-1")
}
