// Package notify sends booking notifications to a Telegram chat.
package notify

import (
	"fmt"
	"net/http"
	"time"

	"holidaze/internal/booking"
	"holidaze/internal/events"
	"holidaze/internal/format"
	"holidaze/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender is the part of the bot API used here.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Subscriber is where the notifier listens for events.
type Subscriber interface {
	SubscribeAsync(eventType string, handler events.EventHandler)
}

// sendTimeout bounds each bot API request.
const sendTimeout = 10 * time.Second

// TelegramNotifier posts a summary of each confirmed booking.
type TelegramNotifier struct {
	sender TelegramSender
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier connects to the bot API with token.
func NewTelegramNotifier(token string, chatID int64, logger zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: sendTimeout})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return NewTelegramNotifierWithSender(bot, chatID, logger), nil
}

// NewTelegramNotifierWithSender uses an existing sender.
func NewTelegramNotifierWithSender(sender TelegramSender, chatID int64, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		chatID: chatID,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Attach subscribes the notifier to confirmed bookings. Sends run off the
// publishing goroutine so a slow bot API never holds up a submission.
func (n *TelegramNotifier) Attach(bus Subscriber) {
	bus.SubscribeAsync(events.BookingConfirmed, n.HandleConfirmed)
}

// HandleConfirmed sends the booking summary for a BookingConfirmed event.
func (n *TelegramNotifier) HandleConfirmed(e events.Event) error {
	var conf booking.Confirmation
	if err := e.Decode(&conf); err != nil {
		metrics.IncNotification("invalid")
		return fmt.Errorf("decode confirmation: %w", err)
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatConfirmation(&conf))
	if _, err := n.sender.Send(msg); err != nil {
		metrics.IncNotification("failed")
		n.logger.Error().Err(err).Str("venue_id", e.VenueID).Msg("failed to send booking notification")
		return err
	}
	metrics.IncNotification("sent")
	return nil
}

// FormatConfirmation renders the notification text.
func FormatConfirmation(c *booking.Confirmation) string {
	text := fmt.Sprintf("New booking: %s\n%s\n%d guest(s), %d night(s)\nTotal: %s",
		c.Venue.Title(),
		format.DateRange(c.CheckIn, c.CheckOut),
		c.Draft.Guests,
		c.Nights,
		format.Price(c.Total),
	)
	if c.BookingID != "" {
		text += "\nRef: " + c.BookingID
	}
	return text
}
