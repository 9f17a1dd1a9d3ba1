package holidazeapi

import (
	"context"
	"fmt"
	"net/url"

	"holidaze/internal/models"
)

// CreateBooking posts a booking draft. The request is sent once; callers
// decide whether to retry.
func (c *Client) CreateBooking(ctx context.Context, draft models.BookingDraft) (*models.Booking, error) {
	var env models.Envelope[models.Booking]
	if err := c.doPost(ctx, "bookings.create", "/holidaze/bookings", nil, draft, &env); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	c.invalidate(ctx, venueCacheKey(draft.VenueID, false), venueCacheKey(draft.VenueID, true))
	return &env.Data, nil
}

// DeleteBooking cancels a booking owned by the current user.
func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	if err := c.doDelete(ctx, "bookings.delete", "/holidaze/bookings/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	return nil
}

// ProfileBookings lists a profile's bookings with venue and customer
// expanded.
func (c *Client) ProfileBookings(ctx context.Context, profileName string) ([]models.Booking, error) {
	q := url.Values{}
	q.Set("_venue", "true")
	q.Set("_customer", "true")

	var env models.Envelope[[]models.Booking]
	path := "/holidaze/profiles/" + url.PathEscape(profileName) + "/bookings"
	if err := c.doGet(ctx, "profiles.bookings", path, q, &env); err != nil {
		return nil, fmt.Errorf("list bookings of %s: %w", profileName, err)
	}
	return env.Data, nil
}
