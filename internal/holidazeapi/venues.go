package holidazeapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"holidaze/internal/models"
)

// ListOptions controls venue list paging and order.
type ListOptions struct {
	Page      int
	Limit     int
	Sort      string
	SortOrder string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.SortOrder != "" {
		q.Set("sortOrder", o.SortOrder)
	}
	return q
}

func (o ListOptions) key() string {
	return fmt.Sprintf("%d:%d:%s:%s", o.Page, o.Limit, o.Sort, o.SortOrder)
}

// Include selects the relations expanded on a single venue.
type Include struct {
	Owner    bool
	Bookings bool
}

// ListVenues returns one page of venues.
func (c *Client) ListVenues(ctx context.Context, opts ListOptions) ([]models.Venue, models.PageMeta, error) {
	cacheKey := "venues:list:" + opts.key()
	var env models.Envelope[[]models.Venue]

	if c.readCache(ctx, cacheKey, &env) {
		return env.Data, env.Meta, nil
	}
	if err := c.doGet(ctx, "venues.list", "/holidaze/venues", opts.query(), &env); err != nil {
		return nil, models.PageMeta{}, fmt.Errorf("list venues: %w", err)
	}
	c.writeCache(ctx, cacheKey, env)
	return env.Data, env.Meta, nil
}

// SearchVenues runs the server-side venue search.
func (c *Client) SearchVenues(ctx context.Context, query string, opts ListOptions) ([]models.Venue, models.PageMeta, error) {
	cacheKey := "venues:search:" + url.QueryEscape(query) + ":" + opts.key()
	var env models.Envelope[[]models.Venue]

	if c.readCache(ctx, cacheKey, &env) {
		return env.Data, env.Meta, nil
	}
	q := opts.query()
	q.Set("q", query)
	if err := c.doGet(ctx, "venues.search", "/holidaze/venues/search", q, &env); err != nil {
		return nil, models.PageMeta{}, fmt.Errorf("search venues: %w", err)
	}
	c.writeCache(ctx, cacheKey, env)
	return env.Data, env.Meta, nil
}

// GetVenue fetches one venue. Responses that include bookings are never
// cached so availability is always fresh.
func (c *Client) GetVenue(ctx context.Context, id string, inc Include) (*models.Venue, error) {
	q := url.Values{}
	if inc.Owner {
		q.Set("_owner", "true")
	}
	if inc.Bookings {
		q.Set("_bookings", "true")
	}

	cacheKey := venueCacheKey(id, inc.Owner)
	var env models.Envelope[models.Venue]

	if !inc.Bookings && c.readCache(ctx, cacheKey, &env) {
		return &env.Data, nil
	}
	if err := c.doGet(ctx, "venues.get", "/holidaze/venues/"+url.PathEscape(id), q, &env); err != nil {
		return nil, fmt.Errorf("get venue %s: %w", id, err)
	}
	if !inc.Bookings {
		c.writeCache(ctx, cacheKey, env)
	}
	return &env.Data, nil
}

// VenueBookings returns the existing bookings of a venue.
func (c *Client) VenueBookings(ctx context.Context, venueID string) ([]models.Booking, error) {
	venue, err := c.GetVenue(ctx, venueID, Include{Bookings: true})
	if err != nil {
		return nil, err
	}
	return venue.Bookings, nil
}

// ProfileVenues lists the venues a venue manager owns, with their bookings.
func (c *Client) ProfileVenues(ctx context.Context, profileName string) ([]models.Venue, error) {
	q := url.Values{}
	q.Set("_bookings", "true")

	var env models.Envelope[[]models.Venue]
	path := "/holidaze/profiles/" + url.PathEscape(profileName) + "/venues"
	if err := c.doGet(ctx, "profiles.venues", path, q, &env); err != nil {
		return nil, fmt.Errorf("list venues of %s: %w", profileName, err)
	}
	return env.Data, nil
}

func venueCacheKey(id string, owner bool) string {
	if owner {
		return "venue:" + id + ":owner"
	}
	return "venue:" + id
}
