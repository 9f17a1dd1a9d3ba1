package models

import "strings"

// Media is an image attached to a venue or profile.
type Media struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Meta lists venue amenities.
type Meta struct {
	Wifi      bool `json:"wifi"`
	Parking   bool `json:"parking"`
	Breakfast bool `json:"breakfast"`
	Pets      bool `json:"pets"`
}

// Location describes where a venue is.
type Location struct {
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	Zip       string  `json:"zip,omitempty"`
	Country   string  `json:"country,omitempty"`
	Continent string  `json:"continent,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
}

// String returns "City, Country" or a placeholder.
func (l Location) String() string {
	if l.City != "" && l.Country != "" {
		return l.City + ", " + l.Country
	}
	return "Location not available"
}

// Venue is a bookable listing.
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Media       []Media   `json:"media,omitempty"`
	Price       float64   `json:"price"`
	MaxGuests   int       `json:"maxGuests"`
	Rating      float64   `json:"rating,omitempty"`
	Meta        Meta      `json:"meta"`
	Location    Location  `json:"location"`
	Owner       *Profile  `json:"owner,omitempty"`
	Bookings    []Booking `json:"bookings,omitempty"`
	Count       *Count    `json:"_count,omitempty"`
}

// Count carries aggregate counters returned with a venue.
type Count struct {
	Bookings int `json:"bookings"`
}

// Title returns the venue name or a placeholder.
func (v *Venue) Title() string {
	if strings.TrimSpace(v.Name) == "" {
		return "Venue title not available"
	}
	return v.Name
}

// Matches reports whether the venue's name, description, city or country
// contains the lower-cased query.
func (v *Venue) Matches(query string) bool {
	if query == "" {
		return true
	}
	for _, field := range []string{v.Name, v.Description, v.Location.City, v.Location.Country} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
