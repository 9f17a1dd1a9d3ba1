package holidazeapi

import (
	"context"
	"fmt"
	"net/url"

	"holidaze/internal/models"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Password     string        `json:"password"`
	Avatar       *models.Media `json:"avatar,omitempty"`
	VenueManager bool          `json:"venueManager,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a profile and access token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthProfile, error) {
	q := url.Values{}
	q.Set("_holidaze", "true")

	var env models.Envelope[models.AuthProfile]
	if err := c.doPost(ctx, "auth.login", "/auth/login", q, loginRequest{Email: email, Password: password}, &env); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &env.Data, nil
}

// Register creates a new profile.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.Profile, error) {
	var env models.Envelope[models.Profile]
	if err := c.doPost(ctx, "auth.register", "/auth/register", nil, req, &env); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &env.Data, nil
}
