// Package auth manages the logged-in session: login, registration, logout
// and the credentials handed to the API client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"holidaze/internal/holidazeapi"
	"holidaze/internal/models"

	"github.com/rs/zerolog"
)

// Storage keys.
const (
	KeyAccessToken = "accessToken"
	KeyProfile     = "profile"
)

var (
	// ErrNoToken is returned when login succeeds without an access token.
	ErrNoToken = errors.New("login returned no access token")
	// ErrNotLoggedIn is returned when no profile is stored.
	ErrNotLoggedIn = errors.New("you are not logged in")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Store persists values between runs.
type Store interface {
	Save(ctx context.Context, key string, v any) error
	Load(ctx context.Context, key string, out any) error
	Delete(ctx context.Context, key string) error
}

// API is the subset of the Holidaze client used for authentication.
type API interface {
	Login(ctx context.Context, email, password string) (*models.AuthProfile, error)
	Register(ctx context.Context, req holidazeapi.RegisterRequest) (*models.Profile, error)
}

// Service logs users in and out and exposes their credentials.
type Service struct {
	api    API
	store  Store
	apiKey string
	logger zerolog.Logger
}

// NewService builds an auth service. apiKey is attached to every credential.
func NewService(api API, store Store, apiKey string, logger zerolog.Logger) *Service {
	return &Service{
		api:    api,
		store:  store,
		apiKey: apiKey,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// SetAPI sets the API used for login and registration.
func (s *Service) SetAPI(api API) {
	s.api = api
}

// Login authenticates and stores the token and profile.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, ErrNoToken
	}

	if err := s.store.Save(ctx, KeyAccessToken, res.AccessToken); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	profile := res.Profile
	if err := s.store.Save(ctx, KeyProfile, profile); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	s.logger.Info().Str("profile", profile.Name).Msg("logged in")
	return &profile, nil
}

// Register validates the request and creates the profile.
func (s *Service) Register(ctx context.Context, req holidazeapi.RegisterRequest) (*models.Profile, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}
	profile, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("profile", profile.Name).Msg("registered")
	return profile, nil
}

// ValidateRegistration applies the API's registration rules client-side.
func ValidateRegistration(req holidazeapi.RegisterRequest) error {
	var problems []string
	if !nameRe.MatchString(req.Name) {
		problems = append(problems, "name may only contain letters, numbers and underscores")
	}
	if !strings.HasSuffix(strings.ToLower(req.Email), "@stud.noroff.no") {
		problems = append(problems, "email must be a stud.noroff.no address")
	}
	if len(req.Password) < 8 {
		problems = append(problems, "password must be at least 8 characters")
	}
	if req.Avatar != nil && req.Avatar.URL != "" && !strings.HasPrefix(req.Avatar.URL, "http") {
		problems = append(problems, "avatar must be a valid URL")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Logout forgets the stored token and profile.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyAccessToken); err != nil {
		return err
	}
	return s.store.Delete(ctx, KeyProfile)
}

// Profile returns the stored profile.
func (s *Service) Profile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := s.store.Load(ctx, KeyProfile, &p); err != nil {
		return nil, ErrNotLoggedIn
	}
	return &p, nil
}

// Credentials returns the stored token with the configured API key. A
// missing token yields anonymous credentials.
func (s *Service) Credentials() holidazeapi.Credentials {
	var token string
	if err := s.store.Load(context.Background(), KeyAccessToken, &token); err != nil {
		token = ""
	}
	return holidazeapi.Credentials{AccessToken: token, APIKey: s.apiKey}
}
