// Package server hosts booking forms over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"holidaze/internal/booking"
	"holidaze/internal/holidazeapi"
	"holidaze/internal/metrics"
	"holidaze/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// API is the part of the Holidaze client the server uses.
type API interface {
	GetVenue(ctx context.Context, id string, inc holidazeapi.Include) (*models.Venue, error)
	VenueBookings(ctx context.Context, venueID string) ([]models.Booking, error)
	CreateBooking(ctx context.Context, draft models.BookingDraft) (*models.Booking, error)
}

// Options configures an HTTPServer.
type Options struct {
	APIKey         string
	Location       *time.Location
	SessionTimeout time.Duration
	Now            func() time.Time
}

// HTTPServer serves the booking form API.
type HTTPServer struct {
	api        API
	sessions   *booking.SessionStore
	controller *booking.Controller
	apiKey     string
	loc        *time.Location
	now        func() time.Time
	baseCtx    context.Context
	logger     zerolog.Logger
}

// New builds the server. Form sessions live until ctx is cancelled or they
// expire.
func New(ctx context.Context, api API, bus booking.Publisher, opts Options, logger zerolog.Logger) *HTTPServer {
	logger = logger.With().Str("component", "server").Logger()
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &HTTPServer{
		api:        api,
		sessions:   booking.NewSessionStore(opts.SessionTimeout),
		controller: booking.NewController(api, bus, logger).WithRefetch(api),
		apiKey:     opts.APIKey,
		loc:        opts.Location,
		now:        opts.Now,
		baseCtx:    ctx,
		logger:     logger,
	}
}

// Handler returns the routed API.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/forms", s.handleCreateForm)
	mux.HandleFunc("GET /api/forms/{id}", s.handleGetForm)
	mux.HandleFunc("DELETE /api/forms/{id}", s.handleDeleteForm)
	mux.HandleFunc("PUT /api/forms/{id}/check-in", s.handleCheckIn)
	mux.HandleFunc("PUT /api/forms/{id}/check-out", s.handleCheckOut)
	mux.HandleFunc("PUT /api/forms/{id}/guests", s.handleGuests)
	mux.HandleFunc("GET /api/forms/{id}/calendar", s.handleCalendar)
	mux.HandleFunc("POST /api/forms/{id}/submit", s.handleSubmit)
	return s.withRequestContext(mux)
}

// Sessions exposes the form session store.
func (s *HTTPServer) Sessions() *booking.SessionStore {
	return s.sessions
}

// Run serves on port until ctx is done, cleaning up idle forms meanwhile.
// It returns an error when the port cannot be bound.
func (s *HTTPServer) Run(ctx context.Context, port int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.sessions.Run(ctx, time.Minute, func(removed, remaining int) {
		metrics.SetActiveForms(remaining)
		if removed > 0 {
			s.logger.Debug().Int("removed", removed).Msg("expired forms cleaned up")
		}
	})
	defer s.sessions.Close()

	s.logger.Info().Int("port", port).Msg("booking API listening")
	return listen(ctx, port, s.Handler())
}

// withRequestContext tags each request with an id and forwards the
// caller's bearer token as API credentials.
func (s *HTTPServer) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := holidazeapi.ContextWithCredentials(r.Context(), s.requestCredentials(r))
		logger := s.logger.With().Str("request_id", requestID).Logger()
		ctx = logger.WithContext(ctx)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
