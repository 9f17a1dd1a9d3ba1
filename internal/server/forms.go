package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"holidaze/internal/booking"
	"holidaze/internal/calendar"
	"holidaze/internal/holidazeapi"
	"holidaze/internal/metrics"
	"holidaze/internal/models"

	"github.com/rs/zerolog"
)

type createFormRequest struct {
	VenueID string `json:"venueId"`
}

type dateRequest struct {
	Date string `json:"date"`
}

type guestsRequest struct {
	Guests int `json:"guests"`
}

type stateResponse struct {
	ID            string  `json:"id"`
	VenueID       string  `json:"venueId"`
	VenueName     string  `json:"venueName"`
	CheckIn       string  `json:"checkIn"`
	CheckOut      string  `json:"checkOut"`
	Guests        int     `json:"guests"`
	MaxGuests     int     `json:"maxGuests"`
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"pricePerNight"`
	Total         float64 `json:"total"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
	Loading       bool    `json:"loading"`
	Busy          bool    `json:"busy"`
}

type calendarDay struct {
	Date       string `json:"date"`
	InMonth    bool   `json:"inMonth"`
	InRange    bool   `json:"inRange"`
	Booked     bool   `json:"booked"`
	Selectable bool   `json:"selectable"`
	Past       bool   `json:"past"`
}

type calendarResponse struct {
	Month string           `json:"month"`
	Weeks [][7]calendarDay `json:"weeks"`
}

type validationResponse struct {
	Error  string               `json:"error"`
	Fields []booking.FieldError `json:"fields"`
}

func toStateResponse(sess *booking.Session) stateResponse {
	st := sess.Form.State()
	venue := sess.Form.Venue()
	return stateResponse{
		ID:            sess.ID,
		VenueID:       st.VenueID,
		VenueName:     venue.Title(),
		CheckIn:       models.FormatDay(st.CheckIn),
		CheckOut:      models.FormatDay(st.CheckOut),
		Guests:        st.Guests,
		MaxGuests:     st.MaxGuests,
		Nights:        st.Nights,
		PricePerNight: st.PricePerNight,
		Total:         st.Total,
		ErrorMessage:  st.ErrorMessage,
		Loading:       st.Loading,
		Busy:          st.Busy,
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// handleCreateForm fetches the venue and opens a form for it. Bookings load
// in the background under the session scope.
func (s *HTTPServer) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.VenueID = strings.TrimSpace(req.VenueID)
	if req.VenueID == "" {
		writeError(w, http.StatusBadRequest, "venueId is required")
		return
	}

	logger := zerolog.Ctx(r.Context())
	venue, err := s.api.GetVenue(r.Context(), req.VenueID, holidazeapi.Include{Owner: true})
	if err != nil {
		if holidazeapi.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "venue not found")
			return
		}
		logger.Error().Err(err).Str("venue_id", req.VenueID).Msg("failed to load venue")
		writeError(w, http.StatusBadGateway, "failed to load venue")
		return
	}

	form := booking.NewLoadingForm(*venue, models.Today(s.now(), s.loc))
	// The load outlives the request, so credentials are carried over
	// explicitly onto the server's base context.
	parent := holidazeapi.ContextWithCredentials(s.baseCtx, s.requestCredentials(r))
	sess := s.sessions.Create(parent, form)
	sess.Scope.Go(func(ctx context.Context) {
		if err := form.Refresh(ctx, s.api, s.logger); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("form_id", sess.ID).Msg("availability load failed")
		}
	})
	metrics.SetActiveForms(s.sessions.Len())

	writeJSON(w, http.StatusCreated, toStateResponse(sess))
}

func (s *HTTPServer) session(w http.ResponseWriter, r *http.Request) *booking.Session {
	sess := s.sessions.Get(r.PathValue("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "form not found")
		return nil
	}
	return sess
}

func (s *HTTPServer) handleGetForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, toStateResponse(sess))
}

func (s *HTTPServer) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	if sess := s.session(w, r); sess == nil {
		return
	}
	s.sessions.Delete(r.PathValue("id"))
	metrics.SetActiveForms(s.sessions.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) readDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	var req dateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return time.Time{}, false
	}
	d, err := models.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return time.Time{}, false
	}
	return d, true
}

func (s *HTTPServer) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	d, ok := s.readDate(w, r)
	if !ok {
		return
	}
	if _, err := sess.Form.CheckInChanged(d); err != nil {
		if errors.Is(err, booking.ErrPastCheckIn) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toStateResponse(sess))
}

func (s *HTTPServer) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	d, ok := s.readDate(w, r)
	if !ok {
		return
	}
	sess.Form.CheckOutChanged(d)
	writeJSON(w, http.StatusOK, toStateResponse(sess))
}

func (s *HTTPServer) handleGuests(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req guestsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sess.Form.SetGuests(req.Guests)
	writeJSON(w, http.StatusOK, toStateResponse(sess))
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	q := r.URL.Query()
	st := sess.Form.State()
	year, month := st.CheckIn.Year(), st.CheckIn.Month()
	if m := q.Get("month"); m != "" {
		var err error
		year, month, err = calendar.ParseMonth(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
	}
	picker := booking.PickCheckIn
	switch q.Get("picker") {
	case "", "check-in":
	case "check-out":
		picker = booking.PickCheckOut
	default:
		writeError(w, http.StatusBadRequest, "picker must be check-in or check-out")
		return
	}

	grid := calendar.Month(year, month, sess.Form, picker)
	resp := calendarResponse{
		Month: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		Weeks: make([][7]calendarDay, len(grid.Weeks)),
	}
	for i, week := range grid.Weeks {
		for j, d := range week {
			resp.Weeks[i][j] = calendarDay{
				Date:       models.FormatDay(d.Date),
				InMonth:    d.InMonth,
				InRange:    d.InRange,
				Booked:     d.Booked,
				Selectable: d.Selectable,
				Past:       d.Past,
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	conf, err := s.controller.Submit(r.Context(), sess.Form)
	if err != nil {
		var verr *booking.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "invalid booking", Fields: verr.Fields})
		case errors.Is(err, booking.ErrSubmitInFlight):
			writeError(w, http.StatusTooManyRequests, "submission already in progress")
		case errors.Is(err, booking.ErrRangeOverlap), errors.Is(err, booking.ErrBookingConflict):
			writeError(w, http.StatusConflict, sess.Form.State().ErrorMessage)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request cancelled")
		default:
			writeError(w, http.StatusBadGateway, booking.FailureMessage)
		}
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

func (s *HTTPServer) requestCredentials(r *http.Request) holidazeapi.Credentials {
	creds := holidazeapi.Credentials{APIKey: s.apiKey}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		creds.AccessToken = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return creds
}
