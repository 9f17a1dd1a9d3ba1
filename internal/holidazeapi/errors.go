package holidazeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorDetail is one entry of the API error envelope.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

type errorEnvelope struct {
	Errors     []ErrorDetail `json:"errors"`
	Message    string        `json:"message"`
	Status     string        `json:"status"`
	StatusCode int           `json:"statusCode"`
}

// APIError is a non-2xx response from the Holidaze API.
type APIError struct {
	Status  int
	Message string
	Details []ErrorDetail
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Conflict reports whether the API rejected a booking because the dates
// are already taken.
func (e *APIError) Conflict() bool {
	if e.Status == http.StatusConflict {
		return true
	}
	if e.Status != http.StatusBadRequest {
		return false
	}
	texts := []string{e.Message}
	for _, d := range e.Details {
		texts = append(texts, d.Message)
	}
	for _, t := range texts {
		t = strings.ToLower(t)
		if strings.Contains(t, "conflict") || strings.Contains(t, "overlap") || strings.Contains(t, "already booked") {
			return true
		}
	}
	return false
}

// parseError builds an APIError from a response body. The message is the
// first error entry, then the top-level message, then the status text.
func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Details = env.Errors
		if len(env.Errors) > 0 && env.Errors[0].Message != "" {
			apiErr.Message = env.Errors[0].Message
		} else if env.Message != "" {
			apiErr.Message = env.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
