package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"holidaze/internal/auth"
	"holidaze/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeAPI struct {
	t       *testing.T
	drafts  []models.BookingDraft
	expired bool
	noToken bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case f.expired && r.URL.Path != "/auth/login":
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"errors":[{"message":"Invalid token"}],"statusCode":401}`)
	case r.URL.Path == "/auth/login" && f.noToken:
		_, _ = io.WriteString(w, `{"data":{"name":"kari","email":"kari@stud.noroff.no"}}`)
	case r.URL.Path == "/auth/login":
		_, _ = io.WriteString(w, `{"data":{"name":"kari","email":"kari@stud.noroff.no","accessToken":"tok-1"}}`)
	case r.URL.Path == "/holidaze/venues":
		_, _ = io.WriteString(w, `{"data":[
			{"id":"v1","name":"Fjord Cabin","price":1200,"maxGuests":4,"location":{"city":"Bergen","country":"Norway"}},
			{"id":"v2","name":"City Loft","price":900,"maxGuests":2,"location":{"city":"Oslo","country":"Norway"}}],
			"meta":{"isLastPage":true,"currentPage":1}}`)
	case r.URL.Path == "/holidaze/venues/v1":
		_, _ = io.WriteString(w, `{"data":{"id":"v1","name":"Fjord Cabin","price":1200,"maxGuests":4,"bookings":[]}}`)
	case r.URL.Path == "/holidaze/venues/v3":
		_, _ = io.WriteString(w, `{"data":{"id":"v3","name":"Lake House","price":800,"maxGuests":6,"bookings":[
			{"id":"b2","dateFrom":"2025-07-01T00:00:00.000Z","dateTo":"2025-07-03T00:00:00.000Z","guests":2},
			{"id":"b1","dateFrom":"2025-06-10T00:00:00.000Z","dateTo":"2025-06-15T00:00:00.000Z","guests":2},
			{"id":"b3","dateFrom":"2025-05-30T00:00:00.000Z","dateTo":"2025-06-02T00:00:00.000Z","guests":1}]}}`)
	case r.URL.Path == "/holidaze/bookings" && r.Method == http.MethodPost:
		assert.Equal(f.t, "Bearer tok-1", r.Header.Get("Authorization"))
		var d models.BookingDraft
		_ = json.NewDecoder(r.Body).Decode(&d)
		f.drafts = append(f.drafts, d)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":"bk-1"}}`)
	case r.URL.Path == "/holidaze/profiles/kari/venues":
		_, _ = io.WriteString(w, `{"data":[{"id":"v3","name":"Lake House","price":800,"maxGuests":6,"location":{"city":"Voss","country":"Norway"},"bookings":[
			{"id":"b1","dateFrom":"2025-06-10T00:00:00.000Z","dateTo":"2025-06-15T00:00:00.000Z","guests":2},
			{"id":"b9","dateFrom":"2099-01-10T00:00:00.000Z","dateTo":"2099-01-12T00:00:00.000Z","guests":2}]}]}`)
	case r.URL.Path == "/holidaze/profiles/kari/bookings":
		_, _ = io.WriteString(w, `{"data":[{"id":"bk-1","dateFrom":"2025-06-16T00:00:00.000Z","dateTo":"2025-06-18T00:00:00.000Z","guests":2,
			"venue":{"id":"v1","name":"Fjord Cabin","price":1200}}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"message":"not found"}]}`)
	}
}

func setup(t *testing.T) (string, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{t: t}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := "api:\n  base_url: " + srv.URL + "\n  api_key: key\n  rate_limit_per_second: 1000\n  rate_limit_burst: 1000\n" +
		"storage:\n  path: " + filepath.Join(dir, "holidaze.db") + "\n" +
		"booking:\n  timezone: UTC\n" +
		"log:\n  level: error\n  format: json\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path, api
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVenuesCommand(t *testing.T) {
	cfg, _ := setup(t)

	out, err := run(t, cfg, "venues")
	require.NoError(t, err)
	assert.Contains(t, out, "Fjord Cabin")
	assert.Contains(t, out, "Bergen, Norway")
	assert.NotContains(t, out, "More venues available")

	out, err = run(t, cfg, "venues", "--filter", "oslo")
	require.NoError(t, err)
	assert.Contains(t, out, "City Loft")
	assert.NotContains(t, out, "Fjord Cabin")
}

func TestCalendarListsBookedStays(t *testing.T) {
	cfg, _ := setup(t)

	out, err := run(t, cfg, "calendar", "v3", "--month", "2025-06")
	require.NoError(t, err)
	assert.Contains(t, out, "Lake House")
	assert.Contains(t, out, "Booked: 30 May – 02 Jun 2025, 10–15 Jun 2025\n")
	assert.NotContains(t, out, "Jul")
}

func TestBookFlow(t *testing.T) {
	cfg, api := setup(t)
	from := time.Now().UTC().AddDate(1, 0, 0)
	to := from.AddDate(0, 0, 2)

	_, err := run(t, cfg, "book", "v1", "--from", models.FormatDay(from), "--to", models.FormatDay(to))
	require.EqualError(t, err, "log in before booking")

	out, err := run(t, cfg, "login", "--email", "kari@stud.noroff.no", "--password", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as kari\n", out)

	out, err = run(t, cfg, "book", "v1", "--from", models.FormatDay(from), "--to", models.FormatDay(to), "--guests", "2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Booking confirmed!"), out)
	assert.Contains(t, out, "Total: $2 400")
	require.Len(t, api.drafts, 1)
	assert.Equal(t, models.FormatDay(from), api.drafts[0].DateFrom)
	assert.Equal(t, 2, api.drafts[0].Guests)

	_, err = run(t, cfg, "book", "v1", "--from", models.FormatDay(from), "--to", models.FormatDay(to), "--guests", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestBookRejectsDatesAsTyped(t *testing.T) {
	cfg, api := setup(t)
	_, err := run(t, cfg, "login", "--email", "kari@stud.noroff.no", "--password", "secret123")
	require.NoError(t, err)

	from := time.Now().UTC().AddDate(1, 0, 0)
	tests := []struct {
		name string
		to   time.Time
	}{
		{"check-out before check-in", from.AddDate(0, 0, -2)},
		{"same day", from},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, cfg, "book", "v1", "--from", models.FormatDay(from), "--to", models.FormatDay(tt.to))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Check-out must be at least 1 night after check-in")
			assert.Empty(t, api.drafts, "no booking may be sent")
		})
	}
}

func TestExpiredSession(t *testing.T) {
	cfg, api := setup(t)
	_, err := run(t, cfg, "login", "--email", "kari@stud.noroff.no", "--password", "secret123")
	require.NoError(t, err)
	api.expired = true

	_, err = run(t, cfg, "bookings")
	require.EqualError(t, err, "your session has expired; log in again")

	from := time.Now().UTC().AddDate(1, 0, 0)
	_, err = run(t, cfg, "book", "v1", "--from", models.FormatDay(from), "--to", models.FormatDay(from.AddDate(0, 0, 2)))
	require.EqualError(t, err, "your session has expired; log in again")

	_, err = run(t, cfg, "cancel", "bk-1")
	require.EqualError(t, err, "your session has expired; log in again")
}

func TestBookingsExport(t *testing.T) {
	cfg, _ := setup(t)
	_, err := run(t, cfg, "login", "--email", "kari@stud.noroff.no", "--password", "secret123")
	require.NoError(t, err)

	out, err := run(t, cfg, "bookings")
	require.NoError(t, err)
	assert.Contains(t, out, "16–18 Jun 2025")
	assert.Contains(t, out, "$2 400")

	xlsx := filepath.Join(t.TempDir(), "bookings.xlsx")
	out, err = run(t, cfg, "bookings", "--export", xlsx)
	require.NoError(t, err)
	assert.Equal(t, "Exported 1 bookings to "+xlsx+"\n", out)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMyVenues(t *testing.T) {
	cfg, _ := setup(t)
	_, err := run(t, cfg, "login", "--email", "kari@stud.noroff.no", "--password", "secret123")
	require.NoError(t, err)

	out, err := run(t, cfg, "my-venues")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Lake House")
	assert.Contains(t, lines[1], "Voss, Norway")
	assert.True(t, strings.HasSuffix(lines[1], " 1"), "only the 2099 stay is upcoming: %q", lines[1])
}

func TestLoginWithoutToken(t *testing.T) {
	cfg, api := setup(t)
	api.noToken = true

	out, err := run(t, cfg, "login", "--email", "kari@stud.noroff.no", "--password", "secret123")
	require.ErrorIs(t, err, auth.ErrNoToken)
	assert.Equal(t, "Login succeeded but no access token was returned.\n", out)

	_, err = run(t, cfg, "bookings")
	assert.Error(t, err, "no session is stored")
}

func TestLogout(t *testing.T) {
	cfg, _ := setup(t)
	_, err := run(t, cfg, "login", "--email", "kari@stud.noroff.no", "--password", "secret123")
	require.NoError(t, err)

	out, err := run(t, cfg, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	_, err = run(t, cfg, "bookings")
	assert.Error(t, err)
}
