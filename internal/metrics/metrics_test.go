package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(bookingSubmissions.WithLabelValues("confirmed"))
	IncSubmission("confirmed")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingSubmissions.WithLabelValues("confirmed")))

	ObserveAPIRequest("GET", "venues", 200, 0.1)
	ObserveAPIRequest("POST", "bookings", 0, 0.2)
	assert.Equal(t, 1.0, testutil.ToFloat64(apiRequests.WithLabelValues("POST", "bookings", "error")))

	SetActiveForms(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(activeForms))

	IncCache("hit")
	IncNotification("sent")
	assert.Equal(t, 1.0, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))
}
