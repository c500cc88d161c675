package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.BookingTransition("TOUR", "PENDING")
	m.BookingTransition("TOUR", "PENDING")
	m.CapacityRejected("FLIGHT")
	m.PaymentEvent("settled", "COMPLETED")
	m.ObserveGateway("verify", errors.New("timeout"), time.Second)
	m.ObserveHTTP("/api/v1/tours", "GET", "200", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("TOUR", "PENDING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.capacityRejects.WithLabelValues("FLIGHT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues("settled", "COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/tours", "GET", "200")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingTransition("ROOM", "CONFIRMED")
		m.PaymentEvent("refunded", "REFUNDED")
		m.ObserveGateway("refund", nil, time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.CapacityRejected("TOUR")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `travel_booking_capacity_rejections_total{type="TOUR"} 1`)
}
