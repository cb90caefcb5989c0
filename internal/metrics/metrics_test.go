package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheckoutCountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(checkouts.WithLabelValues("insufficient_stock"))
	ObserveCheckout("insufficient_stock")
	ObserveCheckout("insufficient_stock")
	assert.Equal(t, before+2, testutil.ToFloat64(checkouts.WithLabelValues("insufficient_stock")))
}

func TestAddLoyaltyPointsIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(loyaltyPoints.WithLabelValues("earn"))
	AddLoyaltyPoints("earn", 0)
	AddLoyaltyPoints("earn", -5)
	AddLoyaltyPoints("earn", 12)
	assert.Equal(t, before+12, testutil.ToFloat64(loyaltyPoints.WithLabelValues("earn")))
}

func TestHandlerExposesRegisteredSeries(t *testing.T) {
	ObserveHTTP("", "GET", 404, 1)
	ObserveOrderTransition("SHIPPED", "DELIVERED")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `atlas_http_requests_total{method="GET",route="unmatched",status="404"}`)
	assert.Contains(t, string(body), `atlas_orders_status_transitions_total{from="SHIPPED",to="DELIVERED"}`)
}
