package googlemaps

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crime-data-etl/internal/observability"
)

const testAPIKey = "AIza-test-key"

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(testAPIKey, 5*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)), WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestClient_ForwardGeocode_Success(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "123 Main St, Bethlehem Township", r.URL.Query().Get("address"))
		assert.Equal(t, testAPIKey, r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "123 Main St, Bethlehem, PA 18017, USA",
				"partial_match": true,
				"geometry": {
					"location": {"lat": 40.6512, "lng": -75.3691},
					"location_type": "ROOFTOP"
				}
			}]
		}`))
	})

	result, err := c.ForwardGeocode(context.Background(), "123 Main St", "Bethlehem Township")
	require.NoError(t, err)

	assert.InDelta(t, 40.6512, result.Lat, 1e-9)
	assert.InDelta(t, -75.3691, result.Lng, 1e-9)
	assert.Equal(t, "123 Main St, Bethlehem, PA 18017, USA", result.FormattedAddress)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues(provider, "success")), 0)
}

func TestClient_ForwardGeocode_ZeroResults(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	result, err := c.ForwardGeocode(context.Background(), "1 Nowhere Ln", "")
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues(provider, "empty")), 0)
}

func TestClient_ForwardGeocode_Denied(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	})

	_, err := c.ForwardGeocode(context.Background(), "123 Main St", "Bethlehem Township")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues(provider, "error")), 0)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("", time.Second, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
