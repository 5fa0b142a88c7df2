package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocode_ReordersBoundingBox(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Austin, TX", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		// Upstream order is south, north, west, east.
		_, _ = w.Write([]byte(`[{
			"boundingbox": ["30.1", "30.5", "-97.9", "-97.5"],
			"address": {"city": "Austin"}
		}]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithMinInterval(time.Millisecond))
	place, err := c.Geocode(context.Background(), "Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, [4]float64{30.1, -97.9, 30.5, -97.5}, place.BBox)
	assert.Equal(t, "Austin", place.City)
}

func TestGeocode_CityFallbackChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"boundingbox": ["1", "2", "3", "4"],
			"address": {"town": "Smallville"}
		}]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithMinInterval(time.Millisecond))
	place, err := c.Geocode(context.Background(), "somewhere")
	require.NoError(t, err)
	assert.Equal(t, "Smallville", place.City)
}

func TestGeocode_QueryFallsThroughWhenAddressEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"boundingbox": ["1", "2", "3", "4"], "address": {}}]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithMinInterval(time.Millisecond))
	place, err := c.Geocode(context.Background(), "Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, "Austin, TX", place.City)
}

func TestGeocode_NoResultIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithMinInterval(time.Millisecond))
	_, err := c.Geocode(context.Background(), "nowhere")
	assert.Error(t, err)
}

func TestGeocode_EmptyQueryIsError(t *testing.T) {
	c := NewClient(WithMinInterval(time.Millisecond))
	_, err := c.Geocode(context.Background(), "")
	assert.Error(t, err)
}

func TestGeocode_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithMinInterval(time.Millisecond))
	_, err := c.Geocode(context.Background(), "Austin, TX")
	assert.Error(t, err)
}

func TestGeocode_SpacesSuccessiveCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"boundingbox": ["1", "2", "3", "4"], "address": {}}]`))
	}))
	defer srv.Close()

	interval := 150 * time.Millisecond
	c := NewClient(WithBaseURL(srv.URL), WithMinInterval(interval))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Geocode(context.Background(), "Austin, TX")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}
