package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthnudge/internal/models"
)

const nearbyPayload = `{
  "status": "OK",
  "results": [
    {
      "place_id": "p1",
      "name": "KFC Main St",
      "vicinity": "Main St",
      "geometry": {"location": {"lat": 24.86, "lng": 67.00}},
      "rating": 3.8,
      "types": ["restaurant", "food"],
      "price_level": 2
    },
    {
      "place_id": "p2",
      "name": "Mystery Kiosk",
      "types": ["food"]
    }
  ]
}`

func newTestAdapter(t *testing.T, handler http.HandlerFunc, minRating float64) (*GooglePlaces, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGooglePlaces(GooglePlacesOptions{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		MaxResults: 20,
		MinRating:  minRating,
	})
	require.NoError(t, err)
	return g, srv
}

func TestGooglePlaces_MapsVenues(t *testing.T) {
	g, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "restaurant", r.URL.Query().Get("type"))
		w.Write([]byte(nearbyPayload))
	}, 0)

	venues, err := g.Search(context.Background(), SearchParams{
		Lat: 24.86, Lng: 67.00, RadiusMeters: 500, Tags: []string{"restaurant"},
	})
	require.NoError(t, err)
	require.Len(t, venues, 2)

	kfc := venues[0]
	assert.Equal(t, "p1", kfc.ID)
	assert.Equal(t, "KFC Main St", kfc.Name)
	require.NotNil(t, kfc.Coordinate)
	assert.InDelta(t, 24.86, kfc.Coordinate.Lat, 1e-9)
	require.NotNil(t, kfc.Rating)
	assert.InDelta(t, 3.8, *kfc.Rating, 1e-9)
	require.NotNil(t, kfc.PriceTier)
	assert.Equal(t, 2, *kfc.PriceTier)

	// Missing geometry and rating map to nil, not zero values.
	kiosk := venues[1]
	assert.Nil(t, kiosk.Coordinate)
	assert.Nil(t, kiosk.Rating)
}

func TestGooglePlaces_DeduplicatesAcrossTags(t *testing.T) {
	g, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nearbyPayload))
	}, 0)

	venues, err := g.Search(context.Background(), SearchParams{
		Lat: 24.86, Lng: 67.00, RadiusMeters: 500, Tags: []string{"restaurant", "food"},
	})
	require.NoError(t, err)
	assert.Len(t, venues, 2)
}

func TestGooglePlaces_MinRatingFilter(t *testing.T) {
	g, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nearbyPayload))
	}, 3.0)

	venues, err := g.Search(context.Background(), SearchParams{
		Lat: 24.86, Lng: 67.00, RadiusMeters: 500, Tags: []string{"restaurant"},
	})
	require.NoError(t, err)
	// The unrated kiosk is dropped when a minimum rating is configured.
	require.Len(t, venues, 1)
	assert.Equal(t, "KFC Main St", venues[0].Name)
}

func TestGooglePlaces_ZeroResultsIsEmptyNotError(t *testing.T) {
	g, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}, 0)

	venues, err := g.Search(context.Background(), SearchParams{Lat: 0, Lng: 0, RadiusMeters: 500, Tags: []string{"cafe"}})
	require.NoError(t, err)
	assert.Empty(t, venues)
}

func TestGooglePlaces_APIErrorWrapsDirectoryUnavailable(t *testing.T) {
	g, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key"}`))
	}, 0)

	_, err := g.Search(context.Background(), SearchParams{Lat: 0, Lng: 0, RadiusMeters: 500, Tags: []string{"cafe"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDirectoryUnavailable))
}

func TestGooglePlaces_HTTPErrorWrapsDirectoryUnavailable(t *testing.T) {
	g, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}, 0)

	_, err := g.Search(context.Background(), SearchParams{Lat: 0, Lng: 0, RadiusMeters: 500, Tags: []string{"cafe"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDirectoryUnavailable))
}

func TestGooglePlaces_RequiresAPIKey(t *testing.T) {
	_, err := NewGooglePlaces(GooglePlacesOptions{})
	assert.Error(t, err)
}
