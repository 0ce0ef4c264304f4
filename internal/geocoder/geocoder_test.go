package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"eventsScraper/internal/config"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/models/dto"
	"eventsScraper/internal/utils/logger/handlers/slogdiscard"
)

const placesBody = `{
  "status": "OK",
  "candidates": [
    {"place_id": "p1", "formatted_address": "Main Rd, Cape Town", "name": "Cape Town Stadium",
     "geometry": {"location": {"lat": -33.9, "lng": 18.4}}},
    {"place_id": "p2", "formatted_address": "Rhodes Dr, Newlands, Cape Town", "name": "Kirstenbosch National Botanical Garden",
     "geometry": {"location": {"lat": -33.98, "lng": 18.43}}}
  ]
}`

func newTestGeocoder(baseURL, key string) *Geocoder {
	return New(slogdiscard.NewDiscardLogger(), config.GeocoderConfig{BaseURL: baseURL, APIKey: key}, "testAddEventEndpoint")
}

func TestGeocoder_Lookup(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(placesBody))
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL, "secret")

	venue, err := g.Lookup(context.Background(), "Kirstenbosch Gardens, Rhodes Drive", "Kirstenbosch Gardens")
	require.NoError(t, err)

	require.Equal(t, "Kirstenbosch Gardens, Rhodes Drive", got.Get("input"))
	require.Equal(t, "textquery", got.Get("inputtype"))
	require.Equal(t, "secret", got.Get("key"))

	require.Equal(t, domain.Venue{
		PlaceID:          "p2",
		FormattedAddress: "Rhodes Dr, Newlands, Cape Town",
		Location:         domain.GeoPoint{Lat: -33.98, Lng: 18.43},
		DisplayName:      "Kirstenbosch National Botanical Garden",
		ManagerAccount:   "testAddEventEndpoint",
	}, venue)
}

func TestGeocoder_Errors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status int
		body   string
		noHit  bool
	}{
		{name: "zero results", status: http.StatusOK, body: `{"status":"ZERO_RESULTS","candidates":[]}`, noHit: true},
		{name: "empty candidates", status: http.StatusOK, body: `{"status":"OK","candidates":[]}`, noHit: true},
		{name: "denied", status: http.StatusOK, body: `{"status":"REQUEST_DENIED","error_message":"bad key"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTestGeocoder(srv.URL, "secret").Lookup(context.Background(), "Artscape", "Artscape")
			require.Error(t, err)
			if tc.noHit {
				require.ErrorIs(t, err, ErrNoMatch)
			} else {
				require.NotErrorIs(t, err, ErrNoMatch)
			}
		})
	}
}

func TestGeocoder_NotConfigured(t *testing.T) {
	g := newTestGeocoder("http://127.0.0.1:1", "")
	require.False(t, g.Enabled())

	_, err := g.Lookup(context.Background(), "Artscape", "")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestBestCandidate(t *testing.T) {
	candidates := []dto.PlaceCandidate{{PlaceID: "a", Name: "Grand Arena"}, {PlaceID: "b", Name: "Baxter Theatre"}}

	require.Equal(t, "a", bestCandidate(candidates, "").PlaceID)
	require.Equal(t, "b", bestCandidate(candidates, "The Baxter Theatre").PlaceID)
}
