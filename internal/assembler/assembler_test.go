package assembler

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"eventsScraper/internal/dateparse"
	"eventsScraper/internal/models/domain"
)

func TestParsePrice(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want float64
		ok   bool
	}{
		{in: "R200", want: 200, ok: true},
		{in: "R 200.00", want: 200, ok: true},
		{in: "R180.5", want: 180.5, ok: true},
		{in: "R1,250.50", want: 1250.5, ok: true},
		{in: "150", want: 150, ok: true},
		{in: "Free", ok: false},
		{in: "", ok: false},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParsePrice(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMinPrice(t *testing.T) {
	require.Equal(t, 120.0, MinPrice([]domain.Price{
		{Type: "General", Price: "R350"},
		{Type: "Early", Price: "TBA"},
		{Type: "General", Price: "R 120.00"},
	}))
	require.Equal(t, 0.0, MinPrice(nil))
	require.Equal(t, 0.0, MinPrice([]domain.Price{{Type: "General", Price: "Sold out"}}))
}

func TestAssemble(t *testing.T) {
	details := &domain.EventDetails{
		Title:       "Cape Town Jazz Night",
		Description: "Smooth jazz.",
		Venue:       "Kirstenbosch Gardens",
		Location:    "Rhodes Drive, Cape Town",
		StartDate:   dateparse.Ptr(dateparse.Naive(2025, time.November, 29, 18, 0)),
		Prices:      []domain.Price{{Type: domain.PriceStartingFrom, Price: "R 200.00"}},
		ImageURL:    "https://cdn.computicket.com/jazz.jpg",
		EventURL:    "https://computicket-boxoffice.com/e/jazz",
		Source:      domain.SourceComputicket,
	}

	got := Assemble(details, "testAddEventEndpoint")

	start := time.Date(2025, time.November, 29, 18, 0, 0, 0, SAST)
	want := domain.Event{
		Name:           "Cape Town Jazz Night",
		Description:    "Smooth jazz.",
		StartDate:      &start,
		Price:          200,
		AgeRestriction: domain.DefaultAgeRestriction,
		ArtistNames:    []string{},
		Artists:        []string{},
		Genres:         []string{},
		ManagerAccount: "testAddEventEndpoint",
		PaymentPortal:  "https://computicket-boxoffice.com/e/jazz",
		EventImageURL:  "https://cdn.computicket.com/jazz.jpg",
		Source:         domain.SourceComputicket,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "2025-11-29T18:00:00+02:00", got.StartDate.Format(time.RFC3339))
	require.Nil(t, got.EndDate)
}

func TestVenueQuery(t *testing.T) {
	for _, tc := range []struct {
		venue, location string
		want            string
	}{
		{venue: "Artscape", location: "Cape Town", want: "Artscape, Cape Town"},
		{venue: "Artscape Theatre", location: "Artscape Theatre", want: "Artscape Theatre"},
		{venue: domain.VenueNotSpecified, location: "Cape Town", want: "Cape Town"},
		{venue: domain.UnknownVenue, location: domain.UnknownLocation, want: ""},
	} {
		t.Run(tc.want, func(t *testing.T) {
			require.Equal(t, tc.want, VenueQuery(&domain.EventDetails{Venue: tc.venue, Location: tc.location}))
		})
	}
}
