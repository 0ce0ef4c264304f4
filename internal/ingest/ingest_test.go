package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventsScraper/internal/dateparse"
	"eventsScraper/internal/geocoder"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/utils/logger/handlers/slogdiscard"
)

type stubExtractor struct {
	details *domain.EventDetails
	err     error
}

func (s stubExtractor) Extract(_ context.Context, url string) (*domain.EventDetails, error) {
	if s.err != nil {
		return nil, s.err
	}
	d := *s.details
	d.EventURL = url
	return &d, nil
}

type stubGeocoder struct {
	venue   domain.Venue
	err     error
	queries []string
}

func (g *stubGeocoder) Enabled() bool { return true }

func (g *stubGeocoder) Lookup(_ context.Context, query, _ string) (domain.Venue, error) {
	g.queries = append(g.queries, query)
	return g.venue, g.err
}

type memoryStore struct {
	venues map[string]domain.Venue
	events map[string]domain.Event
}

func newMemoryStore() *memoryStore {
	return &memoryStore{venues: map[string]domain.Venue{}, events: map[string]domain.Event{}}
}

func (m *memoryStore) SaveVenue(_ context.Context, v domain.Venue) (domain.Venue, bool, error) {
	if existing, ok := m.venues[v.PlaceID]; ok {
		return existing, false, nil
	}
	v.DocID = fmt.Sprintf("doc-%d", len(m.venues)+1)
	m.venues[v.PlaceID] = v
	return v, true, nil
}

func (m *memoryStore) SaveEvent(_ context.Context, e domain.Event) (domain.Event, bool, error) {
	if existing, ok := m.events[e.PaymentPortal]; ok {
		return existing, false, nil
	}
	m.events[e.PaymentPortal] = e
	return e, true, nil
}

type stubEnricher struct{ err error }

func (s stubEnricher) Enrich(_ context.Context, e domain.Event) (domain.Event, error) {
	if s.err != nil {
		return domain.Event{}, s.err
	}
	e.Genres = []string{"jazz"}
	return e, nil
}

var jazz = &domain.EventDetails{
	Title:     "Jazz Night",
	Venue:     "Baxter Theatre",
	Location:  "Rondebosch",
	StartDate: dateparse.Ptr(dateparse.Naive(2025, time.May, 1, 19, 0)),
	Prices:    []domain.Price{{Type: domain.PriceGeneral, Price: "R150"}},
	Source:    domain.SourceTicketpro,
}

func TestService_Process(t *testing.T) {
	store := newMemoryStore()
	geo := &stubGeocoder{venue: domain.Venue{PlaceID: "p1", DisplayName: "The Baxter"}}
	s := New(slogdiscard.NewDiscardLogger(), stubExtractor{details: jazz}, geo, store, stubEnricher{}, "testAddEventEndpoint")

	out, err := s.Process(context.Background(), "https://www.ticketpro.co.za/event/jazz")
	require.NoError(t, err)
	require.True(t, out.Created)
	require.Equal(t, []string{"Baxter Theatre, Rondebosch"}, geo.queries)
	require.Equal(t, "doc-1", out.Event.VenueID)
	require.Equal(t, 150.0, out.Event.Price)
	require.Equal(t, []string{"jazz"}, out.Event.Genres)
	require.Equal(t, "https://www.ticketpro.co.za/event/jazz", out.Event.PaymentPortal)
	require.Equal(t, "testAddEventEndpoint", out.Event.ManagerAccount)

	again, err := s.Process(context.Background(), "https://www.ticketpro.co.za/event/jazz")
	require.NoError(t, err)
	require.False(t, again.Created)
	require.Len(t, store.events, 1)
	require.Len(t, store.venues, 1)
}

func TestService_ProcessDegradesCollaborators(t *testing.T) {
	store := newMemoryStore()
	geo := &stubGeocoder{err: fmt.Errorf("lookup: %w", geocoder.ErrNoMatch)}
	s := New(slogdiscard.NewDiscardLogger(), stubExtractor{details: jazz}, geo, store, stubEnricher{err: errors.New("model down")}, "m")

	out, err := s.Process(context.Background(), "https://www.ticketpro.co.za/event/jazz")
	require.NoError(t, err)
	require.Nil(t, out.Venue)
	require.Empty(t, out.Event.VenueID)
	require.Equal(t, []string{}, out.Event.Genres)
	require.Empty(t, store.venues)
}

func TestService_ProcessExtractionFailure(t *testing.T) {
	errFetch := errors.New("no content")
	s := New(slogdiscard.NewDiscardLogger(), stubExtractor{err: errFetch}, nil, nil, nil, "m")

	_, err := s.Process(context.Background(), "https://www.webtickets.co.za/x")
	require.ErrorIs(t, err, errFetch)
}
