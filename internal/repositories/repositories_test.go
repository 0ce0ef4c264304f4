package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventsScraper/internal/config"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/utils/logger/handlers/slogdiscard"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := Open(DriverSqlite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r := NewWithDB(slogdiscard.NewDiscardLogger(), db)
	require.NoError(t, r.Migrate(context.Background()))
	// повторная миграция не должна падать
	require.NoError(t, r.Migrate(context.Background()))

	return r
}

func TestRepository_SaveEventIsIdempotent(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	sast := time.FixedZone("SAST", 2*60*60)
	start := time.Date(2025, time.March, 8, 14, 0, 0, 0, sast)
	event := domain.Event{
		Name:           "Jazz on the Lawn",
		StartDate:      &start,
		Price:          150.5,
		AgeRestriction: domain.DefaultAgeRestriction,
		ArtistNames:    []string{"Sipho"},
		ManagerAccount: "testAddEventEndpoint",
		PaymentPortal:  "https://www.quicket.co.za/events/296038-jazz/",
		Source:         domain.SourceQuicket,
	}

	first, created, err := r.SaveEvent(ctx, event)
	require.NoError(t, err)
	require.True(t, created)

	event.Name = "Renamed"
	second, created, err := r.SaveEvent(ctx, event)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Jazz on the Lawn", second.Name)

	events, err := r.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	require.Equal(t, "2025-03-08T14:00:00+02:00", got.StartDate.Format(time.RFC3339))
	require.Nil(t, got.EndDate)
	require.Equal(t, []string{"Sipho"}, got.ArtistNames)
	require.Equal(t, []string{}, got.Genres)
	require.Equal(t, domain.SourceQuicket, got.Source)
	require.Equal(t, 150.5, got.Price)
}

func TestRepository_FindEventNotFound(t *testing.T) {
	r := newTestRepository(t)

	_, err := r.FindEventByPaymentPortal(context.Background(), "https://example.com/missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_SaveVenueReusesRegistryEntry(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	venue := domain.Venue{
		PlaceID:          "p2",
		FormattedAddress: "Rhodes Dr, Newlands, Cape Town",
		Location:         domain.GeoPoint{Lat: -33.98, Lng: 18.43},
		DisplayName:      "Kirstenbosch",
		ManagerAccount:   "testAddEventEndpoint",
	}

	first, created, err := r.SaveVenue(ctx, venue)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, first.DocID)

	second, created, err := r.SaveVenue(ctx, venue)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.DocID, second.DocID)
	require.Equal(t, venue.Location, second.Location)

	_, err = r.FindVenueByPlaceID(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = r.SaveVenue(ctx, domain.Venue{})
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	require.Equal(t, "host=db port=5432 user=u password=p dbname=events sslmode=disable",
		DSN(config.DBConfig{Driver: DriverPostgres, Host: "db", Port: "5432", User: "u", Password: "p", Name: "events"}))
	require.Equal(t, "file.db", DSN(config.DBConfig{Driver: DriverSqlite, DSN: "file.db"}))

	_, err := Open("oracle", "x")
	require.Error(t, err)
}
