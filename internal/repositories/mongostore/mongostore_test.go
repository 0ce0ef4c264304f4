package mongostore

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"eventsScraper/internal/models/domain"
)

func TestEventDocument_RoundTrip(t *testing.T) {
	start := time.Date(2025, time.March, 8, 14, 0, 0, 0, sast)
	id := uuid.New()
	doc := eventDocument{
		EventID: id.String(),
		Event: domain.Event{
			Name:          "Jazz on the Lawn",
			StartDate:     &start,
			Genres:        []string{"jazz"},
			PaymentPortal: "https://www.quicket.co.za/events/296038-jazz/",
			Source:        domain.SourceQuicket,
		},
	}

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var flat bson.M
	require.NoError(t, bson.Unmarshal(raw, &flat))
	require.Equal(t, "https://www.quicket.co.za/events/296038-jazz/", flat["paymentPortal"])
	require.NotContains(t, flat, "_id")

	var decoded eventDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	got := decoded.toDomain()
	require.Equal(t, id, got.ID)
	require.Equal(t, "2025-03-08T14:00:00+02:00", got.StartDate.Format(time.RFC3339))
	require.Nil(t, got.EndDate)
	require.Equal(t, []string{"jazz"}, got.Genres)
}

func TestVenueDocument_UsesPlaceIDKey(t *testing.T) {
	raw, err := bson.Marshal(venueDocument{Venue: domain.Venue{PlaceID: "p1", DisplayName: "Artscape", DocID: "ignored"}})
	require.NoError(t, err)

	var flat bson.M
	require.NoError(t, bson.Unmarshal(raw, &flat))
	require.Equal(t, "p1", flat["id"])
	require.NotContains(t, flat, "DocID")
	require.NotContains(t, flat, "docid")
}
