// Package mongostore — хранилище событий и реестр заведений в MongoDB
// (коллекции events и whatstheplace).
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventsScraper/internal/config"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/repositories"
)

var sast = time.FixedZone("SAST", 2*60*60)

type eventDocument struct {
	ObjectID     primitive.ObjectID `bson:"_id,omitempty"`
	EventID      string             `bson:"eventId"`
	domain.Event `bson:",inline"`
}

type venueDocument struct {
	ObjectID     primitive.ObjectID `bson:"_id,omitempty"`
	domain.Venue `bson:",inline"`
}

type Store struct {
	logger *slog.Logger
	client *mongo.Client
	events *mongo.Collection
	venues *mongo.Collection
}

// New подключается к MongoDB и создаёт уникальные индексы по естественным ключам.
func New(ctx context.Context, logger *slog.Logger, cfg config.DBConfig) (*Store, error) {
	op := "mongostore.New()"
	log := logger.With(slog.String("op", op))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	db := client.Database(cfg.Name)
	s := &Store{
		logger: logger,
		client: client,
		events: db.Collection(cfg.EventsCollection),
		venues: db.Collection(cfg.VenuesCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("mongo store connected", slog.String("database", cfg.Name))

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.events.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "paymentPortal", Value: 1}}, Options: unique}); err != nil {
		return fmt.Errorf("events index: %w", err)
	}
	if _, err := s.venues.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}); err != nil {
		return fmt.Errorf("venues index: %w", err)
	}
	return nil
}

// SaveEvent вставляет событие, если события с таким paymentPortal нет.
func (s *Store) SaveEvent(ctx context.Context, event domain.Event) (domain.Event, bool, error) {
	op := "mongostore.SaveEvent()"

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	doc := eventDocument{EventID: event.ID.String(), Event: event}

	res, err := s.events.UpdateOne(ctx,
		bson.M{"paymentPortal": event.PaymentPortal},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%s: %w", op, err)
	}

	if res.UpsertedCount == 0 {
		existing, err := s.FindEventByPaymentPortal(ctx, event.PaymentPortal)
		if err != nil {
			return domain.Event{}, false, fmt.Errorf("%s: %w", op, err)
		}
		return existing, false, nil
	}

	return event, true, nil
}

func (s *Store) FindEventByPaymentPortal(ctx context.Context, paymentPortal string) (domain.Event, error) {
	op := "mongostore.FindEventByPaymentPortal()"

	var doc eventDocument
	err := s.events.FindOne(ctx, bson.M{"paymentPortal": paymentPortal}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Event{}, fmt.Errorf("%s: event %s: %w", op, paymentPortal, repositories.ErrNotFound)
		}
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toDomain(), nil
}

func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	op := "mongostore.ListEvents()"

	cursor, err := s.events.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	result := []domain.Event{}
	for cursor.Next(ctx) {
		var doc eventDocument
		if err := cursor.Decode(&doc); err != nil {
			s.logger.Warn("skip undecodable event", slog.String("op", op), slog.String("error", err.Error()))
			continue
		}
		result = append(result, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return result, nil
}

// SaveVenue добавляет заведение по place id; для существующего возвращает запись реестра.
func (s *Store) SaveVenue(ctx context.Context, venue domain.Venue) (domain.Venue, bool, error) {
	op := "mongostore.SaveVenue()"

	if venue.PlaceID == "" {
		return domain.Venue{}, false, fmt.Errorf("%s: empty place id", op)
	}

	res, err := s.venues.UpdateOne(ctx,
		bson.M{"id": venue.PlaceID},
		bson.M{"$setOnInsert": venueDocument{Venue: venue}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.Venue{}, false, fmt.Errorf("%s: %w", op, err)
	}

	if res.UpsertedCount == 0 {
		existing, err := s.FindVenueByPlaceID(ctx, venue.PlaceID)
		if err != nil {
			return domain.Venue{}, false, fmt.Errorf("%s: %w", op, err)
		}
		return existing, false, nil
	}

	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		venue.DocID = oid.Hex()
	}
	return venue, true, nil
}

func (s *Store) FindVenueByPlaceID(ctx context.Context, placeID string) (domain.Venue, error) {
	op := "mongostore.FindVenueByPlaceID()"

	var doc venueDocument
	err := s.venues.FindOne(ctx, bson.M{"id": placeID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Venue{}, fmt.Errorf("%s: venue %s: %w", op, placeID, repositories.ErrNotFound)
		}
		return domain.Venue{}, fmt.Errorf("%s: %w", op, err)
	}

	v := doc.Venue
	v.DocID = doc.ObjectID.Hex()
	return v, nil
}

func (s *Store) Shutdown(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("force exit mongo store: %w", err)
	}
	return nil
}

// toDomain возвращает событие с датами в SAST: драйвер читает даты в UTC.
func (d eventDocument) toDomain() domain.Event {
	e := d.Event
	if id, err := uuid.Parse(d.EventID); err == nil {
		e.ID = id
	}
	e.StartDate = inSAST(e.StartDate)
	e.EndDate = inSAST(e.EndDate)
	return e
}

func inSAST(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	z := t.In(sast)
	return &z
}
