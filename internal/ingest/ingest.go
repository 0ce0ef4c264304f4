// Package ingest обрабатывает одну ссылку целиком: извлечение, геокодирование,
// реестр заведений, сборка записи, обогащение и сохранение события.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventsScraper/internal/assembler"
	"eventsScraper/internal/geocoder"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/utils/logger/sl"
)

type Extractor interface {
	Extract(ctx context.Context, url string) (*domain.EventDetails, error)
}

type Geocoder interface {
	Enabled() bool
	Lookup(ctx context.Context, query, name string) (domain.Venue, error)
}

// Store — хранилище с идемпотентной записью по естественному ключу.
// Проверка существования и вставка выполняются одной атомарной операцией,
// поэтому параллельные пакеты не создают дублей.
type Store interface {
	SaveVenue(ctx context.Context, venue domain.Venue) (domain.Venue, bool, error)
	SaveEvent(ctx context.Context, event domain.Event) (domain.Event, bool, error)
}

type Enricher interface {
	Enrich(ctx context.Context, event domain.Event) (domain.Event, error)
}

// Outcome — результат обработки одной ссылки.
type Outcome struct {
	URL     string
	Details *domain.EventDetails
	Event   domain.Event
	Venue   *domain.Venue
	// Created=false: событие с таким paymentPortal уже было сохранено.
	Created bool
}

type Service struct {
	logger         *slog.Logger
	extractor      Extractor
	geocoder       Geocoder
	store          Store
	enricher       Enricher
	managerAccount string
}

// New собирает обработчик. geocoder, store и enricher могут быть nil.
func New(
	logger *slog.Logger,
	extractor Extractor,
	geocoder Geocoder,
	store Store,
	enricher Enricher,
	managerAccount string,
) *Service {
	return &Service{
		logger:         logger,
		extractor:      extractor,
		geocoder:       geocoder,
		store:          store,
		enricher:       enricher,
		managerAccount: managerAccount,
	}
}

// Process выполняет полный цикл для ссылки. Ошибку возвращают только неудачное извлечение
// и неудачная запись события; геокодер и обогащение деградируют до пустых полей.
func (s *Service) Process(ctx context.Context, url string) (Outcome, error) {
	op := "Ingest.Process()"
	log := s.logger.With(
		slog.String("op", op),
		slog.String("url", url),
	)

	out := Outcome{URL: url}

	details, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	out.Details = details

	event := assembler.Assemble(details, s.managerAccount)

	if venue, ok := s.establishment(ctx, log, details); ok {
		out.Venue = &venue
		event = assembler.AttachVenue(event, venue)
	}

	if s.enricher != nil {
		enriched, err := s.enricher.Enrich(ctx, event)
		if err != nil {
			log.Warn("ai enrichment failed", sl.Err(err))
		} else {
			event = enriched
		}
	}

	out.Event = event
	if s.store == nil {
		out.Created = true
		return out, nil
	}

	saved, created, err := s.store.SaveEvent(ctx, event)
	if err != nil {
		return out, fmt.Errorf("%s: save event: %w", op, err)
	}
	out.Event, out.Created = saved, created

	if created {
		log.Info("added new event", slog.String("name", saved.Name))
	} else {
		log.Info("event already exists", slog.String("name", saved.Name))
	}

	return out, nil
}

// establishment ищет заведение и заносит его в реестр. Любая неудача означает "без заведения".
func (s *Service) establishment(ctx context.Context, log *slog.Logger, details *domain.EventDetails) (domain.Venue, bool) {
	if s.geocoder == nil || !s.geocoder.Enabled() {
		return domain.Venue{}, false
	}

	query := assembler.VenueQuery(details)
	if query == "" {
		return domain.Venue{}, false
	}

	venue, err := s.geocoder.Lookup(ctx, query, details.Venue)
	if err != nil {
		if errors.Is(err, geocoder.ErrNoMatch) {
			log.Info("no place found for venue", slog.String("query", query))
		} else {
			log.Warn("geocoding failed", slog.String("query", query), sl.Err(err))
		}
		return domain.Venue{}, false
	}

	if s.store == nil {
		return venue, true
	}

	saved, created, err := s.store.SaveVenue(ctx, venue)
	if err != nil {
		log.Warn("venue registry write failed", sl.Err(err))
		return domain.Venue{}, false
	}
	if created {
		log.Info("added new venue", slog.String("displayName", saved.DisplayName))
	} else {
		log.Info("using existing venue", slog.String("displayName", saved.DisplayName))
	}

	return saved, true
}
