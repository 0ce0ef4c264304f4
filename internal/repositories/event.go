package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/models/repositories"
)

const eventColumns = `id, name, description, start_date, end_date, price, age_restriction,
	artist_names, artists, genres, manager_account, payment_portal, event_image_url,
	venue, venue_id, whatstheplace, source, created_at, updated_at`

// SaveEvent сохраняет событие, если события с таким paymentPortal ещё нет.
// Для существующего ключа возвращает сохранённую запись и created=false.
func (r *Repository) SaveEvent(ctx context.Context, event domain.Event) (saved domain.Event, created bool, err error) {
	op := "Repository.SaveEvent()"

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	row, err := mapEventToRepo(event)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%s: %w", op, err)
	}
	ts := r.timestamp()

	query := r.DB.Rebind(`INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (payment_portal) DO NOTHING`)

	res, err := r.DB.ExecContext(ctx, query,
		row.ID,
		row.Name,
		row.Description,
		row.StartDate,
		row.EndDate,
		row.Price,
		row.AgeRestriction,
		row.ArtistNames,
		row.Artists,
		row.Genres,
		row.ManagerAccount,
		row.PaymentPortal,
		row.EventImageURL,
		row.Venue,
		row.VenueID,
		row.WhatsThePlace,
		row.Source,
		ts,
		ts,
	)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	if rowsAffected == 0 {
		existing, err := r.FindEventByPaymentPortal(ctx, event.PaymentPortal)
		if err != nil {
			return domain.Event{}, false, fmt.Errorf("%s: %w", op, err)
		}
		return existing, false, nil
	}

	return event, true, nil
}

func (r *Repository) FindEventByPaymentPortal(ctx context.Context, paymentPortal string) (domain.Event, error) {
	op := "Repository.FindEventByPaymentPortal()"

	var row repositories.Event
	query := r.DB.Rebind(`SELECT ` + eventColumns + ` FROM events WHERE payment_portal = ? LIMIT 1`)

	if err := r.DB.GetContext(ctx, &row, query, paymentPortal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, fmt.Errorf("%s: event %s: %w", op, paymentPortal, ErrNotFound)
		}
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return mapEventToDomain(row), nil
}

func (r *Repository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	op := "Repository.ListEvents()"

	var rows []repositories.Event
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at ASC, id ASC`

	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]domain.Event, len(rows))
	for i, e := range rows {
		result[i] = mapEventToDomain(e)
	}

	return result, nil
}

func mapEventToRepo(e domain.Event) (repositories.Event, error) {
	artistNames, err := marshalList(e.ArtistNames)
	if err != nil {
		return repositories.Event{}, err
	}
	artists, err := marshalList(e.Artists)
	if err != nil {
		return repositories.Event{}, err
	}
	genres, err := marshalList(e.Genres)
	if err != nil {
		return repositories.Event{}, err
	}

	return repositories.Event{
		BaseModel:      repositories.BaseModel{ID: e.ID},
		Name:           e.Name,
		Description:    e.Description,
		StartDate:      formatTime(e.StartDate),
		EndDate:        formatTime(e.EndDate),
		Price:          e.Price,
		AgeRestriction: e.AgeRestriction,
		ArtistNames:    artistNames,
		Artists:        artists,
		Genres:         genres,
		ManagerAccount: e.ManagerAccount,
		PaymentPortal:  e.PaymentPortal,
		EventImageURL:  e.EventImageURL,
		Venue:          e.Venue,
		VenueID:        e.VenueID,
		WhatsThePlace:  e.WhatsThePlace,
		Source:         string(e.Source),
	}, nil
}

func mapEventToDomain(e repositories.Event) domain.Event {
	return domain.Event{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		StartDate:      parseTime(e.StartDate),
		EndDate:        parseTime(e.EndDate),
		Price:          e.Price,
		AgeRestriction: e.AgeRestriction,
		ArtistNames:    unmarshalList(e.ArtistNames),
		Artists:        unmarshalList(e.Artists),
		Genres:         unmarshalList(e.Genres),
		ManagerAccount: e.ManagerAccount,
		PaymentPortal:  e.PaymentPortal,
		EventImageURL:  e.EventImageURL,
		Venue:          e.Venue,
		VenueID:        e.VenueID,
		WhatsThePlace:  e.WhatsThePlace,
		Source:         domain.Source(e.Source),
	}
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func marshalList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalList(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}
