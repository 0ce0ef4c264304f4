package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/models/repositories"
)

const venueColumns = `id, place_id, formatted_address, lat, lng, display_name, manager_account, created_at, updated_at`

// SaveVenue добавляет заведение в реестр по place id. Если оно уже есть,
// возвращается существующая запись (с её id в реестре) и created=false.
func (r *Repository) SaveVenue(ctx context.Context, venue domain.Venue) (saved domain.Venue, created bool, err error) {
	op := "Repository.SaveVenue()"

	if venue.PlaceID == "" {
		return domain.Venue{}, false, fmt.Errorf("%s: empty place id", op)
	}

	id := uuid.New()
	ts := r.timestamp()
	query := r.DB.Rebind(`INSERT INTO whatstheplace (` + venueColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (place_id) DO NOTHING`)

	res, err := r.DB.ExecContext(ctx, query,
		id,
		venue.PlaceID,
		venue.FormattedAddress,
		venue.Location.Lat,
		venue.Location.Lng,
		venue.DisplayName,
		venue.ManagerAccount,
		ts,
		ts,
	)
	if err != nil {
		return domain.Venue{}, false, fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return domain.Venue{}, false, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	if rowsAffected == 0 {
		existing, err := r.FindVenueByPlaceID(ctx, venue.PlaceID)
		if err != nil {
			return domain.Venue{}, false, fmt.Errorf("%s: %w", op, err)
		}
		return existing, false, nil
	}

	venue.DocID = id.String()
	return venue, true, nil
}

func (r *Repository) FindVenueByPlaceID(ctx context.Context, placeID string) (domain.Venue, error) {
	op := "Repository.FindVenueByPlaceID()"

	var row repositories.Venue
	query := r.DB.Rebind(`SELECT ` + venueColumns + ` FROM whatstheplace WHERE place_id = ? LIMIT 1`)

	if err := r.DB.GetContext(ctx, &row, query, placeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Venue{}, fmt.Errorf("%s: venue %s: %w", op, placeID, ErrNotFound)
		}
		return domain.Venue{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.Venue{
		DocID:            row.ID.String(),
		PlaceID:          row.PlaceID,
		FormattedAddress: row.FormattedAddress,
		Location:         domain.GeoPoint{Lat: row.Lat, Lng: row.Lng},
		DisplayName:      row.DisplayName,
		ManagerAccount:   row.ManagerAccount,
	}, nil
}
