package repositories

import (
	"database/sql"

	"github.com/google/uuid"
)

// BaseModel — общие колонки таблиц. Отметки времени хранятся текстом в RFC 3339,
// одинаково для postgres и sqlite.
type BaseModel struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt string    `db:"created_at"`
	UpdatedAt string    `db:"updated_at"`
}

// Event — строка таблицы events. Списки хранятся как JSON-массивы.
type Event struct {
	BaseModel
	Name           string         `db:"name"`
	Description    string         `db:"description"`
	StartDate      sql.NullString `db:"start_date"`
	EndDate        sql.NullString `db:"end_date"`
	Price          float64        `db:"price"`
	AgeRestriction string         `db:"age_restriction"`
	ArtistNames    string         `db:"artist_names"`
	Artists        string         `db:"artists"`
	Genres         string         `db:"genres"`
	ManagerAccount string         `db:"manager_account"`
	PaymentPortal  string         `db:"payment_portal"`
	EventImageURL  string         `db:"event_image_url"`
	Venue          string         `db:"venue"`
	VenueID        string         `db:"venue_id"`
	WhatsThePlace  string         `db:"whatstheplace"`
	Source         string         `db:"source"`
}

// Venue — строка реестра заведений whatstheplace.
type Venue struct {
	BaseModel
	PlaceID          string  `db:"place_id"`
	FormattedAddress string  `db:"formatted_address"`
	Lat              float64 `db:"lat"`
	Lng              float64 `db:"lng"`
	DisplayName      string  `db:"display_name"`
	ManagerAccount   string  `db:"manager_account"`
}
