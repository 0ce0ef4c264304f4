package dto

import (
	"time"

	"github.com/google/uuid"

	"eventsScraper/internal/models/domain"
)

// CreateBatchRequest — тело POST /api/v1/batches.
type CreateBatchRequest struct {
	URLs []string `json:"urls"`
}

type CreateBatchResponse struct {
	BatchID string `json:"batchId"`
	Total   int    `json:"total"`
}

// ExtractRequest — тело POST /api/v1/extract.
type ExtractRequest struct {
	URL string `json:"url"`
}

// EventResponse — DTO для ответа с данными события.
type EventResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	Price          float64    `json:"price"`
	AgeRestriction string     `json:"ageRestriction"`
	ArtistNames    []string   `json:"artistNames"`
	Artists        []string   `json:"artists"`
	Genres         []string   `json:"genres"`
	ManagerAccount string     `json:"managerAccount"`
	PaymentPortal  string     `json:"paymentPortal"`
	EventImageURL  string     `json:"eventImageUrl"`
	Venue          string     `json:"venue"`
	VenueID        string     `json:"venueId"`
	Source         string     `json:"source"`
}

// MapDomainToEventResponse конвертирует доменную модель Event в EventResponse DTO.
func MapDomainToEventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		StartDate:      e.StartDate,
		EndDate:        e.EndDate,
		Price:          e.Price,
		AgeRestriction: e.AgeRestriction,
		ArtistNames:    nonNil(e.ArtistNames),
		Artists:        nonNil(e.Artists),
		Genres:         nonNil(e.Genres),
		ManagerAccount: e.ManagerAccount,
		PaymentPortal:  e.PaymentPortal,
		EventImageURL:  e.EventImageURL,
		Venue:          e.Venue,
		VenueID:        e.VenueID,
		Source:         e.Source.String(),
	}
}

// MapDomainToEventResponseList конвертирует слайс доменных моделей в слайс DTO.
func MapDomainToEventResponseList(events []domain.Event) []EventResponse {
	result := make([]EventResponse, 0, len(events))
	for _, e := range events {
		result = append(result, MapDomainToEventResponse(e))
	}
	return result
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
