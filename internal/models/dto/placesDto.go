package dto

import "eventsScraper/internal/models/domain"

// PlacesResponse — ответ Google Places "Find Place from Text".
type PlacesResponse struct {
	Candidates   []PlaceCandidate `json:"candidates"`
	Status       string           `json:"status"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

type PlaceCandidate struct {
	PlaceID          string `json:"place_id"`
	FormattedAddress string `json:"formatted_address"`
	Name             string `json:"name"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (c PlaceCandidate) ToDomain(managerAccount string) domain.Venue {
	return domain.Venue{
		PlaceID:          c.PlaceID,
		FormattedAddress: c.FormattedAddress,
		Location: domain.GeoPoint{
			Lat: c.Geometry.Location.Lat,
			Lng: c.Geometry.Location.Lng,
		},
		DisplayName:    c.Name,
		ManagerAccount: managerAccount,
	}
}
