package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"eventsScraper/internal/models/domain"
)

// FlexibleStringSlice — при десериализации принимает как строку, так и массив строк.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			*f = []string{s}
		} else {
			*f = nil
		}
		return nil
	}

	return fmt.Errorf("expected string or []string, got %s", string(data))
}

// EventEnrichmentSchema — структурированный ответ модели с жанрами и исполнителями.
type EventEnrichmentSchema struct {
	Genres      FlexibleStringSlice `json:"genres" description:"Music or event genres, lowercase, e.g. jazz, comedy, house"`
	ArtistNames FlexibleStringSlice `json:"artistNames" description:"Names of performing artists or acts, empty if none are named"`
}

// ApplyToEvent переносит непустые списки из ответа в событие.
// Имена исполнителей дублируются в artists.
func (e EventEnrichmentSchema) ApplyToEvent(event domain.Event) domain.Event {
	if genres := cleanList(e.Genres); len(genres) > 0 {
		event.Genres = genres
	}
	if names := cleanList(e.ArtistNames); len(names) > 0 {
		event.ArtistNames = names
		event.Artists = append([]string(nil), names...)
	}
	return event
}

func cleanList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
