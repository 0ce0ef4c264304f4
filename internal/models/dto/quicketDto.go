package dto

import (
	"encoding/json"
	"strings"
)

// QuicketEvent — ответ Quicket API на запрос /Events/{id}.
// Необязательные блоки (venue, locality, tickets) могут отсутствовать.
type QuicketEvent struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	ImageURL    string           `json:"imageUrl"`
	Venue       *QuicketVenue    `json:"venue"`
	Locality    *QuicketLocality `json:"locality"`
	Tickets     []QuicketTicket  `json:"tickets"`
}

type QuicketVenue struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
}

// QuicketLocality: levelOne — страна, levelTwo — провинция, levelThree — город.
type QuicketLocality struct {
	LevelOne   string `json:"levelOne"`
	LevelTwo   string `json:"levelTwo"`
	LevelThree string `json:"levelThree"`
}

type QuicketTicket struct {
	Name    string       `json:"name"`
	Price   *json.Number `json:"price"`
	SoldOut *bool        `json:"soldOut"`
}

// Available сообщает, продаётся ли билет. Билет без флага soldOut считается распроданным.
func (t QuicketTicket) Available() bool {
	return t.SoldOut != nil && !*t.SoldOut
}

// Address склеивает адрес заведения и части локали через ", ".
func (e QuicketEvent) Address() string {
	var parts []string
	if e.Venue != nil {
		parts = appendNonEmpty(parts, e.Venue.AddressLine1, e.Venue.AddressLine2)
	}
	if e.Locality != nil {
		parts = appendNonEmpty(parts, e.Locality.LevelThree, e.Locality.LevelTwo, e.Locality.LevelOne)
	}
	return strings.Join(parts, ", ")
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}
