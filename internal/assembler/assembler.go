// Package assembler переводит результат извлечения в сохраняемую модель события.
package assembler

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"eventsScraper/internal/models/domain"
)

// SAST — южноафриканское время, фиксированное смещение +02:00 без перехода на летнее время.
var SAST = time.FixedZone("SAST", 2*60*60)

var priceNumberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParsePrice достаёт число из строки цены: "R200", "R 200.00", "R1,250.50".
func ParsePrice(s string) (float64, bool) {
	m := priceNumberRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MinPrice — минимальная разобранная цена, 0 если ни одна строка не разобралась.
func MinPrice(prices []domain.Price) float64 {
	var (
		lowest float64
		found  bool
	)
	for _, p := range prices {
		v, ok := ParsePrice(p.Price)
		if !ok {
			continue
		}
		if !found || v < lowest {
			lowest, found = v, true
		}
	}
	return lowest
}

// InSAST прикрепляет к наивному времени смещение +02:00, не сдвигая компоненты.
func InSAST(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	z := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, SAST)
	return &z
}

// Assemble собирает событие из EventDetails. Поля заведения остаются пустыми,
// их заполняет обработка после геокодирования.
func Assemble(details *domain.EventDetails, managerAccount string) domain.Event {
	return domain.Event{
		Name:           details.Title,
		Description:    details.Description,
		StartDate:      InSAST(details.StartDate),
		EndDate:        InSAST(details.EndDate),
		Price:          MinPrice(details.Prices),
		AgeRestriction: domain.DefaultAgeRestriction,
		ArtistNames:    []string{},
		Artists:        []string{},
		Genres:         []string{},
		ManagerAccount: managerAccount,
		PaymentPortal:  details.EventURL,
		EventImageURL:  details.ImageURL,
		Source:         details.Source,
	}
}

// AttachVenue записывает в событие ссылку на запись реестра заведений.
func AttachVenue(event domain.Event, venue domain.Venue) domain.Event {
	event.VenueID = venue.DocID
	return event
}

// VenueQuery — строка запроса к геокодеру: "заведение, адрес", либо то, что известно.
// Заглушки не передаются.
func VenueQuery(details *domain.EventDetails) string {
	venue := meaningful(details.Venue)
	location := meaningful(details.Location)
	switch {
	case venue != "" && location != "" && venue != location:
		return venue + ", " + location
	case venue != "":
		return venue
	default:
		return location
	}
}

func meaningful(s string) string {
	switch s {
	case domain.VenueNotSpecified, domain.LocationNotSpecified, domain.UnknownVenue, domain.UnknownLocation:
		return ""
	}
	return strings.TrimSpace(s)
}
