package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source — тег платформы, с которой извлечено событие.
type Source string

const (
	SourceWebtickets  Source = "webtickets"
	SourceComputicket Source = "computicket"
	SourceQuicket     Source = "quicket"
	SourceHowler      Source = "howler"
	SourceTicketpro   Source = "ticketpro"
)

// Sources возвращает все поддерживаемые платформы в фиксированном порядке.
func Sources() []Source {
	return []Source{
		SourceWebtickets,
		SourceComputicket,
		SourceQuicket,
		SourceHowler,
		SourceTicketpro,
	}
}

func (s Source) String() string {
	return string(s)
}

// Значения-заглушки для полей, которые не удалось извлечь.
const (
	NoTitle              = "No title found"
	Unknown              = "Unknown"
	UnknownEvent         = "Unknown Event"
	VenueNotSpecified    = "Venue not specified"
	LocationNotSpecified = "Location not specified"
	UnknownVenue         = "Unknown Venue"
	UnknownLocation      = "Unknown Location"
)

// Метки типов билетов.
const (
	PriceGeneral      = "General"
	PriceStartingFrom = "Starting from"
)

// Price — пара (тип билета, строка цены). Строка сохраняет исходное форматирование ("R200", "R 200.00").
type Price struct {
	Type  string `json:"type" yaml:"type"`
	Price string `json:"price" yaml:"price"`
}

// EventDetails — каноничный результат извлечения с одной страницы события.
// StartDate и EndDate хранят "наивное" локальное время: учитываются только компоненты даты и времени,
// смещение +02:00 прикрепляет сборщик записи.
type EventDetails struct {
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Venue       string         `json:"venue" yaml:"venue"`
	Location    string         `json:"location" yaml:"location"`
	StartDate   *time.Time     `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     *time.Time     `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Prices      []Price        `json:"prices" yaml:"prices"`
	ImageURL    string         `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	EventURL    string         `json:"event_url" yaml:"event_url"`
	Source      Source         `json:"source" yaml:"source"`
	RawData     map[string]any `json:"raw_data,omitempty" yaml:"raw_data,omitempty"`
}

// GeoPoint — координаты места.
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Venue — запись о заведении из геокодера (establishment).
// PlaceID — естественный ключ реестра, DocID — идентификатор записи в самом реестре.
type Venue struct {
	DocID            string   `json:"docId,omitempty" bson:"-"`
	PlaceID          string   `json:"id" bson:"id"`
	FormattedAddress string   `json:"formattedAddress" bson:"formattedAddress"`
	Location         GeoPoint `json:"location" bson:"location"`
	DisplayName      string   `json:"displayName" bson:"displayName"`
	ManagerAccount   string   `json:"managerAccount" bson:"managerAccount"`
}

// DefaultAgeRestriction — возрастное ограничение по умолчанию.
const DefaultAgeRestriction = "18 and older"

// Event — доменная модель сохраняемого мероприятия.
type Event struct {
	ID             uuid.UUID  `json:"id" bson:"-"`
	Name           string     `json:"name" bson:"name"`
	Description    string     `json:"description" bson:"description"`
	StartDate      *time.Time `json:"startDate" bson:"startDate"`
	EndDate        *time.Time `json:"endDate" bson:"endDate"`
	Price          float64    `json:"price" bson:"price"`
	AgeRestriction string     `json:"ageRestriction" bson:"ageRestriction"`
	ArtistNames    []string   `json:"artistNames" bson:"artistNames"`
	Artists        []string   `json:"artists" bson:"artists"`
	Genres         []string   `json:"genres" bson:"genres"`
	ManagerAccount string     `json:"managerAccount" bson:"managerAccount"`
	PaymentPortal  string     `json:"paymentPortal" bson:"paymentPortal"`
	EventImageURL  string     `json:"eventImageUrl" bson:"eventImageUrl"`
	Venue          string     `json:"venue" bson:"venue"`
	VenueID        string     `json:"venueId" bson:"venueId"`
	WhatsThePlace  string     `json:"whatstheplace" bson:"whatstheplace"`
	Source         Source     `json:"source" bson:"source"`
}

// Статусы элемента пакета в потоке прогресса.
const (
	ProgressProcessing = "processing"
	ProgressDone       = "done"
)

// Progress — событие прогресса обработки пакета URL.
// Терминальное событие имеет только Done: true.
type Progress struct {
	Index  int    `json:"index,omitempty"`
	Total  int    `json:"total,omitempty"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status,omitempty"`
	Error  bool   `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
	Done   bool   `json:"done,omitempty"`
}

// IsTerminal сообщает, является ли событие завершающим сигналом пакета.
func (p Progress) IsTerminal() bool {
	return p.Done
}
