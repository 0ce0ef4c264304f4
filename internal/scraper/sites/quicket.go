package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"eventsScraper/internal/dateparse"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/models/dto"
)

const DefaultQuicketBaseURL = "https://api.quicket.co.za/api"

var quicketEventIDRe = regexp.MustCompile(`/events/(\d{6})`)

// Quicket получает событие через Quicket API по шестизначному id из ссылки.
type Quicket struct {
	logger  *slog.Logger
	fetcher Fetcher
	baseURL string
	apiKey  string
}

func NewQuicket(logger *slog.Logger, fetcher Fetcher, baseURL, apiKey string) *Quicket {
	if baseURL == "" {
		baseURL = DefaultQuicketBaseURL
	}
	return &Quicket{
		logger:  logger,
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (q *Quicket) Source() domain.Source {
	return domain.SourceQuicket
}

// QuicketEventID достаёт id события из пути ссылки.
func QuicketEventID(url string) (string, bool) {
	m := quicketEventIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (q *Quicket) Extract(ctx context.Context, url string) (*domain.EventDetails, error) {
	op := "Quicket.Extract()"
	log := q.logger.With(slog.String("op", op), slog.String("url", url))

	id, ok := QuicketEventID(url)
	if !ok {
		return nil, fmt.Errorf("%s: %w: could not retrieve event id from %s", op, ErrExtraction, url)
	}
	if q.apiKey == "" {
		return nil, fmt.Errorf("%s: %w: quicket api key is not set", op, ErrExtraction)
	}

	log.Debug("requesting quicket api", slog.String("eventId", id))

	var raw json.RawMessage
	endpoint := fmt.Sprintf("%s/Events/%s", q.baseURL, id)
	if err := q.fetcher.JSON(ctx, endpoint, map[string]string{"api_key": q.apiKey}, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	details, err := ParseQuicket(raw, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return details, nil
}

// ParseQuicket собирает EventDetails из тела ответа Quicket API.
func ParseQuicket(raw []byte, eventURL string) (*domain.EventDetails, error) {
	var event dto.QuicketEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: decode quicket event: %v", ErrExtraction, err)
	}

	var rawData map[string]any
	if err := json.Unmarshal(raw, &rawData); err != nil {
		return nil, fmt.Errorf("%w: decode quicket event: %v", ErrExtraction, err)
	}

	title := event.Name
	if title == "" {
		title = domain.Unknown
	}

	venue := domain.UnknownVenue
	if event.Venue != nil && event.Venue.Name != "" {
		venue = event.Venue.Name
	}
	location := event.Address()
	if location == "" {
		location = domain.UnknownLocation
	}

	return &domain.EventDetails{
		Title:       title,
		Description: quicketDescription(event.Description),
		Venue:       venue,
		Location:    location,
		StartDate:   dateparse.ParseISOLocal(event.StartDate),
		EndDate:     dateparse.ParseISOLocal(event.EndDate),
		Prices:      quicketPrices(event.Tickets),
		ImageURL:    quicketImage(event.ImageURL),
		EventURL:    eventURL,
		Source:      domain.SourceQuicket,
		RawData:     rawData,
	}, nil
}

// quicketDescription превращает HTML-описание в текст, абзацы разделяются переводом строки.
func quicketDescription(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := parseDoc(html)
	if err != nil {
		return ""
	}
	text := joinedText(doc.Selection, "\n")
	return strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
}

// quicketImage дополняет протокол у ссылок вида "//images.quicket.co.za/...".
func quicketImage(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	if !strings.HasPrefix(src, "http") {
		src = "https:" + src
	}
	if !validImageURL(src) {
		return ""
	}
	return src
}

func quicketPrices(tickets []dto.QuicketTicket) []domain.Price {
	prices := []domain.Price{}
	for _, t := range tickets {
		if !t.Available() || t.Price == nil {
			continue
		}
		name := t.Name
		if name == "" {
			name = domain.PriceGeneral
		}
		prices = append(prices, domain.Price{Type: name, Price: t.Price.String()})
	}
	return prices
}
