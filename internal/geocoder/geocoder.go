package geocoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/go-resty/resty/v2"

	"eventsScraper/internal/config"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/models/dto"
)

var (
	// ErrNoMatch — сервис мест не нашёл ни одного кандидата.
	ErrNoMatch = errors.New("no matching place")
	// ErrNotConfigured — не задан ключ API.
	ErrNotConfigured = errors.New("geocoder api key is not set")
)

const placeFields = "place_id,formatted_address,geometry,name"

// Geocoder ищет заведение по свободному тексту через Google Places "Find Place from Text".
type Geocoder struct {
	logger         *slog.Logger
	client         *resty.Client
	baseURL        string
	apiKey         string
	managerAccount string
}

func New(logger *slog.Logger, cfg config.GeocoderConfig, managerAccount string) *Geocoder {
	client := resty.New()
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.SetTimeout(timeout)

	return &Geocoder{
		logger:         logger,
		client:         client,
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		managerAccount: managerAccount,
	}
}

// Enabled сообщает, задан ли ключ API.
func (g *Geocoder) Enabled() bool {
	return g != nil && g.apiKey != ""
}

// Lookup ищет место по query. Из нескольких кандидатов выбирается тот,
// чьё название ближе всего к name по Jaro-Winkler; при равенстве остаётся первый.
func (g *Geocoder) Lookup(ctx context.Context, query, name string) (domain.Venue, error) {
	op := "Geocoder.Lookup()"
	log := g.logger.With(
		slog.String("op", op),
		slog.String("query", query),
	)

	if !g.Enabled() {
		return domain.Venue{}, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	if strings.TrimSpace(query) == "" {
		return domain.Venue{}, fmt.Errorf("%s: %w: empty query", op, ErrNoMatch)
	}

	var body dto.PlacesResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"input":     query,
			"inputtype": "textquery",
			"fields":    placeFields,
			"key":       g.apiKey,
		}).
		SetResult(&body).
		ForceContentType("application/json").
		Get(g.baseURL)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsSuccess() {
		return domain.Venue{}, fmt.Errorf("%s: places api status %d", op, resp.StatusCode())
	}

	switch body.Status {
	case "OK", "":
	case "ZERO_RESULTS":
		return domain.Venue{}, fmt.Errorf("%s: %w", op, ErrNoMatch)
	default:
		return domain.Venue{}, fmt.Errorf("%s: places api: %s %s", op, body.Status, body.ErrorMessage)
	}

	if len(body.Candidates) == 0 {
		return domain.Venue{}, fmt.Errorf("%s: %w", op, ErrNoMatch)
	}

	best := bestCandidate(body.Candidates, name)
	log.Debug("place found",
		slog.String("placeId", best.PlaceID),
		slog.String("name", best.Name),
		slog.Int("candidates", len(body.Candidates)),
	)

	return best.ToDomain(g.managerAccount), nil
}

func bestCandidate(candidates []dto.PlaceCandidate, name string) dto.PlaceCandidate {
	best := candidates[0]
	if name == "" || len(candidates) == 1 {
		return best
	}

	var bestScore float64
	for i, c := range candidates {
		score := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(c.Name), false)
		if i == 0 || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
