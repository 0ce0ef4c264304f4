package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"eventsScraper/internal/config"
	"eventsScraper/internal/fetcher"
	"eventsScraper/internal/metrics"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/scraper/sites"
	"eventsScraper/internal/utils/logger/sl"
)

// ErrUnsupportedPlatform — хост ссылки не относится ни к одной известной платформе.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

type route struct {
	domains []string
	source  domain.Source
}

// routes — таблица подстрок хоста. Наборы доменов не пересекаются, побеждает первое совпадение.
var routes = []route{
	{domains: []string{"webtickets.co.za"}, source: domain.SourceWebtickets},
	{domains: []string{"computicket.com", "computicket-boxoffice.com"}, source: domain.SourceComputicket},
	{domains: []string{"quicket.co.za"}, source: domain.SourceQuicket},
	{domains: []string{"howler.co.za"}, source: domain.SourceHowler},
	{domains: []string{"ticketpro.co.za", "ticketproshop.co.za"}, source: domain.SourceTicketpro},
}

// Route определяет платформу по хосту ссылки без учёта регистра.
func Route(rawURL string) (domain.Source, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, rawURL)
	}

	host := strings.ToLower(u.Hostname())
	for _, r := range routes {
		for _, d := range r.domains {
			if strings.Contains(host, d) {
				return r.source, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, host)
}

// Scraper — реестр экстракторов и граница извлечения: ни ошибка, ни паника экстрактора
// не выходят за пределы одной ссылки.
type Scraper struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	extractors map[domain.Source]sites.Extractor
}

// New собирает реестр из пяти экстракторов. Каждая платформа получает загрузчик
// со своим таймаутом.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	f *fetcher.Fetcher,
	m *metrics.Metrics,
) *Scraper {
	op := "Scraper.New()"
	log := logger.With(
		slog.String("op", op),
	)

	timeout := func(s domain.Source) *fetcher.Fetcher {
		return f.WithTimeout(cfg.SourceTimeout(s.String()))
	}

	quicketCfg := cfg.SourcesConfig.Quicket
	if quicketCfg.APIKey == "" {
		log.Warn("quicket api key is not set, quicket links will fail")
	}

	s := NewWithExtractors(logger, m,
		sites.NewWebtickets(logger, timeout(domain.SourceWebtickets)),
		sites.NewComputicket(logger, timeout(domain.SourceComputicket)),
		sites.NewQuicket(logger, timeout(domain.SourceQuicket), quicketCfg.BaseURL, quicketCfg.APIKey),
		sites.NewHowler(logger, timeout(domain.SourceHowler), cfg.SourcesConfig.Howler.TicketBaseURL),
		sites.NewTicketpro(logger, timeout(domain.SourceTicketpro)),
	)

	log.Info("scraper registry created", slog.Int("extractors", len(s.extractors)))

	return s
}

// NewWithExtractors собирает реестр из переданных экстракторов.
func NewWithExtractors(logger *slog.Logger, m *metrics.Metrics, extractors ...sites.Extractor) *Scraper {
	s := &Scraper{
		logger:     logger,
		metrics:    m,
		extractors: make(map[domain.Source]sites.Extractor, len(extractors)),
	}
	for _, e := range extractors {
		s.extractors[e.Source()] = e
	}
	return s
}

// Extractor возвращает экстрактор для ссылки.
func (s *Scraper) Extractor(rawURL string) (sites.Extractor, error) {
	source, err := Route(rawURL)
	if err != nil {
		return nil, err
	}
	e, ok := s.extractors[source]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor registered for %s", ErrUnsupportedPlatform, source)
	}
	return e, nil
}

// Extract выбирает экстрактор и извлекает событие. Паника экстрактора превращается в ErrExtraction.
// Причина неудачи всегда логируется вместе со ссылкой.
func (s *Scraper) Extract(ctx context.Context, rawURL string) (details *domain.EventDetails, err error) {
	op := "Scraper.Extract()"
	log := s.logger.With(
		slog.String("op", op),
		slog.String("url", rawURL),
	)

	ex, err := s.Extractor(rawURL)
	if err != nil {
		log.Warn("unsupported platform", sl.Err(err))
		s.metrics.ObserveExtraction("", metrics.ResultUnsupported, 0)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	source := ex.Source()
	log = log.With(slog.String("source", source.String()))
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			details = nil
			err = fmt.Errorf("%s: %w: panic: %v", op, sites.ErrExtraction, r)
		}

		result := metrics.ResultSuccess
		switch {
		case err == nil:
			log.Debug("event extracted", slog.String("title", details.Title))
		case ctx.Err() != nil:
			result = metrics.ResultCancelled
			log.Warn("extraction cancelled", sl.Err(err))
		default:
			result = metrics.ResultFailed
			log.Warn("extraction failed", sl.Err(err))
		}
		s.metrics.ObserveExtraction(source.String(), result, time.Since(started))
	}()

	details, err = ex.Extract(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if details == nil {
		return nil, fmt.Errorf("%s: %w: empty result", op, sites.ErrExtraction)
	}

	return details, nil
}
