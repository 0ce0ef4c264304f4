// Package app собирает общие для сервиса и CLI компоненты: логгер, хранилище и обработчик ссылок.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"eventsScraper/internal/config"
	"eventsScraper/internal/fetcher"
	"eventsScraper/internal/geocoder"
	"eventsScraper/internal/ingest"
	"eventsScraper/internal/metrics"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/openrouter"
	"eventsScraper/internal/repositories"
	"eventsScraper/internal/repositories/mongostore"
	"eventsScraper/internal/scraper"
	"eventsScraper/internal/utils/logger/handlers/slogpretty"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"

	DriverMongo = "mongo"
)

// Store — хранилище событий и реестр заведений независимо от драйвера.
type Store interface {
	ingest.Store
	ListEvents(ctx context.Context) ([]domain.Event, error)
	Shutdown(ctx context.Context) error
}

// Pipeline — всё, что нужно для обработки ссылок.
type Pipeline struct {
	Scraper *scraper.Scraper
	Ingest  *ingest.Service
}

func SetupLogger(env string) *slog.Logger {
	return NewLogger(env, os.Stdout)
}

// NewLogger выбирает обработчик по окружению: local и prod печатают цветной текст, остальные JSON.
func NewLogger(env string, out io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog(out, slog.LevelDebug)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = setupPrettySlog(out, slog.LevelInfo)
	default: // неизвестное окружение: настройки prod в JSON
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog(out io.Writer, level slog.Level) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}

	return slog.New(opts.NewPrettyHandler(out))
}

// NewStore открывает MongoDB для драйвера "mongo", иначе SQL-базу через sqlx.
func NewStore(ctx context.Context, log *slog.Logger, cfg *config.Config) (Store, error) {
	op := "app.NewStore()"

	if cfg.DBConfig.Driver == DriverMongo {
		s, err := mongostore.New(ctx, log, cfg.DBConfig)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	}

	r, err := repositories.New(log, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// NewPipeline собирает загрузчик, экстракторы, геокодер и обогащение.
// store может быть nil: тогда события не сохраняются.
func NewPipeline(log *slog.Logger, cfg *config.Config, m *metrics.Metrics, store Store) *Pipeline {
	f := fetcher.New(log, fetcher.Options{
		UserAgent:        cfg.FetcherConfig.UserAgent,
		AcceptLanguage:   cfg.FetcherConfig.AcceptLanguage,
		Timeout:          cfg.FetcherConfig.Timeout,
		CloudflareBypass: cfg.FetcherConfig.CloudflareBypass,
	})
	s := scraper.New(log, cfg, f, m)

	managerAccount := cfg.PipelineConfig.ManagerAccount

	var geo ingest.Geocoder
	if g := geocoder.New(log, cfg.GeocoderConfig, managerAccount); g.Enabled() {
		geo = g
	} else {
		log.Warn("places api key is not set, venues will not be resolved")
	}

	var enricher ingest.Enricher
	if e := openrouter.NewEnricher(log, cfg.AIConfig); e != nil {
		enricher = e
	}

	var st ingest.Store
	if store != nil {
		st = store
	}

	return &Pipeline{
		Scraper: s,
		Ingest:  ingest.New(log, s, geo, st, enricher, managerAccount),
	}
}

// Process — шаг обработки ссылки для оркестратора.
func (p *Pipeline) Process(ctx context.Context, url string) error {
	_, err := p.Ingest.Process(ctx, url)
	return err
}
