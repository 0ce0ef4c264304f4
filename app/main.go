package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"eventsScraper/internal/app"
	"eventsScraper/internal/config"
	"eventsScraper/internal/graceful"
	"eventsScraper/internal/metrics"
	"eventsScraper/internal/orchestrator"
	telegramBot "eventsScraper/internal/telegram"
	"eventsScraper/internal/transport/httpServer"
	"eventsScraper/internal/transport/httpServer/handlers"
	"eventsScraper/internal/transport/httpServer/routers"
	"eventsScraper/internal/utils/logger/sl"
)

var Version = "0.1"

func main() {
	cfg := config.MustLoad()

	log := app.SetupLogger(cfg.Env)

	log.Info(
		"starting events scraper",
		slog.String("env", cfg.Env),
		slog.String("version", Version),
		slog.String("db driver", cfg.DBConfig.Driver),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := app.NewStore(ctx, log, cfg)
	cancel()
	if err != nil {
		log.Error("cannot open store", sl.Err(err))
		os.Exit(1)
	}

	metricsService := metrics.New()
	pipeline := app.NewPipeline(log, cfg, metricsService, store)
	orchestratorService := orchestrator.New(log, cfg, pipeline.Process, metricsService)

	shutdownOps := map[string]graceful.Operation{
		// хранилище закрывается только после остановки воркеров
		"Orchestrator and repository": func(ctx context.Context) error {
			if err := orchestratorService.Shutdown(ctx); err != nil {
				log.Error("orchestrator shutdown", sl.Err(err))
			}
			return store.Shutdown(ctx)
		},
	}

	var tgBot *telegramBot.Bot
	if cfg.BotConfig.TgbotApiToken != "" {
		tgBot, err = telegramBot.New(log, cfg.BotConfig, orchestratorService)
		if err != nil {
			log.Error("cannot start telegram bot", sl.Err(err))
		} else {
			shutdownOps["Telegram bot"] = func(ctx context.Context) error {
				return tgBot.Shutdown(ctx)
			}
		}
	}

	var httpSrv *httpServer.HttpServer
	if cfg.HttpServer.Enabled {
		batchHandler := handlers.NewBatchHandler(log, orchestratorService)
		eventHandler := handlers.NewEventHandler(log, store, pipeline.Scraper)
		router := routers.NewRouter(log, batchHandler, eventHandler, metricsService.Handler())
		httpSrv = httpServer.NewHttpServer(log, router, cfg)
		shutdownOps["HTTP server"] = func(ctx context.Context) error {
			return httpSrv.Shutdown(ctx)
		}
	}

	maxSecond := 15 * time.Second
	waitShutdown := graceful.GracefulShutdown(
		context.Background(),
		maxSecond,
		shutdownOps,
		log,
	)

	go orchestratorService.Start()
	if tgBot != nil {
		go tgBot.Start()
	}
	if httpSrv != nil {
		go httpSrv.Listen()
	}

	<-waitShutdown
}
