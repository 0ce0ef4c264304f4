package routers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"eventsScraper/internal/transport/httpServer/handlers"
	myMiddleware "eventsScraper/internal/transport/httpServer/middleware"
)

type Router struct {
	log            *slog.Logger
	batchHandler   *handlers.BatchHandler
	eventHandler   *handlers.EventHandler
	metricsHandler http.Handler
}

func NewRouter(
	log *slog.Logger,
	batchHandler *handlers.BatchHandler,
	eventHandler *handlers.EventHandler,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		log:            log,
		batchHandler:   batchHandler,
		eventHandler:   eventHandler,
		metricsHandler: metricsHandler,
	}
}

func (r *Router) Mount(mux *chi.Mux) {

	mux.Use(middleware.RequestID)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(myMiddleware.NewLoggerMiddleware(r.log))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Heartbeat("/ping"))

	if r.metricsHandler != nil {
		mux.Handle("/metrics", r.metricsHandler)
	}

	mux.Route("/api", func(mux chi.Router) {
		mux.Route("/v1", func(mux chi.Router) {
			mux.Route("/batches", func(mux chi.Router) {
				mux.Post("/", r.batchHandler.CreateBatch)
				mux.Get("/{batchId}/progress", r.batchHandler.Progress)
				mux.Delete("/{batchId}", r.batchHandler.CancelBatch)
			})
			mux.Post("/extract", r.eventHandler.Extract)
			mux.Get("/events", r.eventHandler.GetEvents)
		})
	})
}
