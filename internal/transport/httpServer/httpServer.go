package httpServer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventsScraper/internal/config"
	"eventsScraper/internal/transport/httpServer/routers"
	"eventsScraper/internal/utils/logger/sl"
)

type HttpServer struct {
	log    *slog.Logger
	server *http.Server
}

func NewHttpServer(log *slog.Logger, router *routers.Router, cfg *config.Config) *HttpServer {
	mux := chi.NewRouter()
	router.Mount(mux)

	return &HttpServer{
		log: log,
		server: &http.Server{
			Addr:        net.JoinHostPort(cfg.HttpServer.Address, cfg.HttpServer.Port),
			Handler:     mux,
			ReadTimeout: cfg.HttpServer.Timeout,
			IdleTimeout: 4 * cfg.HttpServer.Timeout,
		},
	}
}

// Listen блокируется до остановки сервера.
func (s *HttpServer) Listen() {
	op := "httpServer.Listen()"
	log := s.log.With(slog.String("op", op))

	log.Info("http server started", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server stopped", sl.Err(err))
	}
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	op := "httpServer.Shutdown()"

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
