package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventsScraper/internal/scraper"
	"eventsScraper/internal/transport/httpServer/handlers/dto"
	"eventsScraper/internal/utils"
	"eventsScraper/internal/utils/logger/sl"
)

type EventHandler struct {
	repository EventRepository
	extractor  EventExtractor
	log        *slog.Logger
}

func NewEventHandler(log *slog.Logger, repo EventRepository, extractor EventExtractor) *EventHandler {
	return &EventHandler{
		repository: repo,
		extractor:  extractor,
		log:        log,
	}
}

// GetEvents обрабатывает GET /api/v1/events
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.EventHandler.GetEvents()"
	log := h.log.With(slog.String("op", op))

	events, err := h.repository.ListEvents(r.Context())
	if err != nil {
		respondError(log, fmt.Errorf("failed to get events: %w", err), w, http.StatusInternalServerError)
		return
	}

	response := dto.MapDomainToEventResponseList(events)

	if err := utils.Json(w, http.StatusOK, response); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// Extract обрабатывает POST /api/v1/extract: извлекает одну страницу и ничего не сохраняет.
// 400 для неподдерживаемой платформы, 422 если страницу не удалось разобрать.
func (h *EventHandler) Extract(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.EventHandler.Extract()"
	log := h.log.With(slog.String("op", op))

	var req dto.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(log, fmt.Errorf("cannot decode json: %w", err), w, http.StatusBadRequest)
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		respondError(log, fmt.Errorf("empty url"), w, http.StatusBadRequest)
		return
	}

	details, err := h.extractor.Extract(r.Context(), url)
	switch {
	case errors.Is(err, scraper.ErrUnsupportedPlatform):
		respondError(log, err, w, http.StatusBadRequest)
		return
	case err != nil:
		respondError(log, err, w, http.StatusUnprocessableEntity)
		return
	}

	if err := utils.Json(w, http.StatusOK, details); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

func respondError(log *slog.Logger, err error, w http.ResponseWriter, status int) {
	log.Error("handler error", sl.Err(err), slog.Int("status", status))
	if httpErr := utils.Err(w, status, err); httpErr != nil {
		log.Error("error sending http response", sl.Err(httpErr))
	}
}
