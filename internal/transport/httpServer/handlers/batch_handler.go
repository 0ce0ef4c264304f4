package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"eventsScraper/internal/orchestrator"
	"eventsScraper/internal/transport/httpServer/handlers/dto"
	"eventsScraper/internal/utils"
	"eventsScraper/internal/utils/logger/sl"
)

type BatchHandler struct {
	orchestrator BatchOrchestrator
	log          *slog.Logger
}

func NewBatchHandler(log *slog.Logger, o BatchOrchestrator) *BatchHandler {
	return &BatchHandler{
		orchestrator: o,
		log:          log,
	}
}

// CreateBatch обрабатывает POST /api/v1/batches
func (h *BatchHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.BatchHandler.CreateBatch()"
	log := h.log.With(slog.String("op", op))

	var req dto.CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(log, fmt.Errorf("cannot decode json: %w", err), w, http.StatusBadRequest)
		return
	}

	task, err := h.orchestrator.Submit(req.URLs)
	switch {
	case errors.Is(err, orchestrator.ErrEmptyBatch):
		respondError(log, err, w, http.StatusBadRequest)
		return
	case errors.Is(err, orchestrator.ErrBufferFull), errors.Is(err, orchestrator.ErrShuttingDown):
		respondError(log, err, w, http.StatusServiceUnavailable)
		return
	case err != nil:
		respondError(log, err, w, http.StatusInternalServerError)
		return
	}

	log.Info("batch accepted", slog.String("batchId", task.ID.String()), slog.Int("total", len(task.URLs)))

	resp := dto.CreateBatchResponse{BatchID: task.ID.String(), Total: len(task.URLs)}
	if err := utils.Json(w, http.StatusAccepted, resp); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// Progress обрабатывает GET /api/v1/batches/{batchId}/progress.
// Отдаёт события прогресса как text/event-stream до завершающего {"done":true}.
func (h *BatchHandler) Progress(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.BatchHandler.Progress()"
	log := h.log.With(slog.String("op", op))

	task, ok := h.lookup(log, w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(log, fmt.Errorf("streaming unsupported"), w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			log.Info("client disconnected", slog.String("batchId", task.ID.String()))
			return
		case p, ok := <-task.Progress():
			if !ok {
				h.orchestrator.Forget(task.ID)
				return
			}
			data, err := json.Marshal(p)
			if err != nil {
				log.Error("error encoding progress", sl.Err(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				log.Error("error writing progress", sl.Err(err))
				return
			}
			flusher.Flush()
		}
	}
}

// CancelBatch обрабатывает DELETE /api/v1/batches/{batchId}
func (h *BatchHandler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.BatchHandler.CancelBatch()"
	log := h.log.With(slog.String("op", op))

	task, ok := h.lookup(log, w, r)
	if !ok {
		return
	}

	task.Cancel()
	log.Info("batch cancelled", slog.String("batchId", task.ID.String()))

	if err := utils.Json(w, http.StatusAccepted, map[string]string{"status": "cancelling"}); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

func (h *BatchHandler) lookup(log *slog.Logger, w http.ResponseWriter, r *http.Request) (*orchestrator.Task, bool) {
	batchID := chi.URLParam(r, "batchId")

	id, err := uuid.Parse(batchID)
	if err != nil {
		respondError(log, fmt.Errorf("invalid batchId: %w", err), w, http.StatusBadRequest)
		return nil, false
	}

	task, ok := h.orchestrator.Lookup(id)
	if !ok {
		respondError(log, fmt.Errorf("batch %s not found", batchID), w, http.StatusNotFound)
		return nil, false
	}
	return task, true
}
