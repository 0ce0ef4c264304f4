package handlers

import (
	"context"

	"github.com/google/uuid"

	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/orchestrator"
)

// EventRepository — чтение сохранённых событий из хэндлеров.
type EventRepository interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// EventExtractor — извлечение одной страницы без сохранения.
type EventExtractor interface {
	Extract(ctx context.Context, url string) (*domain.EventDetails, error)
}

type BatchOrchestrator interface {
	Submit(urls []string) (*orchestrator.Task, error)
	Lookup(id uuid.UUID) (*orchestrator.Task, bool)
	Forget(id uuid.UUID)
}
