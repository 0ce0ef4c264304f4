package sites

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"

	"eventsScraper/internal/models/domain"
)

// ErrExtraction — со страницы не удалось получить даже минимальный набор данных.
var ErrExtraction = errors.New("extraction failed")

// Extractor — стратегия извлечения события для одной платформы.
// Частично извлечённые поля заменяются заглушками, это не ошибка.
type Extractor interface {
	Source() domain.Source
	Extract(ctx context.Context, url string) (*domain.EventDetails, error)
}

// Fetcher — загрузчик страниц и JSON, которым пользуются экстракторы.
type Fetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
	JSON(ctx context.Context, url string, query map[string]string, out any) error
}
