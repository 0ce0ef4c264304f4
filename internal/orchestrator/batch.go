package orchestrator

import (
	"context"
	"fmt"

	"eventsScraper/internal/models/domain"
)

// ProcessFunc обрабатывает одну ссылку пакета.
type ProcessFunc func(ctx context.Context, url string) error

// EmitFunc получает события прогресса в порядке ссылок пакета.
type EmitFunc func(domain.Progress)

// Result — итог пакета. Skipped — ссылки, до которых не дошла очередь из-за отмены.
type Result struct {
	Total     int  `json:"total"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
	Cancelled bool `json:"cancelled"`
}

// RunBatch обрабатывает ссылки строго последовательно. Ошибка или паника одной ссылки
// не прерывает пакет. Отмена ctx проверяется только между ссылками.
// Завершающее событие {done: true} отправляется ровно один раз, в том числе после паники.
func RunBatch(ctx context.Context, urls []string, process ProcessFunc, emit EmitFunc) (res Result) {
	res.Total = len(urls)

	defer func() {
		if r := recover(); r != nil {
			res.Failed = res.Total - res.Succeeded - res.Skipped
		}
		emit(domain.Progress{Done: true})
	}()

	for i, url := range urls {
		if ctx.Err() != nil {
			res.Cancelled = true
			res.Skipped = len(urls) - i
			break
		}

		emit(domain.Progress{
			Index:  i + 1,
			Total:  res.Total,
			URL:    url,
			Status: domain.ProgressProcessing,
		})

		done := domain.Progress{
			Index:  i + 1,
			Total:  res.Total,
			URL:    url,
			Status: domain.ProgressDone,
		}
		if err := safeProcess(ctx, process, url); err != nil {
			res.Failed++
			done.Error = true
			done.Reason = err.Error()
		} else {
			res.Succeeded++
		}
		emit(done)
	}

	return res
}

func safeProcess(ctx context.Context, process ProcessFunc, url string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", url, r)
		}
	}()
	return process(ctx, url)
}
