package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openrouter "github.com/revrost/go-openrouter"
	"github.com/revrost/go-openrouter/jsonschema"

	"eventsScraper/internal/config"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/models/dto"
	"eventsScraper/internal/utils/logger/sl"
)

const systemPrompt = `You classify South African live events. Answer only with JSON that matches the schema.
Use short lowercase genre names. List only artists that are explicitly named in the text.`

var errEmptyResponse = errors.New("empty AI response")

// completeFunc отправляет системное и пользовательское сообщения и возвращает текст ответа.
type completeFunc func(ctx context.Context, system, user string) (string, error)

// Enricher заполняет жанры и исполнителей события через OpenRouter.
type Enricher struct {
	logger     *slog.Logger
	cfg        config.AIConfig
	complete   completeFunc
	retryPause time.Duration
}

// NewEnricher возвращает nil, если обогащение выключено или не задан токен.
func NewEnricher(logger *slog.Logger, cfg config.AIConfig) *Enricher {
	op := "Openrouter.NewEnricher()"
	log := logger.With(slog.String("op", op))

	if !cfg.Enabled {
		return nil
	}
	if cfg.AIApiToken == "" {
		log.Warn("ai enrichment enabled but token is not set, skipping")
		return nil
	}

	client := openrouter.NewClient(cfg.AIApiToken)
	log.Info("creating openrouter client", slog.String("model", cfg.ModelName))

	return &Enricher{
		logger:     logger,
		cfg:        cfg,
		complete:   chatCompletion(client, cfg),
		retryPause: cfg.RetryPause,
	}
}

func chatCompletion(client *openrouter.Client, cfg config.AIConfig) completeFunc {
	return func(ctx context.Context, system, user string) (string, error) {
		schema, err := jsonschema.GenerateSchemaForType(dto.EventEnrichmentSchema{})
		if err != nil {
			return "", fmt.Errorf("GenerateSchemaForType error: %w", err)
		}

		resp, err := client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
			Model: cfg.ModelName,
			Messages: []openrouter.ChatCompletionMessage{
				openrouter.SystemMessage(system),
				openrouter.UserMessage(user),
			},
			ResponseFormat: &openrouter.ChatCompletionResponseFormat{
				Type: "json_schema",
				JSONSchema: &openrouter.ChatCompletionResponseFormatJSONSchema{
					Name:   "eventEnrichmentSchema",
					Strict: true,
					Schema: schema,
				},
			},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errEmptyResponse
		}

		return resp.Choices[0].Message.Content.Text, nil
	}
}

// Enrich возвращает событие с жанрами и исполнителями из ответа модели.
// При ошибке событие не меняется.
func (e *Enricher) Enrich(ctx context.Context, event domain.Event) (domain.Event, error) {
	op := "Openrouter.Enrich()"
	log := e.logger.With(
		slog.String("op", op),
		slog.String("eventName", event.Name),
	)

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	text, err := e.completeWithRetry(ctx, log, eventMessage(event))
	if err != nil {
		return event, fmt.Errorf("%s: %w", op, err)
	}

	cleaned := cleanJSONResponse(text)
	var schema dto.EventEnrichmentSchema
	if err := json.Unmarshal([]byte(cleaned), &schema); err != nil {
		log.Error("error unmarshal response", sl.Err(err), slog.String("response", cleaned))
		return event, fmt.Errorf("%s: unmarshal error: %w", op, err)
	}

	log.Debug("AI enrichment response", slog.Any("schema", schema))

	return schema.ApplyToEvent(event), nil
}

func (e *Enricher) completeWithRetry(ctx context.Context, log *slog.Logger, message string) (string, error) {
	attempts := max(e.cfg.RetryCount, 1)

	var err error
	for retry := range attempts {
		var text string
		text, err = e.complete(ctx, systemPrompt, message)
		if err == nil {
			return text, nil
		}
		if !isRateLimitError(err) && !isEOFError(err) {
			return "", err
		}

		log.Warn("AI completion error", sl.Err(err), slog.Int("retry", retry))
		if retry == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(e.retryPause):
		}
	}

	return "", fmt.Errorf("AI completion failed: %w", err)
}

func eventMessage(event domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", event.Name)
	fmt.Fprintf(&b, "Description: %s\n", event.Description)
	if event.Venue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", event.Venue)
	}
	b.WriteString("\nReturn the genres of this event and the names of the performing artists.")
	return b.String()
}

// isRateLimitError проверяет по тексту ошибки, связана ли она с HTTP 429.
func isRateLimitError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "429")
}

// isEOFError проверяет, оборвалось ли соединение.
func isEOFError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "EOF")
}

// cleanJSONResponse срезает markdown-обёртку ```json ... ``` и текст после JSON-объекта.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if after, ok := strings.CutPrefix(response, "```json"); ok {
		response = after
	} else if after, ok := strings.CutPrefix(response, "```"); ok {
		response = after
	}
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(response); i++ {
		c := response[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}

	return response
}
