package openrouter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"eventsScraper/internal/config"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/utils/logger/handlers/slogdiscard"
)

func newTestEnricher(complete completeFunc, retries int) *Enricher {
	return &Enricher{
		logger:   slogdiscard.NewDiscardLogger(),
		cfg:      config.AIConfig{Enabled: true, RetryCount: retries},
		complete: complete,
	}
}

func TestEnricher_Enrich(t *testing.T) {
	var gotUser string
	e := newTestEnricher(func(_ context.Context, _, user string) (string, error) {
		gotUser = user
		return "```json\n{\"genres\":[\"jazz\"],\"artistNames\":[\"Sipho Hotstix\"]}\n```\nHope this helps", nil
	}, 1)

	event := domain.Event{Name: "Jazz Night", Description: "Smooth jazz", Genres: []string{}}
	got, err := e.Enrich(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, []string{"jazz"}, got.Genres)
	require.Equal(t, []string{"Sipho Hotstix"}, got.Artists)
	require.Contains(t, gotUser, "Name: Jazz Night")
}

func TestEnricher_RetriesRateLimit(t *testing.T) {
	calls := 0
	e := newTestEnricher(func(context.Context, string, string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("error, status code: 429")
		}
		return `{"genres":["comedy"],"artistNames":[]}`, nil
	}, 3)

	got, err := e.Enrich(context.Background(), domain.Event{})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []string{"comedy"}, got.Genres)
}

func TestEnricher_Failures(t *testing.T) {
	boom := errors.New("bad request")
	calls := 0
	e := newTestEnricher(func(context.Context, string, string) (string, error) {
		calls++
		return "", boom
	}, 5)

	event := domain.Event{Name: "Jazz", Genres: []string{}}
	got, err := e.Enrich(context.Background(), event)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
	require.Equal(t, event, got)

	e = newTestEnricher(func(context.Context, string, string) (string, error) {
		return "not json at all", nil
	}, 1)
	_, err = e.Enrich(context.Background(), event)
	require.Error(t, err)

	e = newTestEnricher(func(context.Context, string, string) (string, error) {
		return "", io.ErrUnexpectedEOF
	}, 2)
	_, err = e.Enrich(context.Background(), event)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCleanJSONResponse(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "```json\n{\"a\":{\"b\":\"}\"}}\n```", want: `{"a":{"b":"}"}}`},
		{in: "Sure! {\"a\":\"x\\\"y\"} trailing", want: `{"a":"x\"y"}`},
		{in: "no json", want: "no json"},
	} {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, cleanJSONResponse(tc.in))
		})
	}
}

func TestNewEnricher_Disabled(t *testing.T) {
	log := slogdiscard.NewDiscardLogger()
	require.Nil(t, NewEnricher(log, config.AIConfig{Enabled: false, AIApiToken: "x"}))
	require.Nil(t, NewEnricher(log, config.AIConfig{Enabled: true}))
}
