package app

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"eventsScraper/internal/config"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/utils/logger/handlers/slogdiscard"
)

func TestSetupLogger(t *testing.T) {
	for _, tc := range []struct {
		env       string
		json      bool
		debugSeen bool
	}{
		{env: "local", debugSeen: true},
		{env: "dev", json: true, debugSeen: true},
		{env: "prod"},
		{env: "", json: true},
	} {
		t.Run(tc.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(tc.env, &buf)

			log.Debug("debug line")
			require.Equal(t, tc.debugSeen, bytes.Contains(buf.Bytes(), []byte("debug line")))

			buf.Reset()
			log.Info("info line")
			require.Contains(t, buf.String(), "info line")
			require.Equal(t, tc.json, json.Valid(bytes.TrimSpace(buf.Bytes())))
		})
	}
}

func TestNewStore_Sqlite(t *testing.T) {
	cfg := &config.Config{}
	cfg.DBConfig.Driver = "sqlite"
	cfg.DBConfig.DSN = ":memory:"

	ctx := context.Background()
	store, err := NewStore(ctx, slogdiscard.NewDiscardLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Shutdown(ctx) })

	_, created, err := store.SaveEvent(ctx, domain.Event{
		Name:          "Jazz",
		PaymentPortal: "https://www.quicket.co.za/events/1",
		Genres:        []string{},
	})
	require.NoError(t, err)
	require.True(t, created)

	events, err := store.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	p := NewPipeline(slogdiscard.NewDiscardLogger(), cfg, nil, store)
	require.NotNil(t, p.Scraper)
	require.NotNil(t, p.Ingest)
}

func TestNewStore_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.DBConfig.Driver = "oracle"
	_, err := NewStore(context.Background(), slogdiscard.NewDiscardLogger(), cfg)
	require.Error(t, err)
}
