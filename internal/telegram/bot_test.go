package telegramBot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"eventsScraper/internal/config"
	"eventsScraper/internal/orchestrator"
	"eventsScraper/internal/utils/logger/handlers/slogdiscard"
)

type fakeAPI struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func command(user, text string) *tgbotapi.Update {
	cmd, _, _ := strings.Cut(text, " ")
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Text:      text,
		From:      &tgbotapi.User{UserName: user},
		Chat:      &tgbotapi.Chat{ID: 42},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func plain(user, text string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 2,
		Text:      text,
		From:      &tgbotapi.User{UserName: user},
		Chat:      &tgbotapi.Chat{ID: 42},
	}}
}

func newTestBot(t *testing.T, process orchestrator.ProcessFunc) (*Bot, *fakeAPI) {
	t.Helper()

	cfg := &config.Config{}
	cfg.PipelineConfig.WorkersCount = 1
	cfg.PipelineConfig.JobBufferSize = 2
	o := orchestrator.New(slogdiscard.NewDiscardLogger(), cfg, process, nil)
	go o.Start()
	t.Cleanup(func() { _ = o.Shutdown(context.Background()) })

	api := &fakeAPI{}
	bot := newBot(slogdiscard.NewDiscardLogger(), config.BotConfig{Admins: []string{"admin"}}, api, o)
	return bot, api
}

func TestBot_CollectAndRun(t *testing.T) {
	bot, api := newTestBot(t, func(_ context.Context, url string) error {
		if strings.Contains(url, "example.com") {
			return errors.New("unsupported platform")
		}
		return nil
	})
	ctx := context.Background()

	require.NoError(t, bot.handleUpdate(ctx, command("admin", "/add https://www.quicket.co.za/events/1")))
	require.NoError(t, bot.handleUpdate(ctx, plain("admin", "and this one https://example.com/x please")))
	require.NoError(t, bot.handleUpdate(ctx, command("admin", "/list")))
	require.Equal(t, []string{"https://www.quicket.co.za/events/1", "https://example.com/x"}, bot.pendingURLs(42))

	require.NoError(t, bot.handleUpdate(ctx, command("admin", "/run")))
	bot.wg.Wait()

	require.Empty(t, bot.pendingURLs(42))
	msgs := api.messages()
	require.Equal(t, "Added 1 link(s), 1 pending", msgs[0])
	require.Equal(t, "Added 1 link(s), 2 pending", msgs[1])
	require.Equal(t, "1. https://www.quicket.co.za/events/1\n2. https://example.com/x\n", msgs[2])
	require.Contains(t, msgs[3], "Processing 2 link(s)")
	fields := strings.Fields(msgs[3])
	batchID := uuid.MustParse(fields[len(fields)-1])
	_, ok := bot.submitter.(*orchestrator.Orchestrator).Lookup(batchID)
	require.False(t, ok, "finished batch must be removed from the registry")
	require.Equal(t, []string{
		"✅ 1/2 https://www.quicket.co.za/events/1",
		"❌ 2/2 https://example.com/x: unsupported platform",
		"Done: 1 succeeded, 1 failed",
	}, msgs[4:])
}

func TestBot_NonAdmin(t *testing.T) {
	bot, api := newTestBot(t, func(context.Context, string) error { return nil })
	ctx := context.Background()

	require.ErrorIs(t, bot.handleUpdate(ctx, command("stranger", "/add https://www.quicket.co.za/events/1")), errNotAdmin)
	require.ErrorIs(t, bot.handleUpdate(ctx, plain("stranger", "https://www.quicket.co.za/events/1")), errNotAdmin)
	require.Empty(t, bot.pendingURLs(42))

	require.NoError(t, bot.handleUpdate(ctx, command("stranger", "/start")))
	require.Equal(t, []string{"Hi, stranger! Send event links or /add <url>, then /run."}, api.messages())
}

func TestBot_RunEmptyAndClear(t *testing.T) {
	bot, api := newTestBot(t, func(context.Context, string) error { return nil })
	ctx := context.Background()

	require.NoError(t, bot.handleUpdate(ctx, command("admin", "/run")))
	require.NoError(t, bot.handleUpdate(ctx, command("admin", "/add https://www.howler.co.za/events/x")))
	require.NoError(t, bot.handleUpdate(ctx, command("admin", "/clear")))
	require.NoError(t, bot.handleUpdate(ctx, command("admin", "/cancel")))
	require.NoError(t, bot.handleUpdate(ctx, command("admin", "/unknown")))

	msgs := api.messages()
	require.Equal(t, "Cannot start batch: "+orchestrator.ErrEmptyBatch.Error(), msgs[0])
	require.Equal(t, "Pending links cleared", msgs[2])
	require.Equal(t, "Nothing is running", msgs[3])
	require.Equal(t, "I don't know this command", msgs[4])
	require.Empty(t, bot.pendingURLs(42))
}

func TestFormatResult(t *testing.T) {
	require.Equal(t, "Done: 1 succeeded, 0 failed, 2 skipped (cancelled)",
		formatResult(orchestrator.Result{Total: 3, Succeeded: 1, Skipped: 2, Cancelled: true}))
}
