package telegramBot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"eventsScraper/internal/config"
	"eventsScraper/internal/orchestrator"
	"eventsScraper/internal/utils/logger/sl"
)

// botAPI — часть tgbotapi.BotAPI, которой пользуется бот.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Submitter ставит пакет ссылок в очередь обработки и убирает завершённые пакеты из реестра.
type Submitter interface {
	Submit(urls []string) (*orchestrator.Task, error)
	Forget(id uuid.UUID)
}

type sendFunction func(inputMsg *tgbotapi.Message, replyText string) error

// Bot принимает ссылки от администраторов и пересылает ход обработки пакета в чат.
type Bot struct {
	log       *slog.Logger
	cfg       config.BotConfig
	tgbot     botAPI
	submitter Submitter

	mu      sync.Mutex
	pending map[int64][]string
	running map[int64]*orchestrator.Task

	shutdownChannel chan struct{}
	wg              sync.WaitGroup
}

func New(logger *slog.Logger, cfg config.BotConfig, submitter Submitter) (*Bot, error) {
	op := "telegramBot.New()"

	api, err := tgbotapi.NewBotAPI(cfg.TgbotApiToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("authorized on telegram", slog.String("account", api.Self.UserName))

	return newBot(logger, cfg, api, submitter), nil
}

func newBot(logger *slog.Logger, cfg config.BotConfig, api botAPI, submitter Submitter) *Bot {
	return &Bot{
		log:             logger,
		cfg:             cfg,
		tgbot:           api,
		submitter:       submitter,
		pending:         make(map[int64][]string),
		running:         make(map[int64]*orchestrator.Task),
		shutdownChannel: make(chan struct{}),
	}
}

// Start читает обновления до вызова Shutdown.
func (bot *Bot) Start() {
	op := "telegramBot.Start()"
	log := bot.log.With(slog.String("op", op))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = bot.cfg.UpdateTimeout
	updates := bot.tgbot.GetUpdatesChan(u)

	log.Info("bot started")

	for {
		select {
		case <-bot.shutdownChannel:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := bot.handleUpdate(context.Background(), &update); err != nil {
				log.Error("update handling failed", sl.Err(err))
			}
		}
	}
}

func (bot *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}
	if update.Message.IsCommand() {
		return bot.commandHandler(ctx, update, bot.sendReplyMessage)
	}
	return bot.textHandler(update, bot.sendReplyMessage)
}

func (bot *Bot) sendReplyMessage(inputMsg *tgbotapi.Message, replyText string) error {
	msg := tgbotapi.NewMessage(inputMsg.Chat.ID, replyText)
	msg.ReplyToMessageID = inputMsg.MessageID
	if _, err := bot.tgbot.Send(msg); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (bot *Bot) sendMessage(chatID int64, text string) {
	if _, err := bot.tgbot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		bot.log.Error("failed to send message", slog.Int64("chatID", chatID), sl.Err(err))
	}
}

// Shutdown останавливает приём обновлений и ждёт завершения пересылки прогресса.
func (bot *Bot) Shutdown(ctx context.Context) error {
	op := "telegramBot.Shutdown()"
	log := bot.log.With(slog.String("op", op))

	close(bot.shutdownChannel)
	bot.tgbot.StopReceivingUpdates()

	bot.mu.Lock()
	for _, task := range bot.running {
		task.Cancel()
	}
	bot.mu.Unlock()

	done := make(chan struct{})
	go func() {
		bot.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: force exit: %w", op, ctx.Err())
	case <-done:
		log.Info("bot stopped")
		return nil
	}
}
