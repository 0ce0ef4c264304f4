package telegramBot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/orchestrator"
)

var (
	errNotAdmin = errors.New("user is not admin")
	urlRe       = regexp.MustCompile(`https?://\S+`)
)

func (bot *Bot) commandHandler(ctx context.Context, update *tgbotapi.Update, sendFunc sendFunction) error {
	op := "bot.commandHandler"
	log := bot.log.With(
		slog.String("op", op),
	)

	msg := update.Message
	isAdmin := bot.isAdmin(msg)

	log.Debug(msg.Command(),
		slog.String("user name", userName(msg)),
		slog.String("message", msg.Text),
		slog.String("is admin", strconv.FormatBool(isAdmin)),
	)

	if msg.Command() == "start" {
		replyText := fmt.Sprintf("Hi, %s! Send event links or /add <url>, then /run.", userName(msg))
		if err := sendFunc(msg, replyText); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	if !isAdmin {
		return fmt.Errorf("%s: %w", op, errNotAdmin)
	}

	var replyText string
	switch msg.Command() {
	case "add":
		added := bot.addURLs(msg.Chat.ID, msg.CommandArguments())
		replyText = fmt.Sprintf("Added %d link(s), %d pending", added, len(bot.pendingURLs(msg.Chat.ID)))

	case "list":
		urls := bot.pendingURLs(msg.Chat.ID)
		if len(urls) == 0 {
			replyText = "No pending links"
			break
		}
		var sb strings.Builder
		for i, u := range urls {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, u)
		}
		replyText = sb.String()

	case "clear":
		bot.mu.Lock()
		delete(bot.pending, msg.Chat.ID)
		bot.mu.Unlock()
		replyText = "Pending links cleared"

	case "run":
		task, err := bot.run(msg.Chat.ID)
		if err != nil {
			replyText = "Cannot start batch: " + err.Error()
			break
		}
		log.Info("batch submitted", slog.String("batchId", task.ID.String()), slog.Int64("chatID", msg.Chat.ID))
		replyText = fmt.Sprintf("Processing %d link(s), batch %s", len(task.URLs), task.ID)
		err = sendFunc(msg, replyText)

		bot.wg.Add(1)
		go bot.relayProgress(msg.Chat.ID, task)

		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil

	case "cancel":
		bot.mu.Lock()
		task, ok := bot.running[msg.Chat.ID]
		bot.mu.Unlock()
		if !ok {
			replyText = "Nothing is running"
			break
		}
		task.Cancel()
		replyText = "Cancelling after the current link"

	default:
		replyText = "I don't know this command"
	}

	if err := sendFunc(msg, replyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// textHandler добавляет ссылки из обычного сообщения в список ожидания.
func (bot *Bot) textHandler(update *tgbotapi.Update, sendFunc sendFunction) error {
	op := "bot.textHandler"
	msg := update.Message

	if !bot.isAdmin(msg) {
		return fmt.Errorf("%s: %w", op, errNotAdmin)
	}

	added := bot.addURLs(msg.Chat.ID, msg.Text)
	if added == 0 {
		return nil
	}
	replyText := fmt.Sprintf("Added %d link(s), %d pending", added, len(bot.pendingURLs(msg.Chat.ID)))
	if err := sendFunc(msg, replyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (bot *Bot) addURLs(chatID int64, text string) int {
	found := urlRe.FindAllString(text, -1)

	bot.mu.Lock()
	defer bot.mu.Unlock()
	bot.pending[chatID] = append(bot.pending[chatID], found...)
	return len(found)
}

func (bot *Bot) pendingURLs(chatID int64) []string {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	return slices.Clone(bot.pending[chatID])
}

// run отправляет накопленные ссылки в оркестратор и запоминает пакет чата.
func (bot *Bot) run(chatID int64) (*orchestrator.Task, error) {
	bot.mu.Lock()
	defer bot.mu.Unlock()

	if _, busy := bot.running[chatID]; busy {
		return nil, errors.New("a batch is already running")
	}
	if len(bot.pending[chatID]) == 0 {
		return nil, orchestrator.ErrEmptyBatch
	}

	task, err := bot.submitter.Submit(bot.pending[chatID])
	if err != nil {
		return nil, err
	}
	delete(bot.pending, chatID)
	bot.running[chatID] = task

	return task, nil
}

func (bot *Bot) relayProgress(chatID int64, task *orchestrator.Task) {
	defer bot.wg.Done()

	for p := range task.Progress() {
		if p.IsTerminal() || p.Status != domain.ProgressDone {
			continue
		}
		bot.sendMessage(chatID, formatProgress(p))
	}

	res, err := task.Wait(context.Background())
	bot.submitter.Forget(task.ID)

	bot.mu.Lock()
	delete(bot.running, chatID)
	bot.mu.Unlock()

	if err != nil {
		bot.sendMessage(chatID, "Batch finished with error: "+err.Error())
		return
	}
	bot.sendMessage(chatID, formatResult(res))
}

func formatProgress(p domain.Progress) string {
	if p.Error {
		return fmt.Sprintf("❌ %d/%d %s: %s", p.Index, p.Total, p.URL, p.Reason)
	}
	return fmt.Sprintf("✅ %d/%d %s", p.Index, p.Total, p.URL)
}

func formatResult(res orchestrator.Result) string {
	text := fmt.Sprintf("Done: %d succeeded, %d failed", res.Succeeded, res.Failed)
	if res.Cancelled {
		text += fmt.Sprintf(", %d skipped (cancelled)", res.Skipped)
	}
	return text
}

func (bot *Bot) isAdmin(msg *tgbotapi.Message) bool {
	if msg.From == nil {
		return false
	}
	return slices.Contains(bot.cfg.Admins, msg.From.UserName)
}

func userName(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return ""
	}
	return msg.From.UserName
}
