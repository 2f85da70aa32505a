package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/courtside/internal/service"
)

// maxMessageLength is Telegram's limit on the text of a single message.
const maxMessageLength = 4096

var ErrNoChatID = errors.New("chat ID not set")

var commands = []tgbotapi.BotCommand{
	{Command: "teams", Description: "List league teams"},
	{Command: "player", Description: "Normalized statistics of a player"},
	{Command: "team", Description: "Roster relevances of a team"},
	{Command: "trade", Description: "Trade relevances between two teams"},
	{Command: "waivers", Description: "Most relevant free agents for a team"},
	{Command: "summary", Description: "Normalized roster statistics"},
	{Command: "refresh", Description: "Recompute today's statistics"},
	{Command: "help", Description: "Show available commands"},
}

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
}

func NewTelegramBot(token string, chatID int64, statsService *service.StatsService) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &TelegramBot{
		bot:     bot,
		handler: NewHandler(statsService),
		chatID:  chatID,
	}, nil
}

func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	if _, err := t.bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		slog.Error("Error registering commands", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			reply := t.handler.HandleCommand(ctx, update)
			if err := t.send(reply); err != nil {
				slog.Error("Error sending message", "command", update.Message.Command(), "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// send delivers msg, split into several messages when it is too long.
func (t *TelegramBot) send(msg tgbotapi.MessageConfig) error {
	for _, part := range chunkMessage(msg.Text, maxMessageLength) {
		msg.Text = part
		if _, err := t.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// SendMessage posts text to the configured chat.
func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		return ErrNoChatID
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	if err := t.send(msg); err != nil {
		slog.Error("Error sending message", "chat_id", t.chatID, "error", err)
		return err
	}
	return nil
}

// chunkMessage splits text on line boundaries into parts of at most limit
// runes. A single line longer than limit is cut mid-line.
func chunkMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	size := 0
	flush := func() {
		if size > 0 {
			parts = append(parts, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
		}
		n := utf8.RuneCountInString(line)
		if size+n > limit {
			flush()
		}
		current.WriteString(line)
		size += n
	}
	flush()
	return parts
}
