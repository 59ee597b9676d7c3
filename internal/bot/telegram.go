package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen is Telegram's limit on a single message body.
const maxMessageLen = 4096

var ErrNoChat = errors.New("telegram chat id not set")

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramBot answers commands over long polling and pushes scheduled
// reports to the league chat. When chatID is set, commands from other
// chats are ignored.
type TelegramBot struct {
	api     *tgbotapi.BotAPI
	out     sender
	handler *Handler
	chatID  int64
}

func NewTelegramBot(token string, chatID int64, handler *Handler) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return &TelegramBot{api: api, out: api, handler: handler, chatID: chatID}, nil
}

func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Telegram bot authorized", "username", t.api.Self.UserName, "chat_id", t.chatID)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.api.GetUpdatesChan(u)
	defer t.api.StopReceivingUpdates()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handle(ctx, update)
		case <-ctx.Done():
			return nil
		}
	}
}

func (t *TelegramBot) handle(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	chat := update.Message.Chat.ID
	if t.chatID != 0 && chat != t.chatID {
		slog.Warn("Ignoring command from foreign chat", "chat_id", chat, "command", update.Message.Command())
		return
	}

	slog.Info("Handling command", "command", update.Message.Command(), "chat_id", chat)
	if _, err := t.out.Send(tgbotapi.NewChatAction(chat, tgbotapi.ChatTyping)); err != nil {
		slog.Debug("Chat action failed", "error", err)
	}
	reply := t.handler.HandleCommand(ctx, update)
	if err := t.send(reply); err != nil {
		slog.Error("Failed to send reply", "command", update.Message.Command(), "error", err)
	}
}

// SendMessage posts text to the configured league chat.
func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		return ErrNoChat
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return t.send(msg)
}

func (t *TelegramBot) send(msg tgbotapi.MessageConfig) error {
	for _, part := range splitMessage(msg.Text, maxMessageLen) {
		chunk := msg
		chunk.Text = part
		if _, err := t.out.Send(chunk); err != nil {
			return fmt.Errorf("sending telegram message: %w", err)
		}
	}
	return nil
}

// splitMessage breaks text into parts no longer than limit, cutting on line
// boundaries. A code block cut in two is closed and reopened so each part
// still renders.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	const fence = "```"
	room := limit - len(fence) - 1

	var parts []string
	var b strings.Builder
	inCode, prefix := false, 0
	flush := func() {
		if b.Len() == prefix {
			return
		}
		if inCode {
			if !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			b.WriteString(fence)
		}
		parts = append(parts, strings.TrimRight(b.String(), "\n"))
		b.Reset()
		prefix = 0
		if inCode {
			b.WriteString(fence + "\n")
			prefix = b.Len()
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > room-prefix {
			flush()
			cut := room - b.Len()
			b.WriteString(line[:cut])
			flush()
			line = line[cut:]
		}
		if b.Len()+len(line) > room {
			flush()
		}
		b.WriteString(line)
		if strings.HasPrefix(strings.TrimSpace(line), fence) {
			inCode = !inCode
		}
	}
	flush()
	return parts
}
