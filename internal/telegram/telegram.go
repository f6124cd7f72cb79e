// Package telegram mirrors the audit report to Telegram chats.
package telegram

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects longer messages.
const maxMessageLen = 4096

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Mirror sends a plain-text copy of each report to a fixed set of chats.
type Mirror struct {
	api     telegramAPI
	chatIDs []int64
	log     *slog.Logger
}

// New creates a Mirror with the given bot token.
func New(token string, chatIDs []int64, log *slog.Logger) (*Mirror, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Mirror{api: api, chatIDs: chatIDs, log: log}, nil
}

// SendReport sends text to every configured chat. Failures are logged per
// chat; the number of successful sends is returned.
func (m *Mirror) SendReport(text string) int {
	sent := 0
	for _, chatID := range m.chatIDs {
		if m.SendMessage(chatID, text) {
			sent++
		}
	}
	return sent
}

// SendMessage sends a text message to the given chat, splitting it on line
// boundaries when it is too long for a single message.
func (m *Mirror) SendMessage(chatID int64, text string) bool {
	ok := true
	for _, part := range split(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := m.api.Send(msg); err != nil {
			m.log.Error("send message", "chat_id", chatID, "error", err)
			ok = false
		}
	}
	return ok
}

// split cuts text into chunks of at most limit bytes, preferring to break
// after a newline.
func split(text string, limit int) []string {
	var parts []string
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		for i := limit - 1; i > 0; i-- {
			if text[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
