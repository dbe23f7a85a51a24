package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramMaxMessageLength is the Bot API limit for a text message
const telegramMaxMessageLength = 4096

// Notifier delivers run results to people
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// sender is the part of tgbotapi.BotAPI used to deliver messages
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends messages to a single chat
type Telegram struct {
	bot    sender
	chatID int64
}

// NewTelegram authenticates the bot token and returns a notifier for chatID
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not set")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Printf("Authorized on Telegram account %s\n", bot.Self.UserName)

	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify sends text, truncated to the Telegram message limit
func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, truncate(text, telegramMaxMessageLength))
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// FormatRunMessage builds the message sent after a successful run
func FormatRunMessage(venueName, listingURL string, summaryLines []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ OpenReview ratings for %s\n", venueName)
	if listingURL != "" {
		fmt.Fprintf(&sb, "%s\n", listingURL)
	}
	sb.WriteString("\n")
	for _, line := range summaryLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatFailureMessage builds the message sent when a run fails
func FormatFailureMessage(venueName string, err error) string {
	return fmt.Sprintf("❌ OpenReview ratings for %s failed: %v", venueName, err)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
