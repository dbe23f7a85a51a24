package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegramNotify(t *testing.T) {
	fs := &fakeSender{}
	tg := &Telegram{bot: fs, chatID: 42}

	require.NoError(t, tg.Notify(context.Background(), "hello"))
	require.Len(t, fs.sent, 1)
	require.Equal(t, int64(42), fs.sent[0].ChatID)
	require.Equal(t, "hello", fs.sent[0].Text)
	require.True(t, fs.sent[0].DisableWebPagePreview)
}

func TestTelegramNotifyErrors(t *testing.T) {
	tg := &Telegram{bot: &fakeSender{err: errors.New("forbidden")}, chatID: 42}
	require.Error(t, tg.Notify(context.Background(), "hello"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs := &fakeSender{}
	tg = &Telegram{bot: fs, chatID: 42}
	require.ErrorIs(t, tg.Notify(ctx, "hello"), context.Canceled)
	require.Empty(t, fs.sent)
}

func TestNewTelegramValidatesInput(t *testing.T) {
	_, err := NewTelegram("", 1)
	require.Error(t, err)
	_, err = NewTelegram("token", 0)
	require.Error(t, err)
}

func TestFormatRunMessage(t *testing.T) {
	msg := FormatRunMessage("ICLR", "https://openreview.net/group?id=ICLR", []string{
		"Number of papers processed: 2",
		"Average rating of all papers: 5.00",
	})
	require.Equal(t, "✅ OpenReview ratings for ICLR\nhttps://openreview.net/group?id=ICLR\n\nNumber of papers processed: 2\nAverage rating of all papers: 5.00", msg)
}

func TestFormatFailureMessage(t *testing.T) {
	msg := FormatFailureMessage("ICLR", errors.New("failed to load page"))
	require.Equal(t, "❌ OpenReview ratings for ICLR failed: failed to load page", msg)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("é", 20)
	got := truncate(long, 10)
	require.Equal(t, 10, len([]rune(got)))
	require.True(t, strings.HasSuffix(got, "…"))
}
