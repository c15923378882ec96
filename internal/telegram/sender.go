package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DarmsTdiuM27/med-drive-bot/pkg/retry"
)

// ChannelSender delivers watcher notifications to the broadcast chat.
// Flood-limit responses are retried with the server-requested wait;
// anything else fails immediately and the dispatcher moves on.
type ChannelSender struct {
	api    *tgbotapi.BotAPI
	chatID int64
	retry  retry.Config
}

// NewChannelSender builds a sender for the given chat.
func NewChannelSender(api *tgbotapi.BotAPI, chatID int64, cfg retry.Config) *ChannelSender {
	return &ChannelSender{api: api, chatID: chatID, retry: cfg}
}

// Send delivers one notification message.
func (s *ChannelSender) Send(ctx context.Context, text string) error {
	return retry.Do(ctx, s.retry, func() error {
		msg := tgbotapi.NewMessage(s.chatID, text)
		msg.DisableWebPagePreview = true
		_, err := s.api.Send(msg)
		if err == nil {
			return nil
		}

		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 429 {
			after := time.Duration(apiErr.ResponseParameters.RetryAfter) * time.Second
			return retry.TransientAfter(err, after)
		}
		return err
	})
}
