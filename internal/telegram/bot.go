// Package telegram is the chat transport: it turns updates into
// navigation actions and views into messages with inline keyboards.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/browse"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/logging"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/remote"
)

const unavailableText = "⚠️ Listing is temporarily unavailable — try again."

// Bot runs the long-polling update loop and dispatches each update to
// the navigator.
type Bot struct {
	api      *tgbotapi.BotAPI
	nav      *browse.Navigator
	sessions *browse.Sessions
	limiter  *Limiter
}

// New authenticates against the Bot API and builds the bot.
func New(token string, nav *browse.Navigator, sessions *browse.Sessions, limiter *Limiter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return NewWithAPI(api, nav, sessions, limiter), nil
}

// NewWithAPI builds the bot around an existing API client.
func NewWithAPI(api *tgbotapi.BotAPI, nav *browse.Navigator, sessions *browse.Sessions, limiter *Limiter) *Bot {
	return &Bot{api: api, nav: nav, sessions: sessions, limiter: limiter}
}

// API exposes the underlying client so the broadcast sender can share
// the bot's single authenticated connection.
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Run consumes updates until ctx is canceled. Updates are handled
// sequentially: navigation is per-chat state and the listing cache
// makes repeat renders cheap, so one worker is plenty.
func (b *Bot) Run(ctx context.Context) {
	logging.Info("bot online", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.Message != nil && update.Message.IsCommand():
			b.handleCommand(ctx, update.Message)
		case update.CallbackQuery != nil:
			b.handleCallback(ctx, update.CallbackQuery)
		}
	}
	logging.Info("update stream closed")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Command() != "start" {
		return
	}

	chatID := msg.Chat.ID
	view, err := b.nav.Start(ctx, b.sessions.Get(chatID))
	if err != nil {
		metrics.RecordAction("start", false)
		b.sendErrorText(chatID, err)
		return
	}
	metrics.RecordAction("start", true)
	b.send(viewMessage(chatID, view))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		b.answer(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID

	if !b.limiter.Allow(chatID) {
		metrics.RecordRateLimitHit()
		wait := b.limiter.RetryAfter(chatID)
		b.answerAlert(cq.ID, fmt.Sprintf("Slow down — try again in %ds.", wait))
		return
	}

	action, view, err := b.apply(ctx, b.sessions.Get(chatID), cq.Data)
	switch {
	case errors.Is(err, browse.ErrUnknownEntry):
		// Stale keyboard from before a refresh, or forged data. The
		// session was not touched; a fresh /start re-syncs the chat.
		metrics.RecordAction(action, false)
		b.answerAlert(cq.ID, "That button is stale — send /start to refresh.")
	case remote.IsUnavailable(err):
		metrics.RecordAction(action, false)
		b.answer(cq.ID, "")
		b.send(tgbotapi.NewMessage(chatID, unavailableText))
	case err != nil:
		metrics.RecordAction(action, false)
		b.answer(cq.ID, "")
		logging.Error("action failed",
			zap.String("action", action),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	default:
		metrics.RecordAction(action, true)
		b.answer(cq.ID, "")
		b.send(viewMessage(chatID, view))
	}
}

// apply maps callback data onto a navigator action.
func (b *Bot) apply(ctx context.Context, s *browse.Session, data string) (string, browse.View, error) {
	switch {
	case strings.HasPrefix(data, callbackOpen):
		v, err := b.nav.Open(ctx, s, strings.TrimPrefix(data, callbackOpen))
		return "open", v, err
	case data == callbackBack:
		v, err := b.nav.Back(ctx, s)
		return "back", v, err
	case data == callbackHome:
		v, err := b.nav.Home(ctx, s)
		return "home", v, err
	case data == callbackPrev:
		v, err := b.nav.Prev(ctx, s)
		return "prev", v, err
	case data == callbackNext:
		v, err := b.nav.Next(ctx, s)
		return "next", v, err
	default:
		return "unknown", browse.View{}, fmt.Errorf("%w: callback %q", browse.ErrUnknownEntry, data)
	}
}

func (b *Bot) sendErrorText(chatID int64, err error) {
	if remote.IsUnavailable(err) {
		b.send(tgbotapi.NewMessage(chatID, unavailableText))
		return
	}
	logging.Error("start failed", zap.Int64("chat_id", chatID), zap.Error(err))
	b.send(tgbotapi.NewMessage(chatID, "Something went wrong — try /start again."))
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		logging.Warn("answer callback failed", zap.Error(err))
	}
}

func (b *Bot) answerAlert(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		logging.Warn("answer callback failed", zap.Error(err))
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		logging.Error("send failed", zap.Error(err))
	}
}
