package bot

import (
	"context"
	"errors"
	"time"

	"github.com/glunkad/invoice-service/internal/domain"
	"github.com/glunkad/invoice-service/internal/metrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	pollTimeout = 60
	queueSize   = 16
)

// UpdateSource is the long-polling side of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Conversation handles the booking dialogue. *booking.Controller implements it.
type Conversation interface {
	Start(ctx context.Context, key domain.SessionKey) (domain.Step, error)
	Handle(ctx context.Context, key domain.SessionKey, text string) (domain.Step, error)
	Cancel(ctx context.Context, key domain.SessionKey) (domain.Step, error)
	Help(ctx context.Context, key domain.SessionKey) error
}

// Bot feeds Telegram updates into the booking conversation.
type Bot struct {
	api        UpdateSource
	conv       Conversation
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// NewBot wires a bot that handles updates on workers goroutines.
func NewBot(api UpdateSource, conv Conversation, workers int, m *metrics.Metrics, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "bot"))

	return &Bot{
		api:        api,
		conv:       conv,
		dispatcher: NewDispatcher(workers, queueSize, log),
		metrics:    m,
		log:        log,
	}
}

// Start polls for updates until ctx is done or the update channel closes.
func (b *Bot) Start(ctx context.Context) {
	b.dispatcher.Start(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot started, polling for updates")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

// Stop ends polling and waits for queued updates to be handled.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	b.dispatcher.Stop()
	b.log.Info("bot stopped")
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		b.metrics.IncUpdate("skipped")
		return
	}
	// Stickers, photos, locations and the like carry no text to answer.
	if msg.Text == "" {
		b.metrics.IncUpdate("skipped")
		return
	}

	err := b.dispatcher.Submit(ctx, msg.From.ID, func(ctx context.Context) {
		b.handleMessage(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		b.log.Warn("update dropped", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	started := time.Now()
	key := domain.SessionKey{ChatID: msg.Chat.ID, UserID: msg.From.ID}

	var (
		kind string
		step domain.Step
		err  error
	)

	if msg.IsCommand() {
		kind = "command_" + msg.Command()
		switch msg.Command() {
		case "start":
			step, err = b.conv.Start(ctx, key)
		case "cancel":
			step, err = b.conv.Cancel(ctx, key)
		case "help":
			err = b.conv.Help(ctx, key)
		default:
			kind = "command_unknown"
			err = b.conv.Help(ctx, key)
		}
	} else {
		kind = "text"
		step, err = b.conv.Handle(ctx, key, msg.Text)
	}

	b.metrics.IncUpdate(kind)
	b.metrics.ObserveUpdate(time.Since(started).Seconds())

	log := b.log.With(
		zap.Int64("chat_id", key.ChatID),
		zap.Int64("user_id", key.UserID),
		zap.String("kind", kind),
	)
	if err != nil {
		log.Error("failed to handle message", zap.Error(err))
		return
	}
	log.Debug("message handled", zap.Stringer("step", step))
}
