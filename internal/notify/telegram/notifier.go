// Package telegram delivers signal messages to a Telegram chat on a best-effort basis.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/AutoTrade/internal/model"
)

// ErrTimeout is recorded when delivery does not finish within the notifier timeout
var ErrTimeout = errors.New("telegram delivery timed out")

// Notifier sends plain-text messages with a per-call bot token.
// Bots are built per call, so one Notifier serves any number of users.
type Notifier struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	logger   zerolog.Logger
}

// Options holds options for creating a new Notifier
type Options struct {
	// Endpoint is a bot API URL template with two %s verbs (token, method).
	// Empty means the public Telegram API.
	Endpoint string
	Timeout  time.Duration
}

// NewNotifier creates a new Notifier
func NewNotifier(opts Options) *Notifier {
	if opts.Endpoint == "" {
		opts.Endpoint = tgbotapi.APIEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Notifier{
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		client:   &http.Client{Timeout: opts.Timeout},
		logger:   log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Notify attempts one delivery and reports what happened. It never returns an
// error: an unconfigured target is Skipped and any failure, including the
// timeout, is captured in a Failed delivery.
func (n *Notifier) Notify(ctx context.Context, target model.TelegramTarget, text string) model.Delivery {
	if !target.Configured() {
		return model.Delivery{Status: model.DeliverySkipped}
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- n.send(target, text)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ErrTimeout
	}

	if err != nil {
		n.logger.Warn().Err(err).Str("chat_id", target.ChatID).Msg("Telegram delivery failed")
		return model.Delivery{Status: model.DeliveryFailed, Err: err}
	}

	n.logger.Debug().Str("chat_id", target.ChatID).Msg("Telegram message delivered")
	return model.Delivery{Status: model.DeliveryDelivered}
}

func (n *Notifier) send(target model.TelegramTarget, text string) error {
	bot := &tgbotapi.BotAPI{
		Token:  strings.TrimSpace(target.BotToken),
		Client: n.client,
		Buffer: 1,
	}
	bot.SetAPIEndpoint(n.endpoint)

	msg, err := NewMessage(target.ChatID, text)
	if err != nil {
		return err
	}

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// NewMessage builds a message for a numeric chat id or an @channel name.
func NewMessage(chatID, text string) (tgbotapi.MessageConfig, error) {
	chatID = strings.TrimSpace(chatID)
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text), nil
	}
	if strings.HasPrefix(chatID, "@") && len(chatID) > 1 {
		return tgbotapi.NewMessageToChannel(chatID, text), nil
	}
	return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat id %q: expected a number or @channel", chatID)
}
