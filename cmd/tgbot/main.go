package main

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/AutoTrade/internal/api"
	"github.com/Alias1177/AutoTrade/internal/config"
	"github.com/Alias1177/AutoTrade/internal/generator"
	"github.com/Alias1177/AutoTrade/internal/metrics"
	"github.com/Alias1177/AutoTrade/internal/model"
	"github.com/Alias1177/AutoTrade/internal/notify/telegram"
	"github.com/Alias1177/AutoTrade/internal/report"
	"github.com/Alias1177/AutoTrade/internal/session"
)

// tailRows is the number of candles shown under a generated signal
const tailRows = 20

// Bot serves the signal form over Telegram. Forms are touched only by the
// update loop, so they need no locking.
type Bot struct {
	api      *tgbotapi.BotAPI
	service  *generator.Service
	defaults model.SignalRequest
	forms    map[int64]*chatForm
	logger   zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)

	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, reg)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Metrics server shutdown failed")
			}
		}()
	}

	// 4. Signal pipeline
	source, err := api.NewSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create market data source")
	}
	service := generator.NewService(source, cfg.Catalog, generator.Options{
		Params:       cfg.Indicators,
		Lookback:     cfg.Lookback,
		FetchTimeout: cfg.RequestTimeout,
		Notifier:     telegram.NewNotifier(telegram.Options{Timeout: cfg.NotifyTimeout}),
		Metrics:      m,
	})

	// 5. Telegram bot
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("username", botAPI.Self.UserName).Str("provider", source.Name()).Msg("Authorized on Telegram")

	bot := &Bot{
		api:      botAPI,
		service:  service,
		defaults: cfg.DefaultRequest(),
		forms:    make(map[int64]*chatForm),
		logger:   log.With().Str("component", "tgbot").Logger(),
	}
	bot.Run(ctx)
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// Run handles updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info().Msg("Shutdown signal received, exiting...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.handleCallback(update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) form(chatID int64) *chatForm {
	f, ok := b.forms[chatID]
	if !ok {
		f = newChatForm(b.defaults)
		b.forms[chatID] = f
	}
	return f
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	form := b.form(chatID)

	if message.IsCommand() && message.Command() == "start" {
		b.forms[chatID] = newChatForm(b.defaults)
		b.sendMenu(chatID, "Welcome to Auto Trade Tool Pro!\n\n"+b.forms[chatID].Summary())
		return
	}

	if form.AwaitsInput(message.Text) {
		b.handleInput(chatID, form, message.Text)
		return
	}

	switch message.Text {
	case btnInstrument:
		b.sendChoices(chatID, "Select a market:", choiceKeyboard("inst", b.service.Catalog().InstrumentNames(), 2))
	case btnMode:
		b.sendChoices(chatID, "Select a mode:", choiceKeyboard("mode", b.service.Catalog().ModeNames(), 3))
	case btnRiskReward:
		b.sendChoices(chatID, "Select risk : reward:", choiceKeyboard("rr", choiceLabels(riskRewardChoices), 5))
	case btnRisk:
		b.sendChoices(chatID, "Select risk per trade (%):", choiceKeyboard("risk", choiceLabels(riskPercentChoices), 5))
	case btnBalance:
		form.Stage = StageAwaitingBalance
		b.send(tgbotapi.NewMessage(chatID, "Send your account balance:"))
	case btnForward:
		form.Stage = StageAwaitingForwardChat
		b.send(tgbotapi.NewMessage(chatID, "Send the chat id or @channel to forward signals to, or \"off\":"))
	case btnGenerate:
		b.generate(ctx, chatID, form)
	case btnTest:
		b.testTelegram(ctx, chatID, form)
	case btnGuide:
		b.send(tgbotapi.NewMessage(chatID, setupGuide))
	default:
		b.sendMenu(chatID, fmt.Sprintf("Current session: %s\n\n%s", session.Current(), form.Summary()))
	}
}

// handleInput stores the value a form stage asked for
func (b *Bot) handleInput(chatID int64, form *chatForm, text string) {
	switch form.Stage {
	case StageAwaitingBalance:
		if err := form.SetBalance(text); err != nil {
			b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Invalid balance: %v. Send a number, e.g. 1000", err)))
			return
		}
		b.sendMenu(chatID, fmt.Sprintf("Balance set to %.2f", form.Request.Balance))
	case StageAwaitingForwardChat:
		if err := form.SetForwardChat(text); err != nil {
			b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Invalid chat: %v. Send a chat id, an @channel or \"off\"", err)))
			return
		}
		b.sendMenu(chatID, form.Summary())
	}
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	form := b.form(chatID)

	// Acknowledge the callback query
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Debug().Err(err).Msg("Failed to acknowledge callback")
	}

	text, ok := form.ApplyCallback(b.service.Catalog(), callback.Data)
	if !ok {
		b.logger.Warn().Str("data", callback.Data).Int64("chat_id", chatID).Msg("Unknown callback data")
		return
	}
	b.sendMenu(chatID, text)
}

// generate runs the pipeline for the chat's form and replies with the result
func (b *Bot) generate(ctx context.Context, chatID int64, form *chatForm) {
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Generating %s signal for %s...", form.Request.Mode, form.Request.Instrument)))

	req := form.Request
	if req.Telegram.ChatID != "" {
		req.Telegram.BotToken = b.api.Token
	}

	rep, err := b.service.GenerateSignal(ctx, req)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Signal generation failed")
		b.sendMenu(chatID, generator.UserMessage(err))
		return
	}

	b.send(tgbotapi.NewMessage(chatID, rep.Message))

	if chart := report.Chart(rep.Frame, report.DefaultChartOptions()); chart != "" {
		msg := tgbotapi.NewMessage(chatID, "<pre>"+html.EscapeString(chart)+"</pre>")
		msg.ParseMode = tgbotapi.ModeHTML
		b.send(msg)
	}

	var tail bytes.Buffer
	if err := report.WriteTail(&tail, rep.Frame, tailRows); err == nil {
		msg := tgbotapi.NewMessage(chatID, "<pre>"+html.EscapeString(tail.String())+"</pre>")
		msg.ParseMode = tgbotapi.ModeHTML
		b.send(msg)
	}

	status := fmt.Sprintf("Backtest: %d wins / %d losses", rep.Backtest.Wins, rep.Backtest.Losses)
	switch rep.Delivery.Status {
	case model.DeliveryDelivered:
		status += "\nSignal forwarded to " + req.Telegram.ChatID
	case model.DeliveryFailed:
		status += fmt.Sprintf("\nFailed to forward signal: %v", rep.Delivery.Err)
	}
	b.sendMenu(chatID, status)
}

func (b *Bot) testTelegram(ctx context.Context, chatID int64, form *chatForm) {
	if form.Request.Telegram.ChatID == "" {
		b.sendMenu(chatID, "Set a forward chat first.")
		return
	}

	target := model.TelegramTarget{BotToken: b.api.Token, ChatID: form.Request.Telegram.ChatID}
	d := b.service.SendTestMessage(ctx, target)
	if !d.OK() {
		b.sendMenu(chatID, fmt.Sprintf("Test message failed: %v", d.Err))
		return
	}
	b.sendMenu(chatID, "Test message sent! Check your Telegram.")
}

func (b *Bot) sendMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)
}

func (b *Bot) sendChoices(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send message")
	}
}
