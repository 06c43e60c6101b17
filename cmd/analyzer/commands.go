package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/AutoTrade/internal/api"
	"github.com/Alias1177/AutoTrade/internal/config"
	"github.com/Alias1177/AutoTrade/internal/generator"
	"github.com/Alias1177/AutoTrade/internal/model"
	"github.com/Alias1177/AutoTrade/internal/notify/telegram"
	"github.com/Alias1177/AutoTrade/internal/report"
	"github.com/Alias1177/AutoTrade/internal/session"
)

var version = "dev"

// reportedError marks an error whose user-facing message was already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// cli carries the loaded configuration between the root and its subcommands
type cli struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "analyzer",
		Short: "EMA trend signals with ATR stops, position sizing and a Telegram push",
		Long: `Analyzer fetches recent candles for an instrument, computes EMA20, EMA50 and
ATR14, and suggests a BUY or SELL with stop loss, take profit and lot size.

Configuration is read from the environment (and .env):
  DATA_PROVIDER       yahoo (default) or twelvedata
  TWELVE_API_KEY      required for twelvedata
  TELEGRAM_BOT_TOKEN  bot used for notifications
  TELEGRAM_CHAT_ID    numeric chat id or @channel
  CATALOG_FILE        optional YAML instrument and mode catalog`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			setupLogging(cfg.LogLevel)
			c.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		c.newSignalCmd(),
		c.newSessionCmd(),
		c.newInstrumentsCmd(),
		c.newTelegramTestCmd(),
		newVersionCmd(),
	)
	return root
}

func (c *cli) newService() (*generator.Service, error) {
	source, err := api.NewSource(c.cfg)
	if err != nil {
		return nil, err
	}
	return generator.NewService(source, c.cfg.Catalog, generator.Options{
		Params:       c.cfg.Indicators,
		Lookback:     c.cfg.Lookback,
		FetchTimeout: c.cfg.RequestTimeout,
		Notifier:     telegram.NewNotifier(telegram.Options{Timeout: c.cfg.NotifyTimeout}),
	}), nil
}

type signalFlags struct {
	instrument  string
	mode        string
	riskReward  float64
	riskPercent float64
	balance     float64
	notify      bool
	token       string
	chatID      string
	tail        int
	chart       bool
}

func (c *cli) newSignalCmd() *cobra.Command {
	var f signalFlags

	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Generate a trade signal",
		Long: `Generate a trade signal for one instrument and mode.

Flags that are not given fall back to SYMBOL, MODE, RISK_REWARD, RISK_PERCENT
and ACCOUNT_BALANCE from the environment.

Example:
  analyzer signal -i EURUSD -m Intraday --rr 2 --risk 1 --balance 5000 --notify --chart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := c.cfg.DefaultRequest()
			flags := cmd.Flags()
			if flags.Changed("instrument") {
				req.Instrument = f.instrument
			}
			if flags.Changed("mode") {
				req.Mode = f.mode
			}
			if flags.Changed("rr") {
				req.RiskReward = f.riskReward
			}
			if flags.Changed("risk") {
				req.RiskPercent = f.riskPercent
			}
			if flags.Changed("balance") {
				req.Balance = f.balance
			}
			if flags.Changed("token") {
				req.Telegram.BotToken = f.token
			}
			if flags.Changed("chat") {
				req.Telegram.ChatID = f.chatID
			}
			if !f.notify {
				req.Telegram = model.TelegramTarget{}
			}

			svc, err := c.newService()
			if err != nil {
				return err
			}

			rep, err := svc.GenerateSignal(cmd.Context(), req)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), generator.UserMessage(err))
				return &reportedError{err: err}
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, report.Cards(rep.Signal))
			fmt.Fprintf(out, "Backtest: %d wins / %d losses (best run %d, worst run %d)\n",
				rep.Backtest.Wins, rep.Backtest.Losses,
				rep.Backtest.MaxConsecutiveWins, rep.Backtest.MaxConsecutiveLosses)
			printDelivery(out, rep.Delivery)

			if f.chart {
				if chart := report.Chart(rep.Frame, report.ChartOptions{Color: true}); chart != "" {
					fmt.Fprintf(out, "\n%s\n", chart)
				}
			}

			if f.tail > 0 {
				fmt.Fprintf(out, "\n===== LAST %d CANDLES =====\n", f.tail)
				if err := report.WriteTail(out, rep.Frame, f.tail); err != nil {
					return fmt.Errorf("write candle table: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.instrument, "instrument", "i", "", "instrument name from the catalog (e.g. BTCUSDT)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "trading mode: Scalping, Intraday or Swing")
	cmd.Flags().Float64Var(&f.riskReward, "rr", 0, "take profit as a multiple of the stop distance (>= 1)")
	cmd.Flags().Float64Var(&f.riskPercent, "risk", 0, "percent of the balance risked per trade")
	cmd.Flags().Float64VarP(&f.balance, "balance", "b", 0, "account balance")
	cmd.Flags().BoolVarP(&f.notify, "notify", "n", false, "push the signal to Telegram")
	cmd.Flags().StringVar(&f.token, "token", "", "Telegram bot token (overrides TELEGRAM_BOT_TOKEN)")
	cmd.Flags().StringVar(&f.chatID, "chat", "", "Telegram chat id or @channel (overrides TELEGRAM_CHAT_ID)")
	cmd.Flags().IntVar(&f.tail, "tail", 20, "number of recent candles to print (0 to disable)")
	cmd.Flags().BoolVar(&f.chart, "chart", false, "plot close and both EMAs for the recent candles")

	return cmd
}

func printDelivery(w io.Writer, d model.Delivery) {
	switch d.Status {
	case model.DeliveryDelivered:
		fmt.Fprintln(w, "Signal sent to Telegram")
	case model.DeliveryFailed:
		fmt.Fprintf(w, "Failed to send signal to Telegram: %v\n", d.Err)
	}
}

func (c *cli) newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Print the current trading session",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			fmt.Fprintf(cmd.OutOrStdout(), "Current session: %s (%s UTC)\n", session.Classify(now), now.Format("15:04"))
			return nil
		},
	}
}

func (c *cli) newInstrumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instruments",
		Short: "List the instruments and modes in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			catalog := c.cfg.Catalog

			fmt.Fprintln(out, "Instruments:")
			for _, inst := range catalog.Instruments {
				symbols := make([]string, 0, len(inst.Symbols))
				for _, p := range catalog.Providers() {
					if s, ok := inst.Symbols[p]; ok {
						symbols = append(symbols, p+"="+s)
					}
				}
				fmt.Fprintf(out, "  %-10s %s\n", inst.Name, strings.Join(symbols, " "))
			}

			fmt.Fprintln(out, "Modes:")
			for _, m := range catalog.Modes {
				fmt.Fprintf(out, "  %-10s interval %-6s ATR x%.1f\n", m.Name, m.Interval, m.ATRMultiplier)
			}
			return nil
		},
	}
}

func (c *cli) newTelegramTestCmd() *cobra.Command {
	var token, chatID string

	cmd := &cobra.Command{
		Use:   "telegram-test",
		Short: "Send a test message to the configured Telegram chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := model.TelegramTarget{BotToken: c.cfg.TelegramBotToken, ChatID: c.cfg.TelegramChatID}
			if token != "" {
				target.BotToken = token
			}
			if chatID != "" {
				target.ChatID = chatID
			}

			notifier := telegram.NewNotifier(telegram.Options{Timeout: c.cfg.NotifyTimeout})
			d := notifier.Notify(cmd.Context(), target, generator.TestMessage)
			switch d.Status {
			case model.DeliverySkipped:
				return errors.New("bot token and chat id are required")
			case model.DeliveryFailed:
				log.Error().Err(d.Err).Msg("Telegram test failed")
				return fmt.Errorf("telegram test: %w", d.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test message sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Telegram bot token (overrides TELEGRAM_BOT_TOKEN)")
	cmd.Flags().StringVar(&chatID, "chat", "", "Telegram chat id or @channel (overrides TELEGRAM_CHAT_ID)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// Version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "analyzer version %s\n", version)
		},
	}
}
