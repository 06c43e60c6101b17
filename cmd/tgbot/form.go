package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Alias1177/AutoTrade/internal/config"
	"github.com/Alias1177/AutoTrade/internal/model"
	"github.com/Alias1177/AutoTrade/internal/notify/telegram"
)

// Form stages
const (
	StageIdle = iota
	StageAwaitingBalance
	StageAwaitingForwardChat
)

// Slider presets, matching the ranges of the web form: 1.0-5.0 and 0.5-5.0 in 0.5 steps
var (
	riskRewardChoices  = []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5}
	riskPercentChoices = []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5}
)

// Main menu buttons
const (
	btnInstrument = "Market"
	btnMode       = "Mode"
	btnRiskReward = "Risk : Reward"
	btnRisk       = "Risk %"
	btnBalance    = "Account Balance"
	btnGenerate   = "Generate Signal"
	btnForward    = "Forward Chat"
	btnTest       = "Test Telegram"
	btnGuide      = "Setup Guide"
)

const setupGuide = `Step 1: Create a bot via @BotFather and get the token.
Step 2: Open a chat with your bot or a group and send a message.
Step 3: Go to https://api.telegram.org/bot<YOUR_BOT_TOKEN>/getUpdates
Step 4: Find "chat" → "id" in the JSON response.
Step 5: Send that number (or an @channel name) with the "Forward Chat" button.`

// chatForm is the signal configuration one chat is editing
type chatForm struct {
	Stage   int
	Request model.SignalRequest
}

func newChatForm(defaults model.SignalRequest) *chatForm {
	return &chatForm{Stage: StageIdle, Request: defaults}
}

// Summary renders the current selections
func (f *chatForm) Summary() string {
	forward := f.Request.Telegram.ChatID
	if forward == "" {
		forward = "off"
	}
	return fmt.Sprintf("Market: %s\nMode: %s\nRisk : Reward: %s\nRisk: %s%%\nBalance: %.2f\nForward to: %s",
		f.Request.Instrument, f.Request.Mode,
		formatChoice(f.Request.RiskReward), formatChoice(f.Request.RiskPercent),
		f.Request.Balance, forward)
}

// ApplyCallback updates the form from an inline button. It reports whether
// the data was recognised.
func (f *chatForm) ApplyCallback(catalog *config.Catalog, data string) (string, bool) {
	key, value, ok := strings.Cut(data, ":")
	if !ok {
		return "", false
	}

	switch key {
	case "inst":
		inst, err := catalog.Instrument(value)
		if err != nil {
			return "", false
		}
		f.Request.Instrument = inst.Name
		return "Selected market: " + inst.Name, true
	case "mode":
		m, err := catalog.Mode(value)
		if err != nil {
			return "", false
		}
		f.Request.Mode = m.Name
		return fmt.Sprintf("Selected mode: %s (%s candles)", m.Name, m.Interval), true
	case "rr":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 1 {
			return "", false
		}
		f.Request.RiskReward = v
		return "Risk : Reward set to 1:" + formatChoice(v), true
	case "risk":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return "", false
		}
		f.Request.RiskPercent = v
		return "Risk set to " + formatChoice(v) + "%", true
	}
	return "", false
}

// SetBalance parses a balance typed by the user
func (f *chatForm) SetBalance(text string) error {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", ""), 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", text)
	}
	if v < 0 {
		return errors.New("balance must not be negative")
	}
	f.Request.Balance = v
	f.Stage = StageIdle
	return nil
}

// SetForwardChat sets the chat signals are pushed to; "off" disables it.
// Anything that is neither a numeric id nor an @channel is rejected.
func (f *chatForm) SetForwardChat(text string) error {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, "off") {
		text = ""
	} else if _, err := telegram.NewMessage(text, ""); err != nil {
		return err
	}
	f.Request.Telegram.ChatID = text
	f.Stage = StageIdle
	return nil
}

// AwaitsInput reports whether text should be read as the value the form is
// waiting for. A menu button cancels the pending input instead.
func (f *chatForm) AwaitsInput(text string) bool {
	if f.Stage == StageIdle {
		return false
	}
	if isMenuButton(text) {
		f.Stage = StageIdle
		return false
	}
	return true
}

func isMenuButton(text string) bool {
	switch text {
	case btnInstrument, btnMode, btnRiskReward, btnRisk, btnBalance,
		btnGenerate, btnForward, btnTest, btnGuide:
		return true
	}
	return false
}

func formatChoice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnInstrument),
			tgbotapi.NewKeyboardButton(btnMode),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRiskReward),
			tgbotapi.NewKeyboardButton(btnRisk),
			tgbotapi.NewKeyboardButton(btnBalance),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnGenerate),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnForward),
			tgbotapi.NewKeyboardButton(btnTest),
			tgbotapi.NewKeyboardButton(btnGuide),
		),
	)
}

// choiceKeyboard lays out inline buttons perRow to a row; data is prefix:label
func choiceKeyboard(prefix string, labels []string, perRow int) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for i, label := range labels {
		if i%perRow == 0 && i > 0 {
			keyboard = append(keyboard, row)
			row = []tgbotapi.InlineKeyboardButton{}
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, prefix+":"+label))
	}
	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func choiceLabels(values []float64) []string {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = formatChoice(v)
	}
	return labels
}
