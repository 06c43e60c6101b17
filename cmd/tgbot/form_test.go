package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/AutoTrade/internal/config"
	"github.com/Alias1177/AutoTrade/internal/model"
)

func defaults() model.SignalRequest {
	return model.SignalRequest{Instrument: "BTCUSDT", Mode: "Scalping", RiskReward: 2, RiskPercent: 1, Balance: 1000}
}

func TestApplyCallback(t *testing.T) {
	catalog := config.DefaultCatalog()

	tests := []struct {
		name   string
		data   string
		ok     bool
		check  func(t *testing.T, r model.SignalRequest)
		expect string
	}{
		{
			name: "instrument", data: "inst:eurusd", ok: true, expect: "Selected market: EURUSD",
			check: func(t *testing.T, r model.SignalRequest) { assert.Equal(t, "EURUSD", r.Instrument) },
		},
		{
			name: "mode", data: "mode:Swing", ok: true, expect: "Selected mode: Swing (1h0m0s candles)",
			check: func(t *testing.T, r model.SignalRequest) { assert.Equal(t, "Swing", r.Mode) },
		},
		{
			name: "risk reward", data: "rr:2.5", ok: true, expect: "Risk : Reward set to 1:2.5",
			check: func(t *testing.T, r model.SignalRequest) { assert.Equal(t, 2.5, r.RiskReward) },
		},
		{
			name: "risk percent", data: "risk:0.5", ok: true, expect: "Risk set to 0.5%",
			check: func(t *testing.T, r model.SignalRequest) { assert.Equal(t, 0.5, r.RiskPercent) },
		},
		{name: "unknown instrument", data: "inst:DOGE"},
		{name: "risk reward below one", data: "rr:0.5"},
		{name: "no separator", data: "main_menu"},
		{name: "unknown key", data: "pair:EUR/USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatForm(defaults())
			text, ok := f.ApplyCallback(catalog, tt.data)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, defaults(), f.Request)
				return
			}
			assert.Equal(t, tt.expect, text)
			tt.check(t, f.Request)
		})
	}
}

func TestSetBalance(t *testing.T) {
	f := newChatForm(defaults())
	f.Stage = StageAwaitingBalance

	require.Error(t, f.SetBalance("lots"))
	require.Error(t, f.SetBalance("-5"))
	assert.Equal(t, StageAwaitingBalance, f.Stage)

	require.NoError(t, f.SetBalance(" 12,500.50 "))
	assert.Equal(t, 12500.5, f.Request.Balance)
	assert.Equal(t, StageIdle, f.Stage)
}

func TestSetForwardChat(t *testing.T) {
	f := newChatForm(defaults())
	f.Stage = StageAwaitingForwardChat

	require.NoError(t, f.SetForwardChat("@signals"))
	assert.Equal(t, "@signals", f.Request.Telegram.ChatID)
	assert.Contains(t, f.Summary(), "Forward to: @signals")

	require.NoError(t, f.SetForwardChat("OFF"))
	assert.Empty(t, f.Request.Telegram.ChatID)
	assert.Contains(t, f.Summary(), "Forward to: off")
	assert.Equal(t, StageIdle, f.Stage)
}

func TestSetForwardChatRejectsInvalid(t *testing.T) {
	for _, text := range []string{btnGenerate, "my chat", "@", ""} {
		f := newChatForm(defaults())
		f.Stage = StageAwaitingForwardChat

		assert.Error(t, f.SetForwardChat(text), text)
		assert.Empty(t, f.Request.Telegram.ChatID, text)
		assert.Equal(t, StageAwaitingForwardChat, f.Stage, text)
	}
}

func TestAwaitsInput(t *testing.T) {
	f := newChatForm(defaults())
	assert.False(t, f.AwaitsInput("1000"), "idle form takes no input")

	f.Stage = StageAwaitingBalance
	assert.True(t, f.AwaitsInput("1000"))
	assert.Equal(t, StageAwaitingBalance, f.Stage)

	assert.False(t, f.AwaitsInput(btnGenerate))
	assert.Equal(t, StageIdle, f.Stage)

	f.Stage = StageAwaitingForwardChat
	assert.False(t, f.AwaitsInput(btnMode))
	assert.Equal(t, StageIdle, f.Stage)
}

func TestChoiceKeyboard(t *testing.T) {
	kb := choiceKeyboard("rr", choiceLabels(riskRewardChoices), 5)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 5)
	assert.Len(t, kb.InlineKeyboard[1], 4)

	first := kb.InlineKeyboard[0][0]
	assert.Equal(t, "1", first.Text)
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, "rr:1", *first.CallbackData)
}
