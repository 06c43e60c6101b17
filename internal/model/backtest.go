package model

// BacktestResult stores the outcome of the directional hit-rate check
type BacktestResult struct {
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	WinRate              float64 `json:"win_rate"` // percent, 2 decimals
	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
}

// Trials returns the number of evaluated bars
func (r BacktestResult) Trials() int {
	return r.Wins + r.Losses
}
