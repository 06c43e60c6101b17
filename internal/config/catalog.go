package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Alias1177/AutoTrade/internal/model"
)

// ErrUnknownInstrument and ErrUnknownMode are returned by catalog lookups
var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrUnknownMode       = errors.New("unknown mode")
)

// Catalog lists the instruments and trading modes offered to the user
type Catalog struct {
	Instruments []model.Instrument `yaml:"instruments"`
	Modes       []model.Mode       `yaml:"modes"`
}

// DefaultCatalog returns the built-in markets and modes
func DefaultCatalog() *Catalog {
	return &Catalog{
		Instruments: []model.Instrument{
			{Name: "BTCUSDT", Symbols: map[string]string{"yahoo": "BTC-USD", "twelvedata": "BTC/USD"}},
			{Name: "EURUSD", Symbols: map[string]string{"yahoo": "EURUSD=X", "twelvedata": "EUR/USD"}},
			{Name: "USDJPY", Symbols: map[string]string{"yahoo": "JPY=X", "twelvedata": "USD/JPY"}},
			{Name: "US500", Symbols: map[string]string{"yahoo": "^GSPC", "twelvedata": "SPX"}},
		},
		Modes: []model.Mode{
			{Name: "Scalping", Interval: 5 * time.Minute, ATRMultiplier: 1.0},
			{Name: "Intraday", Interval: 15 * time.Minute, ATRMultiplier: 1.5},
			{Name: "Swing", Interval: time.Hour, ATRMultiplier: 2.0},
		},
	}
}

// LoadCatalog reads a YAML catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &catalog, nil
}

// Validate checks that the catalog is usable
func (c *Catalog) Validate() error {
	if len(c.Instruments) == 0 {
		return errors.New("no instruments defined")
	}
	if len(c.Modes) == 0 {
		return errors.New("no modes defined")
	}

	seen := make(map[string]bool)
	for _, inst := range c.Instruments {
		if inst.Name == "" {
			return errors.New("instrument without a name")
		}
		if seen[strings.ToUpper(inst.Name)] {
			return fmt.Errorf("duplicate instrument %q", inst.Name)
		}
		seen[strings.ToUpper(inst.Name)] = true
	}
	for _, m := range c.Modes {
		if m.Name == "" {
			return errors.New("mode without a name")
		}
		if m.Interval <= 0 {
			return fmt.Errorf("mode %q: interval must be positive", m.Name)
		}
		if m.ATRMultiplier <= 0 {
			return fmt.Errorf("mode %q: atr_multiplier must be positive", m.Name)
		}
	}
	return nil
}

// Instrument looks up an instrument by name, case-insensitively
func (c *Catalog) Instrument(name string) (model.Instrument, error) {
	for _, inst := range c.Instruments {
		if strings.EqualFold(inst.Name, name) {
			return inst, nil
		}
	}
	return model.Instrument{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, name)
}

// Mode looks up a trading mode by name, case-insensitively
func (c *Catalog) Mode(name string) (model.Mode, error) {
	for _, m := range c.Modes {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return model.Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// InstrumentNames returns the instrument names in catalog order
func (c *Catalog) InstrumentNames() []string {
	names := make([]string, 0, len(c.Instruments))
	for _, inst := range c.Instruments {
		names = append(names, inst.Name)
	}
	return names
}

// ModeNames returns the mode names in catalog order
func (c *Catalog) ModeNames() []string {
	names := make([]string, 0, len(c.Modes))
	for _, m := range c.Modes {
		names = append(names, m.Name)
	}
	return names
}

// Providers returns every provider key mentioned by the instruments, sorted
func (c *Catalog) Providers() []string {
	set := make(map[string]struct{})
	for _, inst := range c.Instruments {
		for p := range inst.Symbols {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
