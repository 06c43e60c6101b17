package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/AutoTrade/internal/model"
)

// Config holds all application configuration
type Config struct {
	LogLevel       string
	DataProvider   string // yahoo or twelvedata
	TwelveAPIKey   string
	RequestTimeout time.Duration
	NotifyTimeout  time.Duration
	RequestsPerSec int
	MaxRetries     int
	Lookback       time.Duration
	Indicators     model.IndicatorParams

	// Default signal form values; every invocation may override them.
	DefaultInstrument  string
	DefaultMode        string
	DefaultRiskReward  float64
	DefaultRiskPercent float64
	DefaultBalance     float64

	TelegramBotToken string
	TelegramChatID   string

	MetricsAddr string
	CatalogFile string
	Catalog     *Catalog
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	// Load values from environment variables
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.DataProvider = strings.ToLower(getEnvWithDefault("DATA_PROVIDER", "yahoo"))
	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.RequestTimeout = time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 30)) * time.Second
	cfg.NotifyTimeout = time.Duration(getEnvIntWithDefault("NOTIFY_TIMEOUT", 10)) * time.Second
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", 3)
	cfg.Lookback = time.Duration(getEnvIntWithDefault("LOOKBACK_DAYS", 14)) * 24 * time.Hour
	cfg.Indicators = model.IndicatorParams{
		FastPeriod: getEnvIntWithDefault("EMA_FAST_PERIOD", 20),
		SlowPeriod: getEnvIntWithDefault("EMA_SLOW_PERIOD", 50),
		ATRPeriod:  getEnvIntWithDefault("ATR_PERIOD", 14),
	}

	cfg.DefaultInstrument = getEnvWithDefault("SYMBOL", "BTCUSDT")
	cfg.DefaultMode = getEnvWithDefault("MODE", "Scalping")
	cfg.DefaultRiskReward = getEnvFloatWithDefault("RISK_REWARD", 2.0)
	cfg.DefaultRiskPercent = getEnvFloatWithDefault("RISK_PERCENT", 1.0)
	cfg.DefaultBalance = getEnvFloatWithDefault("ACCOUNT_BALANCE", 1000.0)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	cfg.CatalogFile = os.Getenv("CATALOG_FILE")

	if cfg.CatalogFile != "" {
		catalog, err := LoadCatalog(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = catalog
	} else {
		cfg.Catalog = DefaultCatalog()
	}

	return &cfg, nil
}

// DefaultRequest builds a signal request from the configured form defaults.
func (c *Config) DefaultRequest() model.SignalRequest {
	return model.SignalRequest{
		Instrument:  c.DefaultInstrument,
		Mode:        c.DefaultMode,
		RiskReward:  c.DefaultRiskReward,
		RiskPercent: c.DefaultRiskPercent,
		Balance:     c.DefaultBalance,
		Telegram: model.TelegramTarget{
			BotToken: c.TelegramBotToken,
			ChatID:   c.TelegramChatID,
		},
	}
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid number, using default")
	}
	return defaultValue
}
