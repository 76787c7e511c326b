package config

import "strings"

// Config is the full sentarb configuration.
type Config struct {
	App      AppConfig     `toml:"app"`
	API      APIConfig     `toml:"api"`
	Trading  TradingConfig `toml:"trading"`
	Risk     RiskConfig    `toml:"risk_controls"`
	Sent     SentimentThresholds `toml:"sentiment_thresholds"`
	Reserves map[string]Reserve  `toml:"minimum_reserves"`
	Notify   NotifyConfig  `toml:"notify"`
	Storage  StorageConfig `toml:"storage"`
}

type AppConfig struct {
	Env        string `toml:"env"`
	LogLevel   string `toml:"log_level"`
	LogPath    string `toml:"log_path"`
	HTTPAddr   string `toml:"http_addr"`
	JobDump    bool   `toml:"job_dump"`
	JobLogPath string `toml:"job_log_path"`
}

// APIConfig tunes the async job client. KeyEnv names the environment
// variable holding the bearer token so the key itself never sits in a file.
type APIConfig struct {
	BaseURL                  string `toml:"base_url"`
	KeyEnv                   string `toml:"key_env"`
	RetryAttempts            int    `toml:"retry_attempts"`
	RetryDelaySeconds        int    `toml:"retry_delay_seconds"`
	SubmitTimeoutSeconds     int    `toml:"submit_timeout_seconds"`
	PollIntervalSeconds      int    `toml:"poll_interval_seconds"`
	MaxPollAttempts          int    `toml:"max_poll_attempts"`
	BatchPollIntervalSeconds int    `toml:"batch_poll_interval_seconds"`
	BatchMaxPollAttempts     int    `toml:"batch_max_poll_attempts"`
}

type TradingConfig struct {
	DryRun         bool     `toml:"dry_run"`
	Tokens         []string `toml:"tokens"`
	CycleInterval  string   `toml:"cycle_interval"`
	RunImmediately bool     `toml:"run_immediately"`
}

type RiskConfig struct {
	StopLossPercent    float64 `toml:"stop_loss_percent"`
	TakeProfitPercent  float64 `toml:"take_profit_percent"`
	MaxPositionPercent float64 `toml:"max_position_percent"`
	MaxDailyTrades     int     `toml:"max_daily_trades"`
}

type SentimentThresholds struct {
	BuySpikePercent float64 `toml:"buy_spike_percent"`
}

type Reserve struct {
	MinUSDValue float64 `toml:"min_usd_value"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

type StorageConfig struct {
	DataDir     string `toml:"data_dir"`
	CycleDBPath string `toml:"cycle_db_path"`
	JobDBPath   string `toml:"job_db_path"`
}

// MinReserve returns the configured USD floor for a token, 0 when unset.
func (c *Config) MinReserve(token string) float64 {
	if c == nil || len(c.Reserves) == 0 {
		return 0
	}
	if r, ok := c.Reserves[token]; ok {
		return r.MinUSDValue
	}
	// Map keys from yaml arrive lowercased through viper.
	if r, ok := c.Reserves[strings.ToLower(token)]; ok {
		return r.MinUSDValue
	}
	return 0
}
