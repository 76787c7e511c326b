package config

import (
	"fmt"
	"strings"
	"time"
)

func validate(c *Config) error {
	if !strings.HasPrefix(c.API.BaseURL, "http") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	for _, tok := range c.Trading.Tokens {
		if strings.TrimSpace(tok) == "" {
			return fmt.Errorf("trading.tokens contains a blank entry")
		}
	}
	if c.Trading.CycleInterval != "" {
		if _, err := time.ParseDuration(c.Trading.CycleInterval); err != nil {
			return fmt.Errorf("trading.cycle_interval: %w", err)
		}
	}
	if c.Risk.MaxPositionPercent > 100 {
		return fmt.Errorf("risk_controls.max_position_percent must be <= 100")
	}
	for token, r := range c.Reserves {
		if r.MinUSDValue < 0 {
			return fmt.Errorf("minimum_reserves.%s.min_usd_value must be >= 0", token)
		}
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
		}
	}
	return nil
}

// CycleIntervalDuration returns the parsed cadence, 0 for one-shot mode.
func (c *Config) CycleIntervalDuration() time.Duration {
	if c.Trading.CycleInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Trading.CycleInterval)
	if err != nil {
		return 0
	}
	return d
}
