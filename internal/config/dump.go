package config

import (
	"gopkg.in/yaml.v3"
)

// Dump renders the effective configuration (post-defaults) as yaml for the
// startup debug log. Secrets never live in Config (the API key is read from
// the environment), except the Telegram bot token which is masked here.
func (c *Config) Dump() string {
	masked := *c
	if masked.Notify.Telegram.BotToken != "" {
		masked.Notify.Telegram.BotToken = maskTail(masked.Notify.Telegram.BotToken)
	}
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return ""
	}
	return string(out)
}

func maskTail(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
