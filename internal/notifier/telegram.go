package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sentarb/internal/config"
	"sentarb/internal/logger"
)

const telegramSendAttempts = 3

// Telegram delivers notifications through the Bot API. Delivery is best
// effort: failures are logged, never propagated, so a chat outage cannot
// stall a trading cycle.
type Telegram struct {
	token  string
	chatID string
	httpc  *http.Client
	wait   func(ctx context.Context, d time.Duration)
}

func NewTelegram(cfg config.TelegramConfig) *Telegram {
	return &Telegram{
		token:  cfg.BotToken,
		chatID: cfg.ChatID,
		httpc:  &http.Client{Timeout: 15 * time.Second},
		wait:   sleepCtx,
	}
}

// FromConfig returns a Telegram notifier when one is configured, the log
// fallback otherwise.
func FromConfig(cfg config.NotifyConfig) Notifier {
	if cfg.Telegram.Enabled {
		return NewTelegram(cfg.Telegram)
	}
	return LogNotifier{}
}

func (t *Telegram) Notify(ctx context.Context, text string) {
	var lastErr error
	for attempt := 1; attempt <= telegramSendAttempts; attempt++ {
		if err := t.send(ctx, text); err != nil {
			lastErr = err
			logger.Warnf("telegram send attempt %d/%d failed: %v", attempt, telegramSendAttempts, err)
			t.wait(ctx, time.Duration(attempt)*2*time.Second)
			continue
		}
		return
	}
	logger.Errorf("telegram notification dropped after %d attempts: %v", telegramSendAttempts, lastErr)
}

func (t *Telegram) send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
