package notifier

import (
	"context"

	"sentarb/internal/logger"
)

// Notifier pushes human-readable trade events somewhere a human watches.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// LogNotifier writes notifications to the application log. It is the
// fallback when no chat channel is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, text string) {
	logger.Infof("[NOTIFY] %s", text)
}
