// Package alert fans whale trade records out to subscribers.
package alert

import (
	"context"
	"log/slog"
)

// Notifier delivers one rendered alert to one subscriber.
type Notifier interface {
	Notify(ctx context.Context, subscriberID int64, text string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, subscriberID int64, text string) error

func (f NotifierFunc) Notify(ctx context.Context, subscriberID int64, text string) error {
	return f(ctx, subscriberID, text)
}

// LogNotifier writes alerts to the log. Used when no delivery backend is
// configured, e.g. local runs without a bot token.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, subscriberID int64, text string) error {
	n.logger.Info("alert", "subscriber", subscriberID, "text", text)
	return nil
}
