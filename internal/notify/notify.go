package notify

import (
	"context"
	"fmt"

	"WatchBoard/internal/model"
)

// Notifier pushes out-of-band alerts, currently only signal flips.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Noop is used when no Telegram credentials are configured.
type Noop struct{}

func (Noop) Send(_ context.Context, _ string) error { return nil }

// FormatFlip renders a classification change for one ticker.
func FormatFlip(ticker string, from model.Classification, sig *model.Signal) string {
	return fmt.Sprintf("🔔 <b>%s</b> signal flipped: %s ➜ %s\nshort MA: %.2f | long MA: %.2f",
		ticker, from, sig.Classification, sig.ShortMA, sig.LongMA)
}
