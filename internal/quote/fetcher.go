package quote

import (
	"errors"

	"WatchBoard/internal/model"
)

// Error taxonomy for provider calls. Callers match with errors.Is.
var (
	// ErrProviderUnavailable covers network failures and timeouts; transient.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrUnknownTicker means the provider has no data for the symbol.
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrMalformedResponse means the payload did not parse into the expected shape.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Windows lists the history windows the dashboard offers.
var Windows = []string{"1mo", "3mo", "6mo", "1y", "2y", "5y"}

// ValidWindow reports whether w is a recognized history window.
func ValidWindow(w string) bool {
	for _, v := range Windows {
		if v == w {
			return true
		}
	}
	return false
}

// Fetcher defines the interface for fetching market data.
// Implementations do not cache; caching is composed around them.
type Fetcher interface {
	FetchQuote(ticker string) (*model.Quote, error)
	FetchHistory(ticker, window string) (*model.HistorySeries, error)
	Name() string
}
