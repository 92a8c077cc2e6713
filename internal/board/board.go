// Package board wires the quote client, the cache layer, and the signal
// computer into the three entry points the presentation layer consumes.
package board

import (
	"errors"
	"time"

	"WatchBoard/internal/cache"
	"WatchBoard/internal/metrics"
	"WatchBoard/internal/model"
	"WatchBoard/internal/quote"
	"WatchBoard/internal/signal"
)

// Config carries the board's tunables. TTLs are independent because the data
// they guard moves at different speeds: market cap barely moves intraday,
// quotes and signals do.
type Config struct {
	Signal       signal.Params
	SignalWindow string // history window fed to the crossover, e.g. "6mo"
	TTLQuote     time.Duration
	TTLMarketCap time.Duration
	TTLHistory   time.Duration
	TTLSignal    time.Duration
	Workers      int
}

// DefaultConfig returns the tunables the dashboard ships with.
func DefaultConfig() Config {
	return Config{
		Signal:       signal.DefaultParams(),
		SignalWindow: "6mo",
		TTLQuote:     15 * time.Minute,
		TTLMarketCap: time.Hour,
		TTLHistory:   15 * time.Minute,
		TTLSignal:    15 * time.Minute,
		Workers:      10,
	}
}

// Board composes a fetcher and an explicitly constructed cache. It holds no
// package-level state; build one in main and pass it down.
type Board struct {
	fetcher quote.Fetcher
	cache   *cache.Cache
	cfg     Config
	m       *metrics.Metrics
}

// New creates a Board. m may be nil when metrics are not wanted (tests).
func New(fetcher quote.Fetcher, c *cache.Cache, cfg Config, m *metrics.Metrics) *Board {
	if m != nil {
		c.OnHit = m.CacheHits.Inc
		c.OnMiss = m.CacheMisses.Inc
	}
	return &Board{fetcher: fetcher, cache: c, cfg: cfg, m: m}
}

// Quote returns the cached quote for ticker, fetching on miss.
func (b *Board) Quote(ticker string) (*model.Quote, error) {
	return cache.GetOrCompute(b.cache, cache.Key(ticker, "quote", ""), b.cfg.TTLQuote,
		func() (*model.Quote, error) {
			return b.timedQuote(ticker)
		})
}

// MarketCap is cached on its own long TTL, independent of the quote entry.
func (b *Board) MarketCap(ticker string) (float64, error) {
	return cache.GetOrCompute(b.cache, cache.Key(ticker, "marketcap", ""), b.cfg.TTLMarketCap,
		func() (float64, error) {
			q, err := b.Quote(ticker)
			if err != nil {
				return 0, err
			}
			return q.MarketCap, nil
		})
}

// History returns the cached OHLCV series for ticker over window.
func (b *Board) History(ticker, window string) (*model.HistorySeries, error) {
	return cache.GetOrCompute(b.cache, cache.Key(ticker, "history", window), b.cfg.TTLHistory,
		func() (*model.HistorySeries, error) {
			return b.timedHistory(ticker, window)
		})
}

// Signal returns the cached crossover signal for ticker, recomputing it from
// the history cache when the signal entry expires.
func (b *Board) Signal(ticker string) (*model.Signal, error) {
	return cache.GetOrCompute(b.cache, cache.Key(ticker, "signal", b.cfg.SignalWindow), b.cfg.TTLSignal,
		func() (*model.Signal, error) {
			series, err := b.History(ticker, b.cfg.SignalWindow)
			if err != nil {
				return nil, err
			}
			sig, err := signal.Compute(series, b.cfg.Signal)
			if err != nil {
				return nil, err
			}
			if b.m != nil {
				b.m.SignalsComputed.Inc()
			}
			return sig, nil
		})
}

// Stats derives the statistics block from the (cached) history series.
func (b *Board) Stats(ticker, window string) (*model.SeriesStats, error) {
	series, err := b.History(ticker, window)
	if err != nil {
		return nil, err
	}
	return signal.Stats(series)
}

func (b *Board) timedQuote(ticker string) (*model.Quote, error) {
	start := time.Now()
	q, err := b.fetcher.FetchQuote(ticker)
	b.observe("quote", start, err)
	return q, err
}

func (b *Board) timedHistory(ticker, window string) (*model.HistorySeries, error) {
	start := time.Now()
	s, err := b.fetcher.FetchHistory(ticker, window)
	b.observe("history", start, err)
	return s, err
}

func (b *Board) observe(kind string, start time.Time, err error) {
	if b.m == nil {
		return
	}
	b.m.FetchesTotal.WithLabelValues(kind).Inc()
	b.m.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		b.m.FetchErrors.WithLabelValues(kind, errReason(err)).Inc()
	}
}

func errReason(err error) string {
	switch {
	case errors.Is(err, quote.ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, quote.ErrUnknownTicker):
		return "unknown_ticker"
	case errors.Is(err, quote.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, signal.ErrInsufficientData):
		return "insufficient_data"
	default:
		return "other"
	}
}
