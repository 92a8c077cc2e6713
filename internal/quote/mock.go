package quote

import (
	"sync/atomic"
	"time"

	"WatchBoard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	Bars       []model.OHLCV
	QuoteErr   error
	HistoryErr error

	// FailTickers lists symbols whose fetches fail with HistoryErr/QuoteErr.
	FailTickers map[string]bool

	quoteCalls   atomic.Int64
	historyCalls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(ticker string) (*model.Quote, error) {
	m.quoteCalls.Add(1)
	if m.QuoteErr != nil && (m.FailTickers == nil || m.FailTickers[ticker]) {
		return nil, m.QuoteErr
	}
	return &model.Quote{
		Ticker:       ticker,
		CurrentPrice: m.Price,
		DayChangePct: 0.42,
		MarketCap:    m.Price * 1e9,
		FetchedAt:    time.Now(),
	}, nil
}

func (m *MockFetcher) FetchHistory(ticker, window string) (*model.HistorySeries, error) {
	m.historyCalls.Add(1)
	if m.HistoryErr != nil && (m.FailTickers == nil || m.FailTickers[ticker]) {
		return nil, m.HistoryErr
	}
	bars := m.Bars
	if bars == nil {
		bars = GenerateBars(m.Price, 120)
	}
	return &model.HistorySeries{
		Ticker:    ticker,
		Window:    window,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// QuoteCalls reports how many times FetchQuote ran.
func (m *MockFetcher) QuoteCalls() int64 { return m.quoteCalls.Load() }

// HistoryCalls reports how many times FetchHistory ran.
func (m *MockFetcher) HistoryCalls() int64 { return m.historyCalls.Load() }

// GenerateBars builds a gently trending synthetic series around basePrice.
func GenerateBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
