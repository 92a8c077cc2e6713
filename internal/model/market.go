package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// HistorySeries holds the OHLCV bars for one ticker over a named window.
// It is never mutated after it leaves the quote client.
type HistorySeries struct {
	Ticker    string
	Window    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the closing prices in chronological order.
func (s *HistorySeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Quote is a point-in-time snapshot for one ticker. A fresher fetch
// supersedes it; the struct itself is never updated in place.
type Quote struct {
	Ticker       string
	CurrentPrice float64
	DayChangePct float64
	MarketCap    float64
	FetchedAt    time.Time
}
