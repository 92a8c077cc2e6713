package model

import "time"

// Classification is the trend call from the moving-average crossover.
type Classification string

const (
	Bullish Classification = "bullish"
	Bearish Classification = "bearish"
	Neutral Classification = "neutral"
)

// Signal is derived from exactly one HistorySeries snapshot.
type Signal struct {
	Ticker         string
	ShortMA        float64
	LongMA         float64
	Classification Classification
	ComputedAt     time.Time
}

// SeriesStats summarizes a history window for the dashboard's statistics block.
type SeriesStats struct {
	Days        int
	Volatility  float64 // stddev of daily percent changes, in percent
	TotalReturn float64 // percent change first close -> last close
	High        float64
	Low         float64
}
