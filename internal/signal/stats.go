package signal

import (
	"errors"
	"math"

	"WatchBoard/internal/model"
)

// Stats summarizes a history window: day count, volatility (stddev of daily
// percent changes), total return, and the period high/low.
func Stats(series *model.HistorySeries) (*model.SeriesStats, error) {
	if len(series.Bars) == 0 {
		return nil, errors.New("no bars in series")
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	for _, b := range series.Bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}

	closes := series.Closes()
	st := &model.SeriesStats{
		Days: len(closes),
		High: high,
		Low:  low,
	}
	if first := closes[0]; first != 0 {
		st.TotalReturn = (closes[len(closes)-1]/first - 1) * 100
	}

	if len(closes) < 2 {
		return st, nil
	}
	changes := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			changes = append(changes, closes[i]/closes[i-1]-1)
		}
	}
	st.Volatility = stddev(changes) * 100
	return st, nil
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	// Sample stddev, matching pandas' default ddof=1.
	variance /= float64(len(xs) - 1)
	return math.Sqrt(variance)
}
