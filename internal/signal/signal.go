package signal

import (
	"errors"
	"fmt"
	"time"

	"WatchBoard/internal/model"
)

// ErrInsufficientData means the series is shorter than the long window.
var ErrInsufficientData = errors.New("insufficient data for signal")

// Params are the tunable knobs of the crossover heuristic.
type Params struct {
	ShortWindow int     // default 20
	LongWindow  int     // default 50
	Threshold   float64 // relative, e.g. 0.01 for 1%
}

// DefaultParams mirror the dashboard's MA20/MA50 overlay.
func DefaultParams() Params {
	return Params{ShortWindow: 20, LongWindow: 50, Threshold: 0.01}
}

func (p Params) Validate() error {
	if p.ShortWindow <= 0 || p.LongWindow <= 0 {
		return errors.New("windows must be positive")
	}
	if p.ShortWindow >= p.LongWindow {
		return errors.New("short window must be smaller than long window")
	}
	if p.Threshold < 0 {
		return errors.New("threshold must not be negative")
	}
	return nil
}

// Compute derives the crossover signal from one series snapshot.
// Deterministic: identical input always yields the identical classification.
func Compute(series *model.HistorySeries, p Params) (*model.Signal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	closes := series.Closes()
	if len(closes) < p.LongWindow {
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientData, len(closes), p.LongWindow)
	}

	short, err := SMA(closes, p.ShortWindow)
	if err != nil {
		return nil, err
	}
	long, err := SMA(closes, p.LongWindow)
	if err != nil {
		return nil, err
	}

	return &model.Signal{
		Ticker:         series.Ticker,
		ShortMA:        short,
		LongMA:         long,
		Classification: classify(short, long, p.Threshold),
		ComputedAt:     time.Now(),
	}, nil
}

// SMA computes the simple moving average over the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w: %d prices, need %d", ErrInsufficientData, len(prices), period)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA computes the simple moving average at every index. Positions
// before the window fills are zero; callers trim to where the overlay is
// defined.
func RollingSMA(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// classify compares the averages against a relative threshold so that
// near-equal averages stay neutral instead of flipping on noise.
func classify(short, long, threshold float64) model.Classification {
	if long == 0 {
		return model.Neutral
	}
	diff := (short - long) / long
	switch {
	case diff > threshold:
		return model.Bullish
	case diff < -threshold:
		return model.Bearish
	default:
		return model.Neutral
	}
}
