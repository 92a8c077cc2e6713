package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WatchBoard/internal/board"
	"WatchBoard/internal/cache"
	"WatchBoard/internal/model"
	"WatchBoard/internal/quote"
)

type capturingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *capturingNotifier) Send(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, text)
	return nil
}

func (n *capturingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func trendBars(basePrice, step float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*step)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p,
			High:   p,
			Low:    p,
			Close:  p,
			Volume: 1000,
		}
	}
	return bars
}

func newTestBoard(mock *quote.MockFetcher) *board.Board {
	cfg := board.DefaultConfig()
	cfg.Workers = 2
	cfg.TTLHistory = time.Nanosecond
	cfg.TTLSignal = time.Nanosecond
	return board.New(mock, cache.New(), cfg, nil)
}

func TestRunNow_SeedsBaselineWithoutAlert(t *testing.T) {
	mock := &quote.MockFetcher{Price: 100, Bars: trendBars(100, 0.001, 120)}
	n := &capturingNotifier{}
	r := New(context.Background(), newTestBoard(mock), n, []string{"AAPL"}, nil)

	r.RunNow()
	assert.Empty(t, n.messages(), "first observation must not alert")
}

func TestRunNow_AlertsOnFlip(t *testing.T) {
	mock := &quote.MockFetcher{Price: 100, Bars: trendBars(100, 0.001, 120)}
	n := &capturingNotifier{}
	r := New(context.Background(), newTestBoard(mock), n, []string{"AAPL"}, nil)

	r.RunNow() // bullish baseline
	mock.Bars = trendBars(100, -0.001, 120)
	time.Sleep(time.Millisecond) // let the nanosecond TTLs lapse
	r.RunNow() // now bearish

	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "AAPL")
	assert.Contains(t, msgs[0], "bearish")
}

func TestRunNow_NoAlertWhenUnchanged(t *testing.T) {
	mock := &quote.MockFetcher{Price: 100, Bars: trendBars(100, 0.001, 120)}
	n := &capturingNotifier{}
	r := New(context.Background(), newTestBoard(mock), n, []string{"AAPL"}, nil)

	r.RunNow()
	time.Sleep(time.Millisecond)
	r.RunNow()
	assert.Empty(t, n.messages())
}

func TestRunNow_FailuresAreLoggedNotFatal(t *testing.T) {
	mock := &quote.MockFetcher{
		Price:       100,
		Bars:        trendBars(100, 0.001, 120),
		HistoryErr:  quote.ErrProviderUnavailable,
		FailTickers: map[string]bool{"BROKEN": true},
	}
	n := &capturingNotifier{}
	r := New(context.Background(), newTestBoard(mock), n, []string{"AAPL", "BROKEN"}, nil)

	r.RunNow() // must not panic; BROKEN just fails
	assert.Empty(t, n.messages())
}

func TestRegister_BadCronSpec(t *testing.T) {
	mock := &quote.MockFetcher{Price: 100}
	r := New(context.Background(), newTestBoard(mock), &capturingNotifier{}, nil, nil)
	require.Error(t, r.Register("not a cron spec"))
	require.NoError(t, r.Register("0 */15 * * * *"))
}
