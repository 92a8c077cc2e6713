package quote

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quotePayload = `{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":231.5,"regularMarketChangePercent":1.23,"marketCap":3500000000000}],"error":null}}`

const chartPayload = `{"chart":{"result":[{"timestamp":[1755648000,1755734400,1755820800],
"indicators":{"quote":[{
"open":[100.0,null,102.0],
"high":[101.0,null,103.0],
"low":[99.0,null,101.0],
"close":[100.5,null,102.5],
"volume":[1000000,null,1200000]}]}}],"error":null}}`

func newTestFetcher(handler http.HandlerFunc) (*YahooFetcher, *httptest.Server) {
	ts := httptest.NewServer(handler)
	f := NewYahooFetcher("", 2*time.Second)
	f.BaseURL = ts.URL
	return f, ts
}

func TestFetchQuote_OK(t *testing.T) {
	f, ts := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v7/finance/quote")
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		fmt.Fprint(w, quotePayload)
	})
	defer ts.Close()

	q, err := f.FetchQuote("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Ticker)
	assert.InDelta(t, 231.5, q.CurrentPrice, 1e-9)
	assert.InDelta(t, 1.23, q.DayChangePct, 1e-9)
	assert.InDelta(t, 3.5e12, q.MarketCap, 1)
	assert.False(t, q.FetchedAt.IsZero())
}

func TestFetchQuote_UnknownTicker(t *testing.T) {
	f, ts := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[],"error":null}}`)
	})
	defer ts.Close()

	_, err := f.FetchQuote("INVALID_TICKER_XYZ")
	require.ErrorIs(t, err, ErrUnknownTicker)
}

func TestFetchQuote_EmptyTicker(t *testing.T) {
	f := NewYahooFetcher("", time.Second)
	_, err := f.FetchQuote("")
	require.ErrorIs(t, err, ErrUnknownTicker)
}

func TestFetchQuote_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>rate limited</html>`},
		{"missing price", `{"quoteResponse":{"result":[{"symbol":"AAPL"}],"error":null}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ts := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			defer ts.Close()

			_, err := f.FetchQuote("AAPL")
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestFetchQuote_ProviderUnavailable(t *testing.T) {
	f, ts := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer ts.Close()

	_, err := f.FetchQuote("AAPL")
	require.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestFetchQuote_NetworkError(t *testing.T) {
	f, ts := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {})
	ts.Close() // connection refused from here on

	_, err := f.FetchQuote("AAPL")
	require.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestFetchHistory_OK(t *testing.T) {
	f, ts := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		assert.Equal(t, "3mo", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartPayload)
	})
	defer ts.Close()

	series, err := f.FetchHistory("AAPL", "3mo")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", series.Ticker)
	assert.Equal(t, "3mo", series.Window)
	require.Len(t, series.Bars, 2, "null bar must be skipped")
	assert.InDelta(t, 100.5, series.Bars[0].Close, 1e-9)
	assert.InDelta(t, 102.5, series.Bars[1].Close, 1e-9)
	assert.True(t, series.Bars[0].Time.Before(series.Bars[1].Time), "bars must be chronological")
	assert.InDelta(t, 1200000, series.Bars[1].Volume, 1e-9)
}

func TestFetchHistory_UnknownTicker(t *testing.T) {
	f, ts := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})
	defer ts.Close()

	_, err := f.FetchHistory("INVALID_TICKER_XYZ", "3mo")
	require.ErrorIs(t, err, ErrUnknownTicker)
}

func TestFetchHistory_ChartError(t *testing.T) {
	f, ts := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"no data"}}}`)
	})
	defer ts.Close()

	_, err := f.FetchHistory("NOPE", "3mo")
	require.ErrorIs(t, err, ErrUnknownTicker)
}

func TestFetchHistory_MismatchedSeries(t *testing.T) {
	f, ts := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1,2,3],"indicators":{"quote":[{"open":[1.0],"high":[1.0],"low":[1.0],"close":[1.0],"volume":[1.0]}]}}],"error":null}}`)
	})
	defer ts.Close()

	_, err := f.FetchHistory("AAPL", "3mo")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestFetchHistory_UnsupportedWindow(t *testing.T) {
	f := NewYahooFetcher("", time.Second)
	_, err := f.FetchHistory("AAPL", "42d")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProviderUnavailable)
}

func TestValidWindow(t *testing.T) {
	for _, w := range Windows {
		assert.True(t, ValidWindow(w), w)
	}
	assert.False(t, ValidWindow("42d"))
	assert.False(t, ValidWindow(""))
}
