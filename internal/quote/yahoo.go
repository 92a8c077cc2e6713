package quote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"WatchBoard/internal/model"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a Yahoo Finance fetcher with optional proxy support.
// The timeout bounds every provider call so a slow upstream cannot starve the
// fan-out worker pool.
func NewYahooFetcher(proxyURL string, timeout time.Duration) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &YahooFetcher{
		BaseURL: defaultBaseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooQuote is the response structure from the Yahoo v7 quote API.
type yahooQuote struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			RegularMarketPrice         *float64 `json:"regularMarketPrice"`
			RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
			MarketCap                  float64  `json:"marketCap"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// yahooChart is the response structure from the Yahoo v8 chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (f *YahooFetcher) FetchQuote(ticker string) (*model.Quote, error) {
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrUnknownTicker)
	}
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", f.BaseURL, url.QueryEscape(ticker))
	body, err := f.get(u)
	if err != nil {
		return nil, err
	}

	var q yahooQuote
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, fmt.Errorf("%w: decode quote: %v", ErrMalformedResponse, err)
	}
	if q.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, q.QuoteResponse.Error.Description)
	}
	if len(q.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	r := q.QuoteResponse.Result[0]
	if r.RegularMarketPrice == nil {
		return nil, fmt.Errorf("%w: quote for %s has no price", ErrMalformedResponse, ticker)
	}
	var changePct float64
	if r.RegularMarketChangePercent != nil {
		changePct = *r.RegularMarketChangePercent
	}
	return &model.Quote{
		Ticker:       ticker,
		CurrentPrice: *r.RegularMarketPrice,
		DayChangePct: changePct,
		MarketCap:    r.MarketCap,
		FetchedAt:    time.Now(),
	}, nil
}

func (f *YahooFetcher) FetchHistory(ticker, window string) (*model.HistorySeries, error) {
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrUnknownTicker)
	}
	if !ValidWindow(window) {
		return nil, fmt.Errorf("unsupported window %q", window)
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(ticker), window)
	body, err := f.get(u)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: decode chart: %v", ErrMalformedResponse, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("%w: no data for %s", ErrUnknownTicker, ticker)
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: chart for %s has no quote block", ErrMalformedResponse, ticker)
	}
	qt := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	for _, series := range [][]interface{}{qt.Open, qt.High, qt.Low, qt.Close, qt.Volume} {
		if len(series) != n {
			return nil, fmt.Errorf("%w: chart for %s has mismatched series lengths", ErrMalformedResponse, ticker)
		}
	}

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(qt.Open[i])
		h := toFloat(qt.High[i])
		l := toFloat(qt.Low[i])
		c := toFloat(qt.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(qt.Volume[i]),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return &model.HistorySeries{
		Ticker:    ticker,
		Window:    window,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// get performs the request and maps transport-level failures onto the error
// taxonomy. A 404 is the chart API's way of reporting an unknown symbol.
func (f *YahooFetcher) get(u string) ([]byte, error) {
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: status 404", ErrUnknownTicker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	return body, nil
}
