// Package server is the presentation layer: an HTML dashboard plus the JSON
// API it fetches from. It only talks to the core through the three entry
// points (quote, history, fan-out signals) and renders "unavailable" for any
// entry whose fetch failed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"WatchBoard/internal/board"
	"WatchBoard/internal/metrics"
	"WatchBoard/internal/model"
	"WatchBoard/internal/quote"
	"WatchBoard/internal/signal"
)

// Core is the surface the presentation layer consumes.
type Core interface {
	Quote(ticker string) (*model.Quote, error)
	History(ticker, window string) (*model.HistorySeries, error)
	Stats(ticker, window string) (*model.SeriesStats, error)
	AllSignals(ctx context.Context, tickers []string) map[string]board.SignalResult
}

// Server renders the dashboard for one watchlist.
type Server struct {
	core          Core
	watchlist     []model.WatchlistEntry
	m             *metrics.Metrics
	defaultWindow string
	maShort       int
	maLong        int
}

// New creates a Server. m may be nil; /metrics then returns 404.
func New(core Core, watchlist []model.WatchlistEntry, m *metrics.Metrics, defaultWindow string, maShort, maLong int) *Server {
	return &Server{
		core:          core,
		watchlist:     watchlist,
		m:             m,
		defaultWindow: defaultWindow,
		maShort:       maShort,
		maLong:        maLong,
	}
}

// Handler returns the routed HTTP handler with logging middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/quote", s.handleQuote)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/signals", s.handleSignals)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.m != nil {
		mux.Handle("GET /metrics", s.m.Handler())
	}
	return logRequests(mux)
}

type quoteResponse struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	DayChangePct  float64 `json:"day_change_pct"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapText string  `json:"market_cap_text"`
	FetchedAt     string  `json:"fetched_at"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	q, err := s.core.Quote(ticker)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, quoteResponse{
		Ticker:        q.Ticker,
		Price:         q.CurrentPrice,
		DayChangePct:  q.DayChangePct,
		MarketCap:     q.MarketCap,
		MarketCapText: marketCapText(q.MarketCap),
		FetchedAt:     q.FetchedAt.Format(time.RFC3339),
	})
}

type historyResponse struct {
	Ticker     string    `json:"ticker"`
	Window     string    `json:"window"`
	Dates      []string  `json:"dates"`
	Prices     []float64 `json:"prices"`
	Volumes    []float64 `json:"volumes"`
	LastVolume string    `json:"last_volume"`
	MADates    []string  `json:"ma_dates"`
	MAPrices   []float64 `json:"ma_prices"`
	MAShort    []float64 `json:"ma_short"`
	MALong     []float64 `json:"ma_long"`
	Stats      struct {
		Days        int     `json:"days"`
		Volatility  float64 `json:"volatility"`
		TotalReturn float64 `json:"total_return"`
		High        float64 `json:"high"`
		Low         float64 `json:"low"`
	} `json:"stats"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	window := r.URL.Query().Get("window")
	if window == "" {
		window = s.defaultWindow
	}
	if !quote.ValidWindow(window) {
		writeError(w, http.StatusBadRequest, "unrecognized window")
		return
	}

	series, err := s.core.History(ticker, window)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	stats, err := s.core.Stats(ticker, window)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	resp := historyResponse{Ticker: ticker, Window: window}
	for _, b := range series.Bars {
		resp.Dates = append(resp.Dates, b.Time.Format("2006-01-02"))
		resp.Prices = append(resp.Prices, b.Close)
		resp.Volumes = append(resp.Volumes, b.Volume)
	}
	if n := len(series.Bars); n > 0 {
		resp.LastVolume = humanize.Comma(int64(series.Bars[n-1].Volume))
	}
	resp.MADates, resp.MAPrices, resp.MAShort, resp.MALong = s.maOverlay(series)
	resp.Stats.Days = stats.Days
	resp.Stats.Volatility = stats.Volatility
	resp.Stats.TotalReturn = stats.TotalReturn
	resp.Stats.High = stats.High
	resp.Stats.Low = stats.Low
	writeJSON(w, resp)
}

// maOverlay builds the moving-average chart data: the most recent 100 points
// for which both averages are defined.
func (s *Server) maOverlay(series *model.HistorySeries) (dates []string, prices, short, long []float64) {
	closes := series.Closes()
	shortAll := signal.RollingSMA(closes, s.maShort)
	longAll := signal.RollingSMA(closes, s.maLong)

	start := s.maLong - 1
	if start < 0 || start >= len(closes) {
		return nil, nil, nil, nil
	}
	if tail := len(closes) - 100; tail > start {
		start = tail
	}
	for i := start; i < len(closes); i++ {
		dates = append(dates, series.Bars[i].Time.Format("2006-01-02"))
		prices = append(prices, closes[i])
		short = append(short, shortAll[i])
		long = append(long, longAll[i])
	}
	return dates, prices, short, long
}

type signalEntry struct {
	Ticker         string  `json:"ticker"`
	Owner          string  `json:"owner"`
	Category       string  `json:"category"`
	Classification string  `json:"classification,omitempty"`
	ShortMA        float64 `json:"short_ma,omitempty"`
	LongMA         float64 `json:"long_ma,omitempty"`
	Error          string  `json:"error,omitempty"`
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	tickers := make([]string, 0, len(s.watchlist))
	for _, e := range s.watchlist {
		tickers = append(tickers, e.Ticker)
	}
	results := s.core.AllSignals(r.Context(), tickers)

	entries := make([]signalEntry, 0, len(s.watchlist))
	for _, e := range s.watchlist {
		entry := signalEntry{
			Ticker:   e.Ticker,
			Owner:    e.Owner,
			Category: string(e.Category),
		}
		res, ok := results[e.Ticker]
		switch {
		case !ok:
			entry.Error = "unavailable"
		case res.Err != nil:
			entry.Error = errorLabel(res.Err)
		default:
			entry.Classification = string(res.Signal.Classification)
			entry.ShortMA = res.Signal.ShortMA
			entry.LongMA = res.Signal.LongMA
		}
		entries = append(entries, entry)
	}
	writeJSON(w, map[string]any{"entries": entries})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeCoreError maps the core's error taxonomy onto HTTP statuses.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quote.ErrUnknownTicker):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quote.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, quote.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, signal.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// errorLabel is the short per-entry error state the sidebar shows.
func errorLabel(err error) string {
	switch {
	case errors.Is(err, quote.ErrUnknownTicker):
		return "unknown ticker"
	case errors.Is(err, quote.ErrProviderUnavailable):
		return "provider unavailable"
	case errors.Is(err, quote.ErrMalformedResponse):
		return "bad provider data"
	case errors.Is(err, signal.ErrInsufficientData):
		return "not enough history"
	default:
		return "unavailable"
	}
}

func marketCapText(mc float64) string {
	if mc <= 0 {
		return "n/a"
	}
	return "$" + humanize.SIWithDigits(mc, 2, "")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// logRequests tags every request with an ID and logs method, path, status,
// and latency.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		log.Printf("[INFO] %s %s %d %s id=%s", r.Method, r.URL.Path, sw.status, time.Since(start), id)
	})
}
