// Package refresh keeps the watchlist's signal cache warm so the sidebar
// renders without waiting on the provider, and raises an alert when a
// ticker's classification flips between passes.
package refresh

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"WatchBoard/internal/board"
	"WatchBoard/internal/metrics"
	"WatchBoard/internal/model"
	"WatchBoard/internal/notify"
)

// Refresher runs the fan-out over the whole watchlist on a cron schedule.
type Refresher struct {
	cron     *cron.Cron
	board    *board.Board
	notifier notify.Notifier
	tickers  []string
	m        *metrics.Metrics
	ctx      context.Context

	mu   sync.Mutex
	last map[string]model.Classification
}

// New creates a Refresher. notifier may be notify.Noop when alerts are not
// configured; m may be nil.
func New(ctx context.Context, b *board.Board, n notify.Notifier, tickers []string, m *metrics.Metrics) *Refresher {
	return &Refresher{
		cron:     cron.New(cron.WithSeconds()),
		board:    b,
		notifier: n,
		tickers:  tickers,
		m:        m,
		ctx:      ctx,
		last:     make(map[string]model.Classification),
	}
}

// Register adds the refresh job under the given cron spec.
func (r *Refresher) Register(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.RunNow); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (r *Refresher) Start() {
	r.cron.Start()
	log.Println("[INFO] refresh scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (r *Refresher) Stop() {
	r.cron.Stop()
	log.Println("[INFO] refresh scheduler stopped")
}

// RunNow executes one refresh pass immediately.
func (r *Refresher) RunNow() {
	results := r.board.AllSignals(r.ctx, r.tickers)
	if r.m != nil {
		r.m.RefreshRuns.Inc()
	}

	ok, failed := 0, 0
	for ticker, res := range results {
		if res.Err != nil {
			failed++
			log.Printf("[WARN] refresh %s: %v", ticker, res.Err)
			continue
		}
		ok++
		r.checkFlip(ticker, res.Signal)
	}
	log.Printf("[INFO] refresh pass done: %d ok, %d failed", ok, failed)
}

// checkFlip compares against the previous pass and alerts on a change.
// The first observation of a ticker only seeds the baseline.
func (r *Refresher) checkFlip(ticker string, sig *model.Signal) {
	r.mu.Lock()
	prev, known := r.last[ticker]
	r.last[ticker] = sig.Classification
	r.mu.Unlock()

	if !known || prev == sig.Classification {
		return
	}
	msg := notify.FormatFlip(ticker, prev, sig)
	if err := r.notifier.Send(r.ctx, msg); err != nil {
		log.Printf("[ERROR] send flip alert for %s: %v", ticker, err)
	}
}
