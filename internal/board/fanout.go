package board

import (
	"context"
	"sync"

	"WatchBoard/internal/model"
)

// SignalResult is one ticker's outcome from a fan-out pass. Exactly one of
// Signal and Err is set.
type SignalResult struct {
	Signal *model.Signal
	Err    error
}

// AllSignals fetches and computes the signal for every ticker concurrently
// across a bounded worker pool. One ticker's failure never affects another;
// each outcome lands independently in the returned map. No ordering is
// guaranteed across tickers.
func (b *Board) AllSignals(ctx context.Context, tickers []string) map[string]SignalResult {
	results := make(map[string]SignalResult, len(tickers))

	// Deduplicate so a ticker watched by two owners is fetched once.
	seen := make(map[string]bool, len(tickers))
	unique := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	if len(unique) == 0 {
		return results
	}

	workers := b.cfg.Workers
	if workers <= 0 {
		workers = 10
	}
	if workers > len(unique) {
		workers = len(unique)
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				sig, err := b.Signal(t)
				mu.Lock()
				results[t] = SignalResult{Signal: sig, Err: err}
				mu.Unlock()
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, t := range unique {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- t:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	// Tickers never dispatched because the context ended report the
	// cancellation instead of silently missing from the map.
	for _, t := range unique[dispatched:] {
		results[t] = SignalResult{Err: ctx.Err()}
	}
	return results
}
