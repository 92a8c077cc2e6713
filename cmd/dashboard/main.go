package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"WatchBoard/internal/board"
	"WatchBoard/internal/cache"
	"WatchBoard/internal/config"
	"WatchBoard/internal/metrics"
	"WatchBoard/internal/notify"
	"WatchBoard/internal/quote"
	"WatchBoard/internal/refresh"
	"WatchBoard/internal/server"
	sigcomp "WatchBoard/internal/signal"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] WatchBoard starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	fetcher := quote.NewYahooFetcher(cfg.Provider.Proxy, cfg.Provider.Timeout.Std())
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init metrics, cache, board
	m := metrics.New()
	c := cache.New()
	b := board.New(fetcher, c, board.Config{
		Signal: sigcomp.Params{
			ShortWindow: cfg.Signal.ShortWindow,
			LongWindow:  cfg.Signal.LongWindow,
			Threshold:   cfg.Signal.Threshold,
		},
		SignalWindow: cfg.Signal.Window,
		TTLQuote:     cfg.Cache.QuoteTTL.Std(),
		TTLMarketCap: cfg.Cache.MarketCapTTL.Std(),
		TTLHistory:   cfg.Cache.HistoryTTL.Std(),
		TTLSignal:    cfg.Cache.SignalTTL.Std(),
		Workers:      cfg.Fanout.Workers,
	}, m)

	// Init notifier
	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Provider.Proxy)
		log.Println("[INFO] Telegram flip alerts enabled")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init background refresher
	ref := refresh.New(ctx, b, notifier, cfg.Tickers(), m)
	if err := ref.Register(cfg.Refresh.Cron); err != nil {
		log.Fatalf("[FATAL] register refresh job: %v", err)
	}
	ref.Start()
	defer ref.Stop()

	// Optional: warm the cache immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, warming watchlist now")
		go ref.RunNow()
	}

	// Init HTTP server
	srv := server.New(b, cfg.Watchlist, m, cfg.Signal.Window, cfg.Signal.ShortWindow, cfg.Signal.LongWindow)
	httpSrv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		log.Printf("[INFO] dashboard listening on %s", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] WatchBoard is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] WatchBoard stopped")
}
