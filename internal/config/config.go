package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"WatchBoard/internal/model"
	"WatchBoard/internal/quote"
)

// Duration wraps time.Duration so TTLs read naturally in YAML ("15m", "1h").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	Provider struct {
		Proxy   string   `yaml:"proxy"`
		Timeout Duration `yaml:"timeout"`
	} `yaml:"provider"`
	Signal struct {
		ShortWindow int     `yaml:"short_window"`
		LongWindow  int     `yaml:"long_window"`
		Threshold   float64 `yaml:"threshold"`
		Window      string  `yaml:"window"`
	} `yaml:"signal"`
	Cache struct {
		QuoteTTL     Duration `yaml:"quote_ttl"`
		MarketCapTTL Duration `yaml:"market_cap_ttl"`
		HistoryTTL   Duration `yaml:"history_ttl"`
		SignalTTL    Duration `yaml:"signal_ttl"`
	} `yaml:"cache"`
	Fanout struct {
		Workers int `yaml:"workers"`
	} `yaml:"fanout"`
	Refresh struct {
		Cron string `yaml:"cron"`
	} `yaml:"refresh"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Watchlist []model.WatchlistEntry `yaml:"watchlist"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and fills in defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Provider.Proxy = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Refresh.Cron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}

	// Defaults
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = Duration(8 * time.Second)
	}
	if cfg.Signal.ShortWindow == 0 {
		cfg.Signal.ShortWindow = 20
	}
	if cfg.Signal.LongWindow == 0 {
		cfg.Signal.LongWindow = 50
	}
	if cfg.Signal.Threshold == 0 {
		cfg.Signal.Threshold = 0.01
	}
	if cfg.Signal.Window == "" {
		cfg.Signal.Window = "6mo"
	}
	if cfg.Cache.QuoteTTL == 0 {
		cfg.Cache.QuoteTTL = Duration(15 * time.Minute)
	}
	if cfg.Cache.MarketCapTTL == 0 {
		cfg.Cache.MarketCapTTL = Duration(time.Hour)
	}
	if cfg.Cache.HistoryTTL == 0 {
		cfg.Cache.HistoryTTL = Duration(15 * time.Minute)
	}
	if cfg.Cache.SignalTTL == 0 {
		cfg.Cache.SignalTTL = Duration(15 * time.Minute)
	}
	if cfg.Fanout.Workers == 0 {
		cfg.Fanout.Workers = 10
	}
	if cfg.Refresh.Cron == "" {
		cfg.Refresh.Cron = "0 */15 * * * *"
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = DefaultWatchlist()
	}

	return cfg, nil
}

// DefaultWatchlist is the built-in three-owner watchlist used when the config
// file does not provide one.
func DefaultWatchlist() []model.WatchlistEntry {
	return []model.WatchlistEntry{
		{Ticker: "^GSPC", Owner: "camille", Category: model.Regular},
		{Ticker: "AAPL", Owner: "camille", Category: model.TaxAdvantaged},
		{Ticker: "MSFT", Owner: "camille", Category: model.TaxAdvantaged},
		{Ticker: "VTI", Owner: "julien", Category: model.TaxAdvantaged},
		{Ticker: "NVDA", Owner: "julien", Category: model.Regular},
		{Ticker: "GOOGL", Owner: "julien", Category: model.Regular},
		{Ticker: "VOO", Owner: "sophie", Category: model.TaxAdvantaged},
		{Ticker: "AMZN", Owner: "sophie", Category: model.Regular},
	}
}

// Tickers returns the distinct tickers on the watchlist, in first-seen order.
func (c *Config) Tickers() []string {
	seen := make(map[string]bool, len(c.Watchlist))
	out := make([]string, 0, len(c.Watchlist))
	for _, e := range c.Watchlist {
		if !seen[e.Ticker] {
			seen[e.Ticker] = true
			out = append(out, e.Ticker)
		}
	}
	return out
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Signal.ShortWindow <= 0 || c.Signal.LongWindow <= 0 {
		return fmt.Errorf("signal windows must be positive")
	}
	if c.Signal.ShortWindow >= c.Signal.LongWindow {
		return fmt.Errorf("signal.short_window must be smaller than signal.long_window")
	}
	if c.Signal.Threshold < 0 {
		return fmt.Errorf("signal.threshold must not be negative")
	}
	if !quote.ValidWindow(c.Signal.Window) {
		return fmt.Errorf("signal.window %q is not a recognized history window", c.Signal.Window)
	}
	if c.Fanout.Workers <= 0 {
		return fmt.Errorf("fanout.workers must be positive")
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	for i, e := range c.Watchlist {
		if e.Ticker == "" {
			return fmt.Errorf("watchlist[%d]: ticker is required", i)
		}
		if e.Owner == "" {
			return fmt.Errorf("watchlist[%d]: owner is required", i)
		}
		if e.Category != model.TaxAdvantaged && e.Category != model.Regular {
			return fmt.Errorf("watchlist[%d]: unknown category %q", i, e.Category)
		}
	}
	return nil
}
