package model

// Category distinguishes tax-advantaged accounts from regular brokerage.
type Category string

const (
	TaxAdvantaged Category = "tax_advantaged"
	Regular       Category = "regular"
)

// WatchlistEntry is static configuration: one ticker tracked for one owner
// in one account category.
type WatchlistEntry struct {
	Ticker   string   `yaml:"ticker"`
	Owner    string   `yaml:"owner"`
	Category Category `yaml:"category"`
}
