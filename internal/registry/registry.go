// Package registry holds the holdings of a single portfolio.
//
// Registry is not safe for concurrent use: the owning portfolio serializes every call
// through its event loop.
package registry

import (
	"sort"

	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/shopspring/decimal"
)

var (
	minPercentage = decimal.Zero
	maxPercentage = decimal.NewFromInt(100)
)

// Syncer receives the full projection after every mutation.
type Syncer interface {
	Sync(items []model.PortfolioItem)
}

type entry struct {
	holding     model.Holding
	incarnation uint64
}

type Registry struct {
	entries         map[string]entry
	syncer          Syncer
	clamp           bool
	nextIncarnation uint64
}

type Option func(r *Registry)

// WithClamp makes SetPercentage and Insert clamp percentages into [0,100].
func WithClamp(clamp bool) Option {
	return func(r *Registry) {
		r.clamp = clamp
	}
}

func New(syncer Syncer, opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		syncer:  syncer,
		clamp:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert stores holding under ticker. Without upsert an existing ticker is left untouched
// and false is returned. The entry is replaced wholesale.
func (r *Registry) Insert(ticker string, holding model.Holding, upsert bool) bool {
	existing, ok := r.entries[ticker]
	if ok && !upsert {
		return false
	}

	holding = holding.Clone()
	holding.Ticker = ticker
	holding.PortfolioPercentage = r.normalize(holding.PortfolioPercentage)

	incarnation := existing.incarnation
	if !ok {
		r.nextIncarnation++
		incarnation = r.nextIncarnation
	}

	r.entries[ticker] = entry{holding: holding, incarnation: incarnation}
	r.sync()
	return true
}

func (r *Registry) Delete(ticker string) {
	if _, ok := r.entries[ticker]; !ok {
		return
	}
	delete(r.entries, ticker)
	r.sync()
}

func (r *Registry) Get(ticker string) (model.Holding, bool) {
	e, ok := r.entries[ticker]
	if !ok {
		return model.Holding{}, false
	}
	return e.holding.Clone(), true
}

// Incarnation identifies the lifetime of a ticker entry. A ticker deleted and added again
// gets a new incarnation.
func (r *Registry) Incarnation(ticker string) (uint64, bool) {
	e, ok := r.entries[ticker]
	return e.incarnation, ok
}

// List returns every holding exactly once, ordered by ticker.
func (r *Registry) List() []model.Holding {
	holdings := make([]model.Holding, 0, len(r.entries))
	for _, e := range r.entries {
		holdings = append(holdings, e.holding.Clone())
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Ticker < holdings[j].Ticker
	})
	return holdings
}

func (r *Registry) Tickers() []string {
	tickers := make([]string, 0, len(r.entries))
	for ticker := range r.entries {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) SetPercentage(ticker string, percent decimal.Decimal) {
	e, ok := r.entries[ticker]
	if !ok {
		return
	}
	e.holding.PortfolioPercentage = r.normalize(percent)
	r.entries[ticker] = e
	r.sync()
}

func (r *Registry) TotalPercentage() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.entries {
		total = total.Add(e.holding.PortfolioPercentage)
	}
	return total
}

func (r *Registry) Projection() []model.PortfolioItem {
	items := make([]model.PortfolioItem, 0, len(r.entries))
	for _, h := range r.List() {
		items = append(items, model.PortfolioItem{
			Ticker:              h.Ticker,
			PortfolioPercentage: h.PortfolioPercentage,
		})
	}
	return items
}

func (r *Registry) normalize(percent decimal.Decimal) decimal.Decimal {
	if !r.clamp {
		return percent
	}
	if percent.LessThan(minPercentage) {
		return minPercentage
	}
	if percent.GreaterThan(maxPercentage) {
		return maxPercentage
	}
	return percent
}

func (r *Registry) sync() {
	if r.syncer == nil {
		return
	}
	r.syncer.Sync(r.Projection())
}
