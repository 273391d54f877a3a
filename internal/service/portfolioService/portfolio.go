package portfolioService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/KotFed0t/portfolio_builder/internal/allocator"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/registry"
	"github.com/KotFed0t/portfolio_builder/internal/service"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/shopspring/decimal"
)

// Portfolio is the state of one owner's portfolio.
//
// All state below the loop fields is owned by the loop goroutine: it is read and mutated
// only inside closures passed to exec. Network calls never run on the loop, their results
// are applied afterwards as a separate exec step.
type Portfolio struct {
	owner string
	svc   *PortfolioService

	ops       chan func()
	done      chan struct{}
	closeOnce sync.Once

	// ready is closed once the initial restoration has been applied
	ready chan struct{}

	// inflight counts background work; idle is signalled when it drops to zero
	inflightMu sync.Mutex
	idle       *sync.Cond
	inflight   int

	registry     *registry.Registry
	persistence  *persistenceBridge
	totalValue   decimal.Decimal
	tickerSearch string
	window       model.ChartWindow
}

func newPortfolio(owner string, svc *PortfolioService) *Portfolio {
	p := &Portfolio{
		owner: owner,
		svc:   svc,
		ops:   make(chan func()),
		done:  make(chan struct{}),
		ready: make(chan struct{}),
		window: model.ChartWindow{
			Period:   model.Period(svc.cfg.Portfolio.DefaultPeriod),
			Interval: model.Interval(svc.cfg.Portfolio.DefaultInterval),
		},
	}
	if !p.window.Period.Valid() {
		p.window.Period = model.PeriodYear
	}
	if !p.window.Interval.Valid() {
		p.window.Interval = model.IntervalWeek
	}

	p.idle = sync.NewCond(&p.inflightMu)
	p.persistence = newPersistenceBridge(owner, svc.storage, svc.cfg.LocalStorage.WriteTimeout)
	p.registry = registry.New(p.persistence, registry.WithClamp(svc.cfg.Portfolio.ClampPercentage))

	go p.run()

	return p
}

func (p *Portfolio) run() {
	for {
		select {
		case op := <-p.ops:
			op()
		case <-p.done:
			return
		}
	}
}

// exec runs fn on the loop goroutine and waits for it to finish.
// Must not be called from the loop itself.
func (p *Portfolio) exec(fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}

	select {
	case p.ops <- op:
	case <-p.done:
		return service.ErrClosed
	}

	<-finished
	return nil
}

// background runs fn detached from the caller; Wait blocks until it is done.
// Safe to call concurrently with Wait.
func (p *Portfolio) background(fn func()) {
	p.inflightMu.Lock()
	p.inflight++
	p.inflightMu.Unlock()

	go func() {
		defer p.finishBackground()
		fn()
	}()
}

func (p *Portfolio) finishBackground() {
	p.inflightMu.Lock()
	defer p.inflightMu.Unlock()

	p.inflight--
	if p.inflight == 0 {
		p.idle.Broadcast()
	}
}

// Wait blocks until no background fetch is in flight. Work started by other callers
// while waiting is waited for too.
func (p *Portfolio) Wait() {
	p.inflightMu.Lock()
	defer p.inflightMu.Unlock()

	for p.inflight > 0 {
		p.idle.Wait()
	}
}

func (p *Portfolio) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

func (p *Portfolio) Owner() string {
	return p.owner
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func (p *Portfolio) Get(ticker string) (holding model.Holding, ok bool) {
	ticker = normalizeTicker(ticker)
	_ = p.exec(func() {
		holding, ok = p.registry.Get(ticker)
	})
	return holding, ok
}

func (p *Portfolio) List() (holdings []model.Holding) {
	_ = p.exec(func() {
		holdings = p.registry.List()
	})
	return holdings
}

func (p *Portfolio) Projection() (items []model.PortfolioItem) {
	_ = p.exec(func() {
		items = p.registry.Projection()
	})
	return items
}

func (p *Portfolio) Delete(ctx context.Context, ticker string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	ticker = normalizeTicker(ticker)

	var found bool
	err := p.exec(func() {
		_, found = p.registry.Get(ticker)
		p.registry.Delete(ticker)
	})
	if err != nil {
		return err
	}

	if !found {
		return fmt.Errorf("%w: ticker %s", service.ErrNotFound, ticker)
	}

	slog.Info("holding deleted", slog.String("rqID", rqID), slog.String("owner", p.owner), slog.String("ticker", ticker))

	return nil
}

func (p *Portfolio) SetPercentage(ctx context.Context, ticker string, percent decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	ticker = normalizeTicker(ticker)

	var found bool
	err := p.exec(func() {
		_, found = p.registry.Get(ticker)
		p.registry.SetPercentage(ticker, percent)
	})
	if err != nil {
		return err
	}

	if !found {
		return fmt.Errorf("%w: ticker %s", service.ErrNotFound, ticker)
	}

	slog.Debug("percentage updated", slog.String("rqID", rqID), slog.String("ticker", ticker), slog.String("percent", percent.String()))

	return nil
}

func (p *Portfolio) SetTotalValue(ctx context.Context, value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("%w: total value must not be negative", service.ErrInvalidArgument)
	}

	return p.exec(func() {
		p.totalValue = value
	})
}

func (p *Portfolio) TotalValue() (value decimal.Decimal) {
	_ = p.exec(func() {
		value = p.totalValue
	})
	return value
}

// SetTickerSearch stores the pending ticker input, cleared after a successful add.
func (p *Portfolio) SetTickerSearch(search string) {
	search = normalizeTicker(search)
	_ = p.exec(func() {
		p.tickerSearch = search
	})
}

func (p *Portfolio) TickerSearch() (search string) {
	_ = p.exec(func() {
		search = p.tickerSearch
	})
	return search
}

func (p *Portfolio) ChartWindow() (window model.ChartWindow) {
	_ = p.exec(func() {
		window = p.window
	})
	return window
}

// SetChartWindow changes the lookback window and refetches history for every holding.
func (p *Portfolio) SetChartWindow(ctx context.Context, window model.ChartWindow) error {
	if !window.Period.Valid() || !window.Interval.Valid() {
		return fmt.Errorf("%w: chart window %s/%s", service.ErrInvalidArgument, window.Period, window.Interval)
	}

	err := p.exec(func() {
		p.window = window
	})
	if err != nil {
		return err
	}

	return p.RefreshHistorical(ctx, window.Period.StartDate(p.svc.now()), window.Interval, "")
}

func (p *Portfolio) AvailablePercentage(ticker string) (available decimal.Decimal) {
	ticker = normalizeTicker(ticker)
	_ = p.exec(func() {
		available = allocator.AvailablePercentage(p.registry.List(), ticker)
	})
	return available
}

func (p *Portfolio) EstimatedShares(ticker string) (shares int64) {
	ticker = normalizeTicker(ticker)
	_ = p.exec(func() {
		h, _ := p.registry.Get(ticker)
		shares = allocator.EstimatedShares(p.totalValue, h.PortfolioPercentage, h.CurrentPrice)
	})
	return shares
}

func (p *Portfolio) Summary() (summary model.PortfolioSummary) {
	_ = p.exec(func() {
		holdings := p.registry.List()
		summary = model.PortfolioSummary{
			Holdings:        make([]model.HoldingView, 0, len(holdings)),
			TotalValue:      p.totalValue,
			TotalPercentage: p.registry.TotalPercentage(),
			ChartWindow:     p.window,
		}
		for _, h := range holdings {
			summary.Holdings = append(summary.Holdings, model.HoldingView{
				Holding:             h,
				AvailablePercentage: allocator.AvailablePercentage(holdings, h.Ticker),
				EstimatedShares:     allocator.EstimatedShares(p.totalValue, h.PortfolioPercentage, h.CurrentPrice),
			})
		}
	})
	return summary
}
