package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/service"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/shopspring/decimal"
)

// AddQuote resolves ticker through the quote service and inserts it with the given weight.
// With upsert an existing holding is refreshed and keeps its color and history.
// On success the ticker search is cleared and history for the current chart window is
// fetched in background.
func (p *Portfolio) AddQuote(ctx context.Context, ticker string, percentage decimal.Decimal, upsert bool) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Portfolio.AddQuote"
	ticker = normalizeTicker(ticker)

	slog.Debug("AddQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.Bool("upsert", upsert))
	defer func() {
		slog.Debug("AddQuote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	if ticker == "" {
		return fmt.Errorf("%w: empty ticker", service.ErrInvalidArgument)
	}

	quote, err := p.svc.quotes.GetQuote(ctx, ticker)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fmt.Errorf("%w: ticker %s", service.ErrNotFound, ticker)
		}
		slog.Error("got error from quotes.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if quote.IsEmpty() {
		return fmt.Errorf("%w: ticker %s", service.ErrNotFound, ticker)
	}

	var (
		inserted    bool
		incarnation uint64
		window      model.ChartWindow
	)

	err = p.exec(func() {
		holding := model.Holding{
			Ticker:              ticker,
			Name:                quote.Name,
			Currency:            quote.Currency,
			Exchange:            quote.Exchange,
			CurrentPrice:        quote.CurrentPrice,
			PreviousClosePrice:  quote.PreviousClosePrice,
			PortfolioPercentage: percentage,
		}

		existing, exists := p.registry.Get(ticker)
		switch {
		case exists && !upsert:
			return
		case exists:
			holding.DisplayColor = existing.DisplayColor
			holding.HistoricalData = existing.HistoricalData
		default:
			holding.DisplayColor = p.svc.colors.Generate()
		}

		inserted = p.registry.Insert(ticker, holding, upsert)
		if !inserted {
			return
		}

		p.tickerSearch = ""
		incarnation, _ = p.registry.Incarnation(ticker)
		window = p.window
	})
	if err != nil {
		return err
	}

	if !inserted {
		return fmt.Errorf("%w: ticker %s", service.ErrDuplicate, ticker)
	}

	slog.Info("holding added", slog.String("rqID", rqID), slog.String("owner", p.owner), slog.String("ticker", ticker), slog.Bool("upsert", upsert))

	bgCtx := context.WithoutCancel(ctx)
	startDate := window.Period.StartDate(p.svc.now())
	p.background(func() {
		p.fetchHistorical(bgCtx, ticker, incarnation, startDate, window.Interval)
	})

	return nil
}

// UpdateQuote refetches price fields of an existing holding past the quote cache.
// The result is dropped if the holding was deleted while the request was in flight.
func (p *Portfolio) UpdateQuote(ctx context.Context, ticker string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Portfolio.UpdateQuote"
	ticker = normalizeTicker(ticker)

	var (
		incarnation uint64
		found       bool
	)
	err := p.exec(func() {
		incarnation, found = p.registry.Incarnation(ticker)
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: ticker %s", service.ErrNotFound, ticker)
	}

	quote, err := p.svc.quotes.RefreshQuote(ctx, ticker)
	if err != nil {
		return err
	}

	return p.exec(func() {
		if !p.isSameHolding(ticker, incarnation) {
			slog.Debug("quote update dropped, holding is gone", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
			return
		}

		holding, _ := p.registry.Get(ticker)
		holding.CurrentPrice = quote.CurrentPrice
		holding.PreviousClosePrice = quote.PreviousClosePrice
		p.registry.Insert(ticker, holding, true)
	})
}

// UpdateAllQuotes refreshes every holding independently in background.
func (p *Portfolio) UpdateAllQuotes(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Portfolio.UpdateAllQuotes"

	var tickers []string
	err := p.exec(func() {
		tickers = p.registry.Tickers()
	})
	if err != nil {
		return err
	}

	slog.Debug("UpdateAllQuotes fan-out", slog.String("rqID", rqID), slog.String("op", op), slog.Int("tickers", len(tickers)))

	bgCtx := context.WithoutCancel(ctx)
	for _, ticker := range tickers {
		p.background(func() {
			if err := p.UpdateQuote(bgCtx, ticker); err != nil {
				slog.Warn("quote refresh failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
			}
		})
	}

	return nil
}

// RefreshHistorical refetches history for every holding except excludeTicker.
func (p *Portfolio) RefreshHistorical(ctx context.Context, startDate time.Time, interval model.Interval, excludeTicker string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Portfolio.RefreshHistorical"
	excludeTicker = normalizeTicker(excludeTicker)

	incarnations := make(map[string]uint64)
	err := p.exec(func() {
		for _, ticker := range p.registry.Tickers() {
			if ticker == excludeTicker {
				continue
			}
			incarnations[ticker], _ = p.registry.Incarnation(ticker)
		}
	})
	if err != nil {
		return err
	}

	slog.Debug("RefreshHistorical fan-out", slog.String("rqID", rqID), slog.String("op", op), slog.Int("tickers", len(incarnations)))

	bgCtx := context.WithoutCancel(ctx)
	for ticker, incarnation := range incarnations {
		p.background(func() {
			p.fetchHistorical(bgCtx, ticker, incarnation, startDate, interval)
		})
	}

	return nil
}

func (p *Portfolio) fetchHistorical(ctx context.Context, ticker string, incarnation uint64, startDate time.Time, interval model.Interval) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Portfolio.fetchHistorical"

	points, err := p.svc.quotes.GetHistorical(ctx, ticker, startDate, interval)
	if err != nil {
		slog.Warn("historical fetch failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
		return
	}

	_ = p.exec(func() {
		if !p.isSameHolding(ticker, incarnation) {
			slog.Debug("historical data dropped, holding is gone", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
			return
		}

		holding, _ := p.registry.Get(ticker)
		holding.HistoricalData = points
		p.registry.Insert(ticker, holding, true)
	})
}

// isSameHolding reports whether ticker is still present with the given incarnation.
// Loop only.
func (p *Portfolio) isSameHolding(ticker string, incarnation uint64) bool {
	current, ok := p.registry.Incarnation(ticker)
	return ok && current == incarnation
}
