package portfolioService

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_builder/data/localStorage"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/utils"
)

// persistenceBridge mirrors the registry projection to local storage.
type persistenceBridge struct {
	owner   string
	storage LocalStorage
	timeout time.Duration
}

func newPersistenceBridge(owner string, storage LocalStorage, timeout time.Duration) *persistenceBridge {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &persistenceBridge{owner: owner, storage: storage, timeout: timeout}
}

// Sync replaces the stored record with items. Called from the portfolio loop after every
// registry mutation; failures are logged and never roll the mutation back.
func (b *persistenceBridge) Sync(items []model.PortfolioItem) {
	ctx, cancel := context.WithTimeout(utils.WithRequestID(context.Background(), ""), b.timeout)
	defer cancel()

	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "persistenceBridge.Sync"

	data, err := json.Marshal(items)
	if err != nil {
		slog.Error("can't marshall portfolio items", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return
	}

	err = b.storage.SetHoldings(ctx, b.owner, data)
	if err != nil {
		slog.Error("got error from storage.SetHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("owner", b.owner), slog.String("err", err.Error()))
		return
	}

	slog.Debug("holdings persisted", slog.String("rqID", rqID), slog.String("op", op), slog.String("owner", b.owner), slog.Int("items", len(items)))
}

// Load reads the stored projection. Absent or unparseable storage is an empty portfolio.
func (b *persistenceBridge) Load(ctx context.Context) []model.PortfolioItem {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "persistenceBridge.Load"

	data, err := b.storage.GetHoldings(ctx, b.owner)
	if err != nil {
		if !errors.Is(err, localStorage.ErrNotFound) {
			slog.Warn("can't read stored holdings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return nil
	}

	items := make([]model.PortfolioItem, 0)
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("stored holdings are not parseable", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil
	}

	return items
}

// Rehydrate replays stored holdings through AddQuote so prices are always fetched fresh.
// It returns the number of replayed items; the replay itself runs in background.
func (p *Portfolio) Rehydrate(ctx context.Context) int {
	items := p.persistence.Load(ctx)
	p.replay(ctx, items)
	return len(items)
}

func (p *Portfolio) replay(ctx context.Context, items []model.PortfolioItem) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Portfolio.replay"

	bgCtx := context.WithoutCancel(ctx)
	for _, item := range items {
		p.background(func() {
			err := p.AddQuote(bgCtx, item.Ticker, item.PortfolioPercentage, true)
			if err != nil {
				slog.Warn("can't replay holding", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", item.Ticker), slog.String("err", err.Error()))
			}
		})
	}
}
