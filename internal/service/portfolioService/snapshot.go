package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_builder/data/repository"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/service"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/google/uuid"
)

// CreateSnapshot stores the current projection under a fresh key and returns the key
// together with a shareable link.
func (p *Portfolio) CreateSnapshot(ctx context.Context) (key string, link string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Portfolio.CreateSnapshot"

	slog.Debug("CreateSnapshot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("owner", p.owner))

	var items []model.PortfolioItem
	if err := p.exec(func() {
		items = p.registry.Projection()
	}); err != nil {
		return "", "", err
	}

	key = uuid.NewString()
	err = p.svc.snapshots.PutSnapshot(ctx, key, items)
	if err != nil {
		slog.Error("got error from snapshots.PutSnapshot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", "", fmt.Errorf("%w: %v", service.ErrStoreUnavailable, err)
	}

	slog.Info("snapshot created", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key), slog.Int("items", len(items)))

	return key, p.svc.shareLink(key), nil
}

// LoadSnapshot reads the snapshot stored under key and replays every item through AddQuote.
// On failure the portfolio is left unchanged.
func (p *Portfolio) LoadSnapshot(ctx context.Context, key string) ([]model.PortfolioItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Portfolio.LoadSnapshot"

	slog.Debug("LoadSnapshot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))

	items, err := p.svc.snapshots.GetSnapshot(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: snapshot %s", service.ErrNotFound, key)
		}
		slog.Error("got error from snapshots.GetSnapshot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %v", service.ErrStoreUnavailable, err)
	}

	p.replay(ctx, items)

	return items, nil
}
