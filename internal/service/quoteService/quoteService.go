package quoteService

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_builder/internal/externalApi"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/internal/service"
	"github.com/KotFed0t/portfolio_builder/utils"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
	GetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval) ([]model.PricePoint, error)
}

type Cache interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
	SetQuote(ctx context.Context, quote model.Quote) error
	GetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval) ([]model.PricePoint, error)
	SetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval, points []model.PricePoint) error
}

// QuoteService serves quotes and historical series, cache first.
type QuoteService struct {
	api   QuoteApi
	cache Cache
}

func New(api QuoteApi, cache Cache) *QuoteService {
	return &QuoteService{api: api, cache: cache}
}

func (s *QuoteService) GetQuote(ctx context.Context, ticker string) (quote model.Quote, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteService.GetQuote"

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("GetQuote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	quote, err = s.cache.GetQuote(ctx, ticker)
	if err == nil {
		return quote, nil
	}

	slog.Debug("can't get quote from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	return s.fetchQuote(ctx, ticker)
}

// RefreshQuote skips the cache read and always asks the api, the fresh quote is cached.
func (s *QuoteService) RefreshQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteService.RefreshQuote"

	slog.Debug("RefreshQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	return s.fetchQuote(ctx, ticker)
}

func (s *QuoteService) fetchQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteService.fetchQuote"

	quote, err := s.api.GetQuote(ctx, ticker)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("quote not found in quote api", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
			return model.Quote{}, service.ErrNotFound
		}
		slog.Error("can't get quote from quote api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	if quote.IsEmpty() {
		return model.Quote{}, service.ErrNotFound
	}

	// кэшируем под тикером из запроса, api может вернуть его в другом регистре
	quote.Ticker = ticker
	if err := s.cache.SetQuote(ctx, quote); err != nil {
		slog.Warn("can't save quote to cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return quote, nil
}

func (s *QuoteService) GetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteService.GetHistorical"

	slog.Debug("GetHistorical start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("interval", string(interval)))

	points, err := s.cache.GetHistorical(ctx, ticker, startDate, interval)
	if err == nil {
		return points, nil
	}

	points, err = s.api.GetHistorical(ctx, ticker, startDate, interval)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		slog.Error("can't get historical data from quote api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if err := s.cache.SetHistorical(ctx, ticker, startDate, interval, points); err != nil {
		slog.Warn("can't save historical data to cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return points, nil
}
