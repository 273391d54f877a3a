package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_builder/config"
	"github.com/KotFed0t/portfolio_builder/internal/model"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func quoteKey(ticker string) string {
	return fmt.Sprintf("quote:%s", ticker)
}

func historicalKey(ticker string, startDate time.Time, interval model.Interval) string {
	// ключ по дню, чтобы повторные запросы в течение дня попадали в кэш
	return fmt.Sprintf("historical:%s:%s:%s", ticker, startDate.UTC().Format(time.DateOnly), interval)
}

func (r *RedisCache) SetQuote(ctx context.Context, quote model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetQuote", slog.String("rqID", rqID), slog.String("ticker", quote.Ticker))

	quoteJson, err := json.Marshal(quote)
	if err != nil {
		slog.Error("can't marshall quote in SetQuote", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Any("quote", quote))
		return errors.New("can't marshall quote")
	}

	err = r.redis.Set(ctx, quoteKey(quote.Ticker), quoteJson, r.cfg.Cache.QuoteExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuote completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID))

	res, err := r.redis.Get(ctx, quoteKey(ticker)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", quoteKey(ticker)))
		}
		return model.Quote{}, err
	}

	quote := model.Quote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshall quote in GetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Quote{}, errors.New("can't unmarshall quote")
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID))

	return quote, nil
}

func (r *RedisCache) SetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval, points []model.PricePoint) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	key := historicalKey(ticker, startDate, interval)

	pointsJson, err := json.Marshal(points)
	if err != nil {
		slog.Error("can't marshall points in SetHistorical", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshall historical points")
	}

	err = r.redis.Set(ctx, key, pointsJson, r.cfg.Cache.HistoricalExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	return nil
}

func (r *RedisCache) GetHistorical(ctx context.Context, ticker string, startDate time.Time, interval model.Interval) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	key := historicalKey(ticker, startDate, interval)

	res, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		}
		return nil, err
	}

	points := make([]model.PricePoint, 0)
	err = json.Unmarshal(res, &points)
	if err != nil {
		slog.Error("can't unmarshall historical points", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, errors.New("can't unmarshall historical points")
	}

	return points, nil
}
