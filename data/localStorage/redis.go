package localStorage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_builder/config"
	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("error not found")

// RedisStorage keeps one record per owner with the serialized holdings projection.
type RedisStorage struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisStorage(redisClient *redis.Client, cfg *config.Config) *RedisStorage {
	return &RedisStorage{redis: redisClient, cfg: cfg}
}

func (r *RedisStorage) key(owner string) string {
	return r.cfg.LocalStorage.KeyPrefix + ":" + owner
}

func (r *RedisStorage) GetHoldings(ctx context.Context, owner string) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStorage.GetHoldings"
	slog.Debug("GetHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.String("owner", owner))

	res, err := r.redis.Get(ctx, r.key(owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("GetHoldings finished", slog.String("rqID", rqID), slog.String("op", op))

	return res, nil
}

func (r *RedisStorage) SetHoldings(ctx context.Context, owner string, data []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStorage.SetHoldings"

	// без expiration: хранилище должно переживать рестарты
	err := r.redis.Set(ctx, r.key(owner), data, 0).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
