// Package cache fronts the upstream market-data and news APIs with TTL
// caches so a dashboard reload does not burn upstream rate limits.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/internal/model/avModel"
	"github.com/mkuznec/portfolio_dashboard/internal/model/newsModel"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

const trackedTickersKey = "tickers:tracked"

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func quoteKey(ticker string) string   { return "quote:" + ticker }
func newsKey(ticker string) string    { return "news:" + ticker }
func historyKey(ticker string) string { return "history:" + ticker }

func (r *RedisCache) SetQuote(ctx context.Context, quote avModel.Quote) error {
	return r.setJSON(ctx, quoteKey(quote.Ticker), quote, "SetQuote")
}

func (r *RedisCache) GetQuote(ctx context.Context, ticker string) (avModel.Quote, error) {
	quote := avModel.Quote{}
	err := r.getJSON(ctx, quoteKey(ticker), &quote, "GetQuote")
	return quote, err
}

func (r *RedisCache) SetNews(ctx context.Context, ticker string, articles []newsModel.Article) error {
	return r.setJSON(ctx, newsKey(ticker), articles, "SetNews")
}

func (r *RedisCache) GetNews(ctx context.Context, ticker string) ([]newsModel.Article, error) {
	var articles []newsModel.Article
	err := r.getJSON(ctx, newsKey(ticker), &articles, "GetNews")
	return articles, err
}

func (r *RedisCache) SetDailyPrices(ctx context.Context, ticker string, points []avModel.PricePoint) error {
	return r.setJSON(ctx, historyKey(ticker), points, "SetDailyPrices")
}

func (r *RedisCache) GetDailyPrices(ctx context.Context, ticker string) ([]avModel.PricePoint, error) {
	var points []avModel.PricePoint
	err := r.getJSON(ctx, historyKey(ticker), &points, "GetDailyPrices")
	return points, err
}

// TrackTickers remembers tickers seen in uploads so the cache-refresh job
// knows what to warm.
func (r *RedisCache) TrackTickers(ctx context.Context, tickers []string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	members := make([]any, 0, len(tickers))
	for _, t := range tickers {
		members = append(members, t)
	}
	if len(members) == 0 {
		return nil
	}

	if err := r.redis.SAdd(ctx, trackedTickersKey, members...).Err(); err != nil {
		slog.Error("failed on redis.SAdd", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}
	return nil
}

func (r *RedisCache) TrackedTickers(ctx context.Context) ([]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	tickers, err := r.redis.SMembers(ctx, trackedTickersKey).Result()
	if err != nil {
		slog.Error("failed on redis.SMembers", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}
	return tickers, nil
}

func (r *RedisCache) setJSON(ctx context.Context, key string, value any, op string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	payload, err := json.Marshal(value)
	if err != nil {
		slog.Error("can't marshal cache value", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key), slog.String("err", err.Error()))
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := r.redis.Set(ctx, key, payload, r.expirationFor(key)).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (r *RedisCache) getJSON(ctx context.Context, key string, dest any, op string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(res), dest); err != nil {
		slog.Error("can't unmarshal cache value", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key), slog.String("err", err.Error()))
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}

	return nil
}

func (r *RedisCache) expirationFor(key string) time.Duration {
	switch {
	case strings.HasPrefix(key, "news:"):
		return r.cfg.Cache.NewsExpiration
	case strings.HasPrefix(key, "history:"):
		return r.cfg.Cache.HistoryExpiration
	default:
		return r.cfg.Cache.QuotesExpiration
	}
}
