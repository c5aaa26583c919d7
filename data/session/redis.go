// Package session stores each browser session's uploaded holdings table in
// redis with a TTL. This is the only state that outlives a request; the
// table itself is never persisted anywhere else.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/internal/model"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

var ErrNotFound = errors.New("session not found")

type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func sessionKey(id string) string { return "session:" + id }

func (s *RedisSession) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisSession.GetSession"

	res, err := s.redis.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	sess := model.Session{}
	if err := json.Unmarshal([]byte(res), &sess); err != nil {
		slog.Error("can't unmarshal session", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	return sess, nil
}

func (s *RedisSession) SetSession(ctx context.Context, sessionID string, sess model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisSession.SetSession"

	payload, err := json.Marshal(sess)
	if err != nil {
		slog.Error("can't marshal session", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKey(sessionID), payload, s.cfg.SessionExpiration).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
