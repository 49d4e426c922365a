package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JTL-Inc/guestlist/internal/platform/config"
	goredis "github.com/redis/go-redis/v9"
)

type Redis struct {
	Client *goredis.Client
}

func NewRedisConnection(ctx context.Context, cfg config.Config) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	slog.Info("redis connection established", slog.String("addr", cfg.Redis.Addr))
	return &Redis{Client: client}, nil
}

func (r *Redis) Close() {
	if r.Client != nil {
		if err := r.Client.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			return
		}
		slog.Info("redis connection closed")
	}
}
