package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/obesity-check/pkg/common/config"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
)

// OpenRedis connects to the prediction cache and pings it once.
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.WithField("addr", client.Options().Addr).Info("Connected to Redis")
	return client, nil
}
