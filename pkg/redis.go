package pkg

import (
	"context"
	"fmt"

	"github.com/learnhub/assignment-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the cache backing the assignment
// definition reads. The connection is verified up front so the caller
// can fall back to the no-op cache when Redis is absent.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}
