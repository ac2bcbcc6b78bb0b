package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis creates a new Redis client.
// Returns nil if redisURL is empty; Redis only backs the optional dimension cache.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		log.Debug().Msg("Redis URL not configured, using in-memory dimension cache")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	opt.PoolSize = 4
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		return nil, err
	}

	log.Debug().Msg("Connected to Redis")
	return client, nil
}

// CloseRedis closes the Redis connection
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Redis connection")
	}
}
