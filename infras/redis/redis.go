package redis

import (
	"context"
	"fmt"
	"net"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cnpgdemo/config"
)

// New connects to Redis when the rate limiter needs it. With the limiter off
// it returns a nil client and nothing dials Redis.
func New(config *config.Config) (*goRedis.Client, func(), error) {
	if !config.App.RateLimiter.Enable {
		return nil, func() {}, nil
	}

	primary := config.Cache.Redis.Primary

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		_ = client.Close()

		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().
		Int("db", primary.DB).
		Str("host", primary.Host).
		Str("port", primary.Port).
		Msg("Connected to Redis")

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	}

	return client, cleanup, nil
}
