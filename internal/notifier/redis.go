package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pcclub/internal/config"
)

// RedisNotifier delivers events to connected clients by publishing on a
// Redis channel. The websocket fan-out process subscribes on the other side.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Deliver(ctx context.Context, payload []byte) error {
	if n.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
