package feed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource consumes table deltas from a Redis pub/sub channel.
type RedisSource struct {
	client  *redis.Client
	channel string
}

// NewRedisSource parses a redis:// URL.
func NewRedisSource(url, channel string) (*RedisSource, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisSource{client: redis.NewClient(opts), channel: channel}, nil
}

func (r *RedisSource) Name() string {
	return "redis:" + r.channel
}

func (r *RedisSource) Run(ctx context.Context, sink Sink) error {
	defer r.client.Close()

	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis channel %s closed", r.channel)
			}
			Apply(r.Name(), []byte(msg.Payload), sink)
		}
	}
}
