package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/redis/go-redis/v9"
)

const (
	orderSequenceKeyPrefix = "pozinox:order_seq:"
	// Keys outlive their day so a request straddling midnight still increments the right counter
	orderSequenceTTL = 48 * time.Hour
)

// RedisOrderSequence issues per-day order numbers with INCR.
// INCR is atomic, so concurrent instances never share a value.
type RedisOrderSequence struct {
	client *redis.Client
}

// NewRedisOrderSequence creates a new RedisOrderSequence
func NewRedisOrderSequence(client *redis.Client) *RedisOrderSequence {
	return &RedisOrderSequence{client: client}
}

// Next returns the next sequence value for day, starting at 1
func (s *RedisOrderSequence) Next(ctx context.Context, day time.Time) (int64, error) {
	key := orderSequenceKeyPrefix + day.Format("20060102")

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, orderSequenceTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reserve order number: %w", err)
	}
	return incr.Val(), nil
}

// Ensure RedisOrderSequence implements OrderSequence
var _ trade.OrderSequence = (*RedisOrderSequence)(nil)
