package cache

import (
	"fmt"

	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sequence backends accepted by orders.sequence_backend
const (
	SequenceBackendDatabase = "database"
	SequenceBackendRedis    = "redis"
)

// OrderSequenceFactory picks the order number sequence for the configured backend
type OrderSequenceFactory struct {
	backend       string
	client        *redis.Client
	database      trade.OrderSequence
	logger        *zap.Logger
	allowFallback bool
}

// OrderSequenceFactoryOption is a functional option for configuring the factory
type OrderSequenceFactoryOption func(*OrderSequenceFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) OrderSequenceFactoryOption {
	return func(f *OrderSequenceFactory) {
		f.logger = logger
	}
}

// WithRedisClient provides the client used by the redis backend
func WithRedisClient(client *redis.Client) OrderSequenceFactoryOption {
	return func(f *OrderSequenceFactory) {
		f.client = client
	}
}

// WithDatabaseFallback controls whether the redis backend falls back to the
// database sequence when no Redis client is available. Default is false.
func WithDatabaseFallback(allow bool) OrderSequenceFactoryOption {
	return func(f *OrderSequenceFactory) {
		f.allowFallback = allow
	}
}

// NewOrderSequenceFactory creates a new factory. database is the table-backed sequence.
func NewOrderSequenceFactory(backend string, database trade.OrderSequence, opts ...OrderSequenceFactoryOption) *OrderSequenceFactory {
	f := &OrderSequenceFactory{
		backend:  backend,
		database: database,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the sequence for the configured backend
func (f *OrderSequenceFactory) Create() (trade.OrderSequence, error) {
	switch f.backend {
	case "", SequenceBackendDatabase:
		f.logger.Info("using database order sequence")
		return f.database, nil
	case SequenceBackendRedis:
		if f.client != nil {
			f.logger.Info("using Redis order sequence")
			return NewRedisOrderSequence(f.client), nil
		}
		if !f.allowFallback {
			return nil, fmt.Errorf("redis order sequence requires a Redis client")
		}
		f.logger.Warn("Redis unavailable, falling back to database order sequence")
		return f.database, nil
	default:
		return nil, fmt.Errorf("unknown order sequence backend %q", f.backend)
	}
}
