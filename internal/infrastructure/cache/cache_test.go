package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pozinox/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSequence struct{}

func (fixedSequence) Next(context.Context, time.Time) (int64, error) { return 42, nil }

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisOrderSequence_Next(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredisClient(t)
	seq := NewRedisOrderSequence(client)
	day := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	t.Run("increments per day", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := seq.Next(ctx, day)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		got, err := seq.Next(ctx, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("key expires after two days", func(t *testing.T) {
		key := "pozinox:order_seq:20240501"
		assert.True(t, mr.Exists(key))
		assert.Equal(t, 48*time.Hour, mr.TTL(key))
	})

	t.Run("concurrent callers get distinct values", func(t *testing.T) {
		other := day.AddDate(0, 0, 7)
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = map[int64]bool{}
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := seq.Next(ctx, other)
				assert.NoError(t, err)
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 20)
	})

	t.Run("reports connection errors", func(t *testing.T) {
		mr.Close()
		_, err := seq.Next(ctx, day)
		assert.Error(t, err)
	})
}

func TestOrderSequenceFactory_Create(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniredisClient(t)

	t.Run("database backend", func(t *testing.T) {
		seq, err := NewOrderSequenceFactory(SequenceBackendDatabase, fixedSequence{}).Create()
		require.NoError(t, err)
		v, err := seq.Next(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(42), v)
	})

	t.Run("redis backend", func(t *testing.T) {
		seq, err := NewOrderSequenceFactory(SequenceBackendRedis, fixedSequence{}, WithRedisClient(client)).Create()
		require.NoError(t, err)
		assert.IsType(t, &RedisOrderSequence{}, seq)
	})

	t.Run("redis backend without client", func(t *testing.T) {
		_, err := NewOrderSequenceFactory(SequenceBackendRedis, fixedSequence{}).Create()
		assert.Error(t, err)

		seq, err := NewOrderSequenceFactory(SequenceBackendRedis, fixedSequence{}, WithDatabaseFallback(true)).Create()
		require.NoError(t, err)
		assert.Equal(t, fixedSequence{}, seq)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewOrderSequenceFactory("memory", fixedSequence{}).Create()
		assert.Error(t, err)
	})
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Server().Addr().Port

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}
