package slotcache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "booked_slots:1:2025-01-10", Key(1, date))
}

// unreachableCache указывает на закрытый порт, каждая команда завершается ошибкой
func unreachableCache() *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return New(client, time.Minute)
}

func TestCache_ErrorsAreReported(t *testing.T) {
	c := unreachableCache()
	ctx := context.Background()
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	_, found, err := c.Get(ctx, 1, date)
	assert.ErrorIs(t, err, ErrCache)
	assert.False(t, found)

	assert.ErrorIs(t, c.Set(ctx, 1, date, []string{"07:00 - 08:00"}), ErrCache)
	assert.ErrorIs(t, c.Invalidate(ctx, 1, date), ErrCache)
}

func TestNewClient_Unreachable(t *testing.T) {
	client, err := NewClient(context.Background(), Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})

	assert.Error(t, err)
	assert.Nil(t, client)
}
