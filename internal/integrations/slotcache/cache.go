// Package slotcache кэширует занятые слоты объекта на дату в Redis.
// Все ошибки Redis возвращаются вызывающему, который работает без кэша (fail-open).
package slotcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "booked_slots"

// ErrCache возвращается при ошибках обращения к Redis
var ErrCache = errors.New("slotcache: redis error")

// Cache кэш занятых слотов
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// New создает кэш поверх клиента Redis
func New(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get возвращает занятые слоты; found=false при промахе
func (c *Cache) Get(ctx context.Context, facilityID int64, date time.Time) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, Key(facilityID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %v", ErrCache, err)
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("%w: decode: %v", ErrCache, err)
	}

	return slots, true, nil
}

// Set сохраняет занятые слоты
func (c *Cache) Set(ctx context.Context, facilityID int64, date time.Time, slots []string) error {
	if slots == nil {
		slots = []string{}
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrCache, err)
	}

	if err := c.client.Set(ctx, Key(facilityID, date), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrCache, err)
	}

	return nil
}

// Invalidate удаляет запись, вызывается после создания и отмены бронирования
func (c *Cache) Invalidate(ctx context.Context, facilityID int64, date time.Time) error {
	if err := c.client.Del(ctx, Key(facilityID, date)).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", ErrCache, err)
	}
	return nil
}

// Key возвращает ключ записи: booked_slots:<facility>:<YYYY-MM-DD>
func Key(facilityID int64, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, facilityID, date.Format("2006-01-02"))
}
