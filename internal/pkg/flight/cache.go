package flight

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/redis/go-redis/v9"
)

type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// OfferCache keeps provider itineraries per query and guards crawl runs with a
// lock so two processes never write the same artifacts.
type OfferCache struct {
	redis RedisClient
}

func NewOfferCache(redis RedisClient) *OfferCache {
	return &OfferCache{
		redis: redis,
	}
}

func (c *OfferCache) GetLockKey(tag, crawlingDate string) string {
	return fmt.Sprintf("crawl:lock:%s:%s", tag, crawlingDate)
}

func (c *OfferCache) GetCacheKey(req dto.SearchCriteria) string {
	return fmt.Sprintf("flight:cache:%s:%s:%s:%s:%d",
		req.DepartureDate, req.Origin, req.Destination, req.CabinClass, req.Adults)
}

func (c *OfferCache) AcquireLock(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	return c.redis.SetNX(ctx, key, "1", timeout).Result()
}

func (c *OfferCache) ReleaseLock(ctx context.Context, key string) error {
	return c.redis.Del(ctx, key).Err()
}

// SetOffers stores itineraries under key. An empty slice is stored as "[]" and
// read back as a valid empty answer.
func (c *OfferCache) SetOffers(ctx context.Context,
	key string,
	itineraries []dto.Itinerary,
	expiration time.Duration,
) error {
	if itineraries == nil {
		itineraries = []dto.Itinerary{}
	}

	data, err := json.Marshal(itineraries)
	if err != nil {
		return fmt.Errorf("failed to marshal itineraries: %w", err)
	}

	err = c.redis.Set(ctx, key, data, expiration).Err()
	if err != nil {
		return fmt.Errorf("failed to set itineraries: %w", err)
	}

	return nil
}

// GetOffers returns redis.Nil on a cache miss.
func (c *OfferCache) GetOffers(ctx context.Context, key string) ([]dto.Itinerary, error) {

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var itineraries []dto.Itinerary
	if err := json.Unmarshal(data, &itineraries); err != nil {
		return nil, err
	}

	return itineraries, nil
}
