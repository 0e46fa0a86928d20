package flight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

func TestOfferCache_Keys_Closure(t *testing.T) {
	keyRequest := func(got, want string) func(t *testing.T) {
		return func(t *testing.T) {
			if got != want {
				t.Fatalf("expected %s, got %s", want, got)
			}
		}
	}

	c := &OfferCache{}
	req := dto.NewSearchCriteria("PARI", "ROME", "2025-06-01")

	t.Run("cache_key", keyRequest(c.GetCacheKey(req), "flight:cache:2025-06-01:PARI:ROME:economy:1"))
	t.Run("lock_key", keyRequest(c.GetLockKey("t_plus_6", "2025-06-01"), "crawl:lock:t_plus_6:2025-06-01"))
}

func TestOfferCache_AcquireLock_Closure(t *testing.T) {
	acquireLockRequest := func(key string, timeout time.Duration, mockSetup func(m *MockRedisClient), want bool) func(t *testing.T) {
		return func(t *testing.T) {
			m := NewMockRedisClient(t)
			mockSetup(m)
			c := NewOfferCache(m)

			got, err := c.AcquireLock(context.Background(), key, timeout)
			if err != nil {
				t.Fatalf("AcquireLock returned error: %v", err)
			}
			if got != want {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	}

	t.Run("lock_acquired", acquireLockRequest("test-key", 5*time.Second, func(m *MockRedisClient) {
		m.On("SetNX", mock.Anything, "test-key", "1", 5*time.Second).Return(redis.NewBoolResult(true, nil))
	}, true))

	t.Run("lock_not_acquired", acquireLockRequest("test-key", 5*time.Second, func(m *MockRedisClient) {
		m.On("SetNX", mock.Anything, "test-key", "1", 5*time.Second).Return(redis.NewBoolResult(false, nil))
	}, false))
}

func TestOfferCache_ReleaseLock(t *testing.T) {
	m := NewMockRedisClient(t)
	m.On("Del", mock.Anything, []string{"test-key"}).Return(redis.NewIntResult(1, nil))

	if err := NewOfferCache(m).ReleaseLock(context.Background(), "test-key"); err != nil {
		t.Fatalf("ReleaseLock returned error: %v", err)
	}
}

func TestOfferCache_SetOffers_Closure(t *testing.T) {
	setOffersRequest := func(key string, itineraries []dto.Itinerary, exp time.Duration, mockSetup func(m *MockRedisClient), wantErr bool) func(t *testing.T) {
		return func(t *testing.T) {
			m := NewMockRedisClient(t)
			mockSetup(m)
			c := NewOfferCache(m)

			err := c.SetOffers(context.Background(), key, itineraries, exp)
			if (err != nil) != wantErr {
				t.Fatalf("SetOffers error = %v, wantErr %v", err, wantErr)
			}
		}
	}

	t.Run("success", setOffersRequest("test-cache", []dto.Itinerary{{PriceAmount: 120}}, 10*time.Minute, func(m *MockRedisClient) {
		m.On("Set", mock.Anything, "test-cache", mock.Anything, 10*time.Minute).Return(redis.NewStatusResult("OK", nil))
	}, false))

	t.Run("nil_stored_as_empty_list", setOffersRequest("test-cache", nil, time.Minute, func(m *MockRedisClient) {
		m.On("Set", mock.Anything, "test-cache", []byte("[]"), time.Minute).Return(redis.NewStatusResult("OK", nil))
	}, false))

	t.Run("redis_down", setOffersRequest("test-cache", nil, time.Minute, func(m *MockRedisClient) {
		m.On("Set", mock.Anything, "test-cache", mock.Anything, time.Minute).Return(redis.NewStatusResult("", errors.New("connection refused")))
	}, true))
}

func TestOfferCache_GetOffers_Closure(t *testing.T) {
	getOffersRequest := func(key string, mockSetup func(m *MockRedisClient), want []dto.Itinerary, wantErr bool) func(t *testing.T) {
		return func(t *testing.T) {
			m := NewMockRedisClient(t)
			mockSetup(m)
			c := NewOfferCache(m)

			got, err := c.GetOffers(context.Background(), key)
			if (err != nil) != wantErr {
				t.Fatalf("GetOffers error = %v, wantErr %v", err, wantErr)
			}
			if !wantErr {
				diff := cmp.Diff(want, got)
				if diff != "" {
					t.Fatalf("GetOffers mismatch (-want +got):\n%s", diff)
				}
			}
		}
	}

	t.Run("success", getOffersRequest("test-cache", func(m *MockRedisClient) {
		m.On("Get", mock.Anything, "test-cache").Return(redis.NewStringResult(`[{"price_amount":120,"carrier":"ITA Airways"}]`, nil))
	}, []dto.Itinerary{{PriceAmount: 120, Carrier: "ITA Airways"}}, false))

	t.Run("cached_empty_answer", getOffersRequest("test-cache", func(m *MockRedisClient) {
		m.On("Get", mock.Anything, "test-cache").Return(redis.NewStringResult(`[]`, nil))
	}, []dto.Itinerary{}, false))

	t.Run("cache_miss", getOffersRequest("test-cache", func(m *MockRedisClient) {
		m.On("Get", mock.Anything, "test-cache").Return(redis.NewStringResult("", redis.Nil))
	}, nil, true))
}
