package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thrivenig/travelbook/config"
	"github.com/thrivenig/travelbook/internal/domain"
)

// RedisCache is a read-through cache for search results, keyed by the search
// tuple. A miss returns (nil, nil).
type RedisCache struct {
	client    *redis.Client
	offersTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, offersTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		offersTTL: offersTTL,
	}
}

func (c *RedisCache) GetOffers(ctx context.Context, key string) ([]domain.Offer, error) {
	data, err := c.client.Get(ctx, offersKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var offers []domain.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *RedisCache) SetOffers(ctx context.Context, key string, offers []domain.Offer) error {
	payload, err := json.Marshal(offers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, offersKey(key), payload, c.offersTTL).Err()
}

func offersKey(key string) string {
	return fmt.Sprintf("cache:offers:%s", key)
}
