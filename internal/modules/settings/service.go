// README: Settings service with a redis read-through cache. The service fee
// percentage is fetched once per product write; admin updates invalidate the
// cached value so the next write sees the new rate.
package settings

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyServiceFeePercentage = "service_fee_percentage"

	// DefaultServiceFeePercentage applies when the row is missing entirely.
	DefaultServiceFeePercentage = 10.00

	cacheKeyPrefix = "settings:"
	cacheTTL       = 5 * time.Minute
)

type Service struct {
	store *Store
	cache *redis.Client
}

func NewService(store *Store, cache *redis.Client) *Service {
	return &Service{store: store, cache: cache}
}

func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKeyPrefix+key).Result(); err == nil {
			return val, nil
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("settings cache read failed for %q: %v", key, err)
		}
	}
	val, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyPrefix+key, val, cacheTTL).Err(); err != nil {
			log.Printf("settings cache write failed for %q: %v", key, err)
		}
	}
	return val, nil
}

func (s *Service) Update(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, cacheKeyPrefix+key).Err(); err != nil {
			log.Printf("settings cache invalidation failed for %q: %v", key, err)
		}
	}
	return nil
}

func (s *Service) All(ctx context.Context) (map[string]string, error) {
	return s.store.All(ctx)
}

// ServiceFeePercentage falls back to the default when the setting is missing
// or unparseable, matching the catalog's tolerance for a half-seeded database.
func (s *Service) ServiceFeePercentage(ctx context.Context) float64 {
	val, err := s.Get(ctx, KeyServiceFeePercentage)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("service fee lookup failed: %v", err)
		}
		return DefaultServiceFeePercentage
	}
	pct, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return DefaultServiceFeePercentage
	}
	return pct
}
