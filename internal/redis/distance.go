package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"transfer/internal/domain"
)

const distanceCachePrefix = "cache:distance:"

// DistanceCacheStore caches mapping service results per origin/destination pair.
type DistanceCacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDistanceCacheStore creates a new DistanceCacheStore.
func NewDistanceCacheStore(client *redis.Client, ttl time.Duration) *DistanceCacheStore {
	return &DistanceCacheStore{client: client, ttl: ttl}
}

// cachedDistance is the JSON form of a travel estimate.
type cachedDistance struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// distanceKey rounds coordinates to 5 decimal places (about 1 m).
func distanceKey(from, to domain.Point) string {
	return fmt.Sprintf("%s%.5f,%.5f:%.5f,%.5f", distanceCachePrefix, from.Lat, from.Lng, to.Lat, to.Lng)
}

// GetDistance returns a cached estimate. A cache miss returns nil and no error.
func (s *DistanceCacheStore) GetDistance(ctx context.Context, from, to domain.Point) (*domain.TravelEstimate, error) {
	data, err := s.client.Get(ctx, distanceKey(from, to)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached cachedDistance
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &domain.TravelEstimate{
		DistanceKm:      cached.DistanceKm,
		DurationMinutes: cached.DurationMinutes,
		Source:          domain.DistanceSourceProvider,
	}, nil
}

// SetDistance stores an estimate.
func (s *DistanceCacheStore) SetDistance(ctx context.Context, from, to domain.Point, estimate domain.TravelEstimate) error {
	data, err := json.Marshal(cachedDistance{
		DistanceKm:      estimate.DistanceKm,
		DurationMinutes: estimate.DurationMinutes,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, distanceKey(from, to), data, s.ttl).Err()
}
