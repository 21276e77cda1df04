package redis

import (
	"context"
	"time"

	"transfer/internal/domain"
)

// RateCacheInterface defines the shared currency rate table operations.
type RateCacheInterface interface {
	GetRates(ctx context.Context) ([]domain.CurrencyRate, time.Time, error)
	SetRates(ctx context.Context, rates []domain.CurrencyRate, fetchedAt time.Time, ttl time.Duration) error
	InvalidateRates(ctx context.Context) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireRefreshLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseRefreshLock(ctx context.Context, name, token string) error
}

// AirportStoreInterface defines the interface for airport geo lookups.
type AirportStoreInterface interface {
	UpsertAirport(ctx context.Context, code string, lat, lng float64) error
	FindNearbyAirports(ctx context.Context, lat, lng, radiusKm float64) ([]AirportLocation, error)
	RemoveAirport(ctx context.Context, code string) error
}

// DistanceCacheInterface defines the interface for cached travel estimates.
type DistanceCacheInterface interface {
	GetDistance(ctx context.Context, from, to domain.Point) (*domain.TravelEstimate, error)
	SetDistance(ctx context.Context, from, to domain.Point, estimate domain.TravelEstimate) error
}

// Ensure concrete types implement interfaces.
var (
	_ RateCacheInterface     = (*RateCacheStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ AirportStoreInterface  = (*AirportStore)(nil)
	_ DistanceCacheInterface = (*DistanceCacheStore)(nil)
)
