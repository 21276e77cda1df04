package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"transfer/internal/domain"
)

const rateTableKey = "cache:currency:rates"

// RateCacheStore shares the currency rate table between service instances.
type RateCacheStore struct {
	client *redis.Client
}

// NewRateCacheStore creates a new RateCacheStore.
func NewRateCacheStore(client *redis.Client) *RateCacheStore {
	return &RateCacheStore{client: client}
}

// cachedRate is the JSON form of a currency rate.
type cachedRate struct {
	Code       string    `json:"code"`
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	RateToBase float64   `json:"rate_to_base"`
	Active     bool      `json:"active"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// cachedRateTable is what is stored under rateTableKey.
type cachedRateTable struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Rates     []cachedRate `json:"rates"`
}

// GetRates returns the shared rate table and the time it was fetched.
// A cache miss returns nil rates and no error.
func (s *RateCacheStore) GetRates(ctx context.Context) ([]domain.CurrencyRate, time.Time, error) {
	data, err := s.client.Get(ctx, rateTableKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, nil // Cache miss
		}
		return nil, time.Time{}, err
	}

	var table cachedRateTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, time.Time{}, err
	}

	rates := make([]domain.CurrencyRate, 0, len(table.Rates))
	for _, r := range table.Rates {
		rates = append(rates, domain.CurrencyRate{
			Code:       r.Code,
			Symbol:     r.Symbol,
			Name:       r.Name,
			RateToBase: r.RateToBase,
			Active:     r.Active,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return rates, table.FetchedAt, nil
}

// SetRates stores the rate table until ttl elapses.
func (s *RateCacheStore) SetRates(ctx context.Context, rates []domain.CurrencyRate, fetchedAt time.Time, ttl time.Duration) error {
	table := cachedRateTable{FetchedAt: fetchedAt, Rates: make([]cachedRate, 0, len(rates))}
	for _, r := range rates {
		table.Rates = append(table.Rates, cachedRate{
			Code:       r.Code,
			Symbol:     r.Symbol,
			Name:       r.Name,
			RateToBase: r.RateToBase,
			Active:     r.Active,
			UpdatedAt:  r.UpdatedAt,
		})
	}

	data, err := json.Marshal(table)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rateTableKey, data, ttl).Err()
}

// InvalidateRates removes the shared rate table.
func (s *RateCacheStore) InvalidateRates(ctx context.Context) error {
	return s.client.Del(ctx, rateTableKey).Err()
}
