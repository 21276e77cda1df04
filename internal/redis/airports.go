package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const airportLocationKey = "airports:locations"

// AirportLocation is a known airport position.
type AirportLocation struct {
	Code string
	Lat  float64
	Lng  float64
}

// AirportStore keeps known airports in a Redis GEO index.
type AirportStore struct {
	client *redis.Client
}

// NewAirportStore creates a new AirportStore.
func NewAirportStore(client *redis.Client) *AirportStore {
	return &AirportStore{client: client}
}

// UpsertAirport stores an airport position using GEOADD.
func (s *AirportStore) UpsertAirport(ctx context.Context, code string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, airportLocationKey, &redis.GeoLocation{
		Name:      code,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearbyAirports returns airports within the given radius (in kilometers), nearest first.
func (s *AirportStore) FindNearbyAirports(ctx context.Context, lat, lng, radiusKm float64) ([]AirportLocation, error) {
	results, err := s.client.GeoRadius(ctx, airportLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	airports := make([]AirportLocation, 0, len(results))
	for _, r := range results {
		airports = append(airports, AirportLocation{
			Code: r.Name,
			Lat:  r.Latitude,
			Lng:  r.Longitude,
		})
	}

	return airports, nil
}

// RemoveAirport removes an airport from the geo index.
func (s *AirportStore) RemoveAirport(ctx context.Context, code string) error {
	return s.client.ZRem(ctx, airportLocationKey, code).Err()
}
