package service

import (
	"context"

	"transfer/internal/config"
	"transfer/internal/domain"
	"transfer/internal/logger"
	"transfer/internal/redis"
)

// AirportClassifier decides whether a point is at a known airport.
type AirportClassifier struct {
	store    redis.AirportStoreInterface
	radiusKm float64
	log      *logger.Logger
}

// NewAirportClassifier creates a new AirportClassifier.
func NewAirportClassifier(store redis.AirportStoreInterface, radiusKm float64, log *logger.Logger) *AirportClassifier {
	if log == nil {
		log = logger.Discard()
	}
	return &AirportClassifier{store: store, radiusKm: radiusKm, log: log}
}

// Seed loads the configured airports into the geo index.
func (c *AirportClassifier) Seed(ctx context.Context, airports []config.AirportConfig) error {
	for _, a := range airports {
		if err := c.store.UpsertAirport(ctx, a.Code, a.Lat, a.Lng); err != nil {
			return err
		}
	}
	return nil
}

// IsAirport reports whether p lies within the airport radius of a known airport.
// Lookup errors count as "not an airport".
func (c *AirportClassifier) IsAirport(ctx context.Context, p domain.Point) bool {
	if c == nil || c.store == nil || c.radiusKm <= 0 {
		return false
	}
	near, err := c.store.FindNearbyAirports(ctx, p.Lat, p.Lng, c.radiusKm)
	if err != nil {
		c.log.WithError(err).Debug("airport lookup failed")
		return false
	}
	return len(near) > 0
}
