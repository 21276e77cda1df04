package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"transfer/internal/domain"
	"transfer/internal/logger"
	"transfer/internal/redis"
)

const (
	// RoadDistortionFactor inflates straight-line distance to approximate road distance.
	RoadDistortionFactor = 1.3

	// fallbackMinutesPerKm is the duration estimate used when the provider cannot answer.
	fallbackMinutesPerKm = 1.5

	defaultDistanceTimeout = 3 * time.Second
)

// DistanceProvider is the external mapping collaborator.
type DistanceProvider interface {
	Distance(ctx context.Context, from, to domain.Point) (domain.TravelEstimate, error)
}

// DistanceResolver turns two points into a distance and travel time.
// It prefers the provider and falls back to a haversine estimate.
type DistanceResolver struct {
	provider DistanceProvider
	cache    redis.DistanceCacheInterface
	timeout  time.Duration
	log      *logger.Logger
}

// NewDistanceResolver creates a new DistanceResolver. provider and cache may be nil.
func NewDistanceResolver(provider DistanceProvider, cache redis.DistanceCacheInterface, timeout time.Duration, log *logger.Logger) *DistanceResolver {
	if timeout <= 0 {
		timeout = defaultDistanceTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &DistanceResolver{
		provider: provider,
		cache:    cache,
		timeout:  timeout,
		log:      log,
	}
}

// Resolve returns the travel estimate between from and to. It never fails for
// valid coordinates: provider errors and timeouts degrade to EstimateDistance.
func (r *DistanceResolver) Resolve(ctx context.Context, from, to domain.Point) domain.TravelEstimate {
	if r.cache != nil {
		cached, err := r.cache.GetDistance(ctx, from, to)
		if err != nil {
			r.log.WithError(err).Debug("distance cache read failed")
		} else if cached != nil {
			return *cached
		}
	}

	if r.provider == nil {
		return EstimateDistance(from, to)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	estimate, err := r.provider.Distance(lookupCtx, from, to)
	if err != nil || estimate.DistanceKm < 0 {
		r.log.WithError(err).WithFields(logrus.Fields{
			"from": from,
			"to":   to,
		}).Warn("distance lookup failed, using fallback estimate")
		return EstimateDistance(from, to)
	}
	estimate.Source = domain.DistanceSourceProvider

	if r.cache != nil {
		if err := r.cache.SetDistance(ctx, from, to, estimate); err != nil {
			r.log.WithError(err).Debug("failed to cache distance")
		}
	}

	return estimate
}

// EstimateDistance is the deterministic fallback: haversine distance times the
// road distortion factor, and 1.5 minutes per kilometer.
func EstimateDistance(from, to domain.Point) domain.TravelEstimate {
	km := HaversineKm(from, to) * RoadDistortionFactor
	return domain.TravelEstimate{
		DistanceKm:      km,
		DurationMinutes: km * fallbackMinutesPerKm,
		Source:          domain.DistanceSourceEstimate,
	}
}

// ClientDistance builds an estimate from a distance supplied by the caller.
func ClientDistance(km float64) domain.TravelEstimate {
	return domain.TravelEstimate{
		DistanceKm:      km,
		DurationMinutes: km * fallbackMinutesPerKm,
		Source:          domain.DistanceSourceClient,
	}
}
