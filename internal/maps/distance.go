package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"transfer/internal/config"
	"transfer/internal/domain"
)

// DistanceService resolves driving distances through the Distance Matrix API.
type DistanceService struct {
	client   *maps.Client
	language string
}

// NewDistanceService creates a new DistanceService.
func NewDistanceService(client *maps.Client, cfg config.MapsConfig) *DistanceService {
	return &DistanceService{client: client, language: cfg.Language}
}

// Distance returns the driving distance and duration between two points.
func (s *DistanceService) Distance(ctx context.Context, from, to domain.Point) (domain.TravelEstimate, error) {
	seg := startSegment(ctx, "DistanceMatrix")
	defer endSegment(seg)

	r := &maps.DistanceMatrixRequest{
		Origins:      []string{formatLatLng(from.Lat, from.Lng)},
		Destinations: []string{formatLatLng(to.Lat, to.Lng)},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
		Language:     s.language,
	}

	resp, err := s.client.DistanceMatrix(ctx, r)
	if err != nil {
		return domain.TravelEstimate{}, fmt.Errorf("distance matrix api error: %w", err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return domain.TravelEstimate{}, fmt.Errorf("no route found")
	}

	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return domain.TravelEstimate{}, fmt.Errorf("no route found: %s", el.Status)
	}

	return domain.TravelEstimate{
		DistanceKm:      float64(el.Distance.Meters) / 1000,
		DurationMinutes: el.Duration.Minutes(),
		Source:          domain.DistanceSourceProvider,
	}, nil
}
