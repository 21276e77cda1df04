package maps

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	"googlemaps.github.io/maps"

	"transfer/internal/config"
)

const mapsHost = "maps.googleapis.com"

// NewClient creates a Google Maps Platform client from configuration.
func NewClient(cfg config.MapsConfig) (*maps.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("maps api key is not configured")
	}

	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// startSegment opens a New Relic external segment when the context carries a transaction.
func startSegment(ctx context.Context, procedure string) *newrelic.ExternalSegment {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}
	return &newrelic.ExternalSegment{
		StartTime: txn.StartSegmentNow(),
		Host:      mapsHost,
		Procedure: procedure,
		Library:   "googlemaps",
	}
}

func endSegment(seg *newrelic.ExternalSegment) {
	if seg != nil {
		seg.End()
	}
}

func formatLatLng(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}
