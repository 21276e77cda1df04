package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"transfer/internal/config"
	"transfer/internal/domain"
)

// PlacesService handles place search and resolution through the Places API.
type PlacesService struct {
	client   *maps.Client
	country  string
	language string
}

// NewPlacesService creates a new PlacesService.
func NewPlacesService(client *maps.Client, cfg config.MapsConfig) *PlacesService {
	country := cfg.Region
	if strings.EqualFold(country, "uk") {
		country = "gb" // Places components use ISO 3166 codes.
	}
	return &PlacesService{client: client, country: country, language: cfg.Language}
}

// Autocomplete returns place suggestions for partial input.
func (s *PlacesService) Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	seg := startSegment(ctx, "PlaceAutocomplete")
	defer endSegment(seg)

	r := &maps.PlaceAutocompleteRequest{
		Input:    input,
		Language: s.language,
	}
	if s.country != "" {
		r.Components = map[maps.Component][]string{maps.ComponentCountry: {s.country}}
	}

	resp, err := s.client.PlaceAutocomplete(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	suggestions := make([]domain.PlaceSuggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		suggestions = append(suggestions, domain.PlaceSuggestion{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
			IsAirport:     hasAirportType(p.Types),
		})
	}
	return suggestions, nil
}

// Resolve returns the location of a place ID.
func (s *PlacesService) Resolve(ctx context.Context, placeID string) (*domain.Place, error) {
	seg := startSegment(ctx, "PlaceDetails")
	defer endSegment(seg)

	r := &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: s.language,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskName,
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometry,
			maps.PlaceDetailsFieldMaskTypes,
		},
	}

	res, err := s.client.PlaceDetails(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	return &domain.Place{
		PlaceID: res.PlaceID,
		Name:    res.Name,
		Address: res.FormattedAddress,
		Location: domain.Point{
			Lat: res.Geometry.Location.Lat,
			Lng: res.Geometry.Location.Lng,
		},
		Types:     res.Types,
		IsAirport: hasAirportType(res.Types),
	}, nil
}

func hasAirportType(types []string) bool {
	for _, t := range types {
		if t == "airport" {
			return true
		}
	}
	return false
}
