package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"transfer/internal/domain"
	"transfer/internal/repository"
)

// PlaceFinder is the mapping collaborator used for address search.
type PlaceFinder interface {
	Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error)
	Resolve(ctx context.Context, placeID string) (*domain.Place, error)
}

// PlaceService searches and resolves pickup and drop-off addresses.
type PlaceService struct {
	finder   PlaceFinder
	airports *AirportClassifier
}

// NewPlaceService creates a new PlaceService. A nil finder makes every call
// return ErrPlacesUnavailable.
func NewPlaceService(finder PlaceFinder, airports *AirportClassifier) *PlaceService {
	return &PlaceService{finder: finder, airports: airports}
}

// Autocomplete returns suggestions for at least two characters of input.
func (s *PlaceService) Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	if s.finder == nil {
		return nil, ErrPlacesUnavailable
	}
	input = strings.TrimSpace(input)
	if len([]rune(input)) < 2 {
		return nil, ErrInvalidPlaceQuery
	}
	suggestions, err := s.finder.Autocomplete(ctx, input)
	if err != nil {
		return nil, providerError(err)
	}
	return suggestions, nil
}

// Resolve returns the coordinates of a place. Places near a known airport are
// flagged even when the mapping service does not type them as one.
func (s *PlaceService) Resolve(ctx context.Context, placeID string) (*domain.Place, error) {
	if s.finder == nil {
		return nil, ErrPlacesUnavailable
	}
	if strings.TrimSpace(placeID) == "" {
		return nil, ErrInvalidPlaceQuery
	}

	place, err := s.finder.Resolve(ctx, placeID)
	if err != nil {
		return nil, providerError(err)
	}
	if !place.IsAirport && s.airports != nil {
		place.IsAirport = s.airports.IsAirport(ctx, place.Location)
	}
	return place, nil
}

// providerError reports mapping failures as unavailable. Unknown place IDs stay not found.
func providerError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPlacesUnavailable, err)
}
