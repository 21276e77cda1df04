package repository

import (
	"context"

	"transfer/internal/domain"
)

// PricingRepository defines the persistence operations for pricing schemes.
type PricingRepository interface {
	// GetByVehicleID retrieves the scheme of a vehicle category, brackets ordered by min distance.
	GetByVehicleID(ctx context.Context, vehicleID string) (*domain.PricingScheme, error)

	// Save replaces the scheme and all its brackets atomically.
	Save(ctx context.Context, scheme *domain.PricingScheme) error
}
