package repository

import (
	"context"

	"transfer/internal/domain"
)

// FixedRouteRepository defines the persistence operations for fixed routes.
type FixedRouteRepository interface {
	// Create adds a new fixed route.
	Create(ctx context.Context, route *domain.FixedRoute) error

	// GetByID retrieves a fixed route by ID.
	GetByID(ctx context.Context, id string) (*domain.FixedRoute, error)

	// ListByVehicle retrieves all fixed routes of a vehicle category.
	ListByVehicle(ctx context.Context, vehicleID string) ([]*domain.FixedRoute, error)

	// Update replaces a fixed route.
	Update(ctx context.Context, route *domain.FixedRoute) error

	// Delete removes a fixed route.
	Delete(ctx context.Context, id string) error
}
