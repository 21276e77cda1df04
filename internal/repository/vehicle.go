package repository

import (
	"context"

	"transfer/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicle categories.
type VehicleRepository interface {
	// Create adds a new vehicle category.
	Create(ctx context.Context, vehicle *domain.VehicleCategory) error

	// GetByID retrieves a vehicle category by ID.
	GetByID(ctx context.Context, id string) (*domain.VehicleCategory, error)

	// GetAll retrieves all vehicle categories ordered by sort order.
	GetAll(ctx context.Context) ([]*domain.VehicleCategory, error)

	// Update replaces a vehicle category.
	Update(ctx context.Context, vehicle *domain.VehicleCategory) error

	// Delete removes a vehicle category together with its pricing and routes.
	Delete(ctx context.Context, id string) error
}
