package repository

import (
	"context"

	"transfer/internal/domain"
)

// ChildSeatRepository defines the persistence operations for the child seat list.
type ChildSeatRepository interface {
	GetAll(ctx context.Context) ([]*domain.ChildSeat, error)
	GetByID(ctx context.Context, id string) (*domain.ChildSeat, error)
	Upsert(ctx context.Context, seat *domain.ChildSeat) error
	Delete(ctx context.Context, id string) error
}
