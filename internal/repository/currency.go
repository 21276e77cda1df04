package repository

import (
	"context"

	"transfer/internal/domain"
)

// CurrencyRepository defines the persistence operations for currency rates.
type CurrencyRepository interface {
	// GetAll retrieves every configured currency.
	GetAll(ctx context.Context) ([]*domain.CurrencyRate, error)

	// GetByCode retrieves a currency by ISO code.
	GetByCode(ctx context.Context, code string) (*domain.CurrencyRate, error)

	// Upsert creates or replaces a currency.
	Upsert(ctx context.Context, rate *domain.CurrencyRate) error

	// Delete removes a currency.
	Delete(ctx context.Context, code string) error
}
