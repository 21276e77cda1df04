package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transfer/internal/domain"
	"transfer/internal/repository"
)

// CurrencyRepository is a PostgreSQL implementation of repository.CurrencyRepository.
type CurrencyRepository struct {
	q Querier
}

// NewCurrencyRepository creates a new PostgreSQL currency repository.
func NewCurrencyRepository(db *sql.DB) *CurrencyRepository {
	return &CurrencyRepository{q: db}
}

// GetAll retrieves every configured currency.
func (r *CurrencyRepository) GetAll(ctx context.Context) ([]*domain.CurrencyRate, error) {
	query := `SELECT code, symbol, name, rate_to_base, active, updated_at FROM currencies ORDER BY code`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []*domain.CurrencyRate
	for rows.Next() {
		var c domain.CurrencyRate
		if err := rows.Scan(&c.Code, &c.Symbol, &c.Name, &c.RateToBase, &c.Active, &c.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, &c)
	}
	return rates, rows.Err()
}

// GetByCode retrieves a currency by ISO code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.CurrencyRate, error) {
	query := `SELECT code, symbol, name, rate_to_base, active, updated_at FROM currencies WHERE code = $1`

	var c domain.CurrencyRate
	err := r.q.QueryRowContext(ctx, query, code).Scan(&c.Code, &c.Symbol, &c.Name, &c.RateToBase, &c.Active, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Upsert creates or replaces a currency.
func (r *CurrencyRepository) Upsert(ctx context.Context, c *domain.CurrencyRate) error {
	query := `INSERT INTO currencies (code, symbol, name, rate_to_base, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			rate_to_base = EXCLUDED.rate_to_base,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.ExecContext(ctx, query, c.Code, c.Symbol, c.Name, c.RateToBase, c.Active, c.UpdatedAt)
	return err
}

// Delete removes a currency.
func (r *CurrencyRepository) Delete(ctx context.Context, code string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM currencies WHERE code = $1`, code)
	if err != nil {
		return err
	}
	return requireAffected(result)
}
