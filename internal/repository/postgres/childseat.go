package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transfer/internal/domain"
	"transfer/internal/repository"
)

// ChildSeatRepository is a PostgreSQL implementation of repository.ChildSeatRepository.
type ChildSeatRepository struct {
	q Querier
}

// NewChildSeatRepository creates a new PostgreSQL child seat repository.
func NewChildSeatRepository(db *sql.DB) *ChildSeatRepository {
	return &ChildSeatRepository{q: db}
}

// GetAll retrieves the child seat list.
func (r *ChildSeatRepository) GetAll(ctx context.Context) ([]*domain.ChildSeat, error) {
	query := `SELECT id, name, min_age_months, max_age_months, price, active FROM child_seats ORDER BY min_age_months, id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []*domain.ChildSeat
	for rows.Next() {
		seat, err := scanChildSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// GetByID retrieves a child seat by ID.
func (r *ChildSeatRepository) GetByID(ctx context.Context, id string) (*domain.ChildSeat, error) {
	query := `SELECT id, name, min_age_months, max_age_months, price, active FROM child_seats WHERE id = $1`

	seat, err := scanChildSeat(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return seat, nil
}

// Upsert creates or replaces a child seat.
func (r *ChildSeatRepository) Upsert(ctx context.Context, seat *domain.ChildSeat) error {
	query := `INSERT INTO child_seats (id, name, min_age_months, max_age_months, price, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			min_age_months = EXCLUDED.min_age_months,
			max_age_months = EXCLUDED.max_age_months,
			price = EXCLUDED.price,
			active = EXCLUDED.active`
	_, err := r.q.ExecContext(ctx, query, seat.ID, seat.Name, seat.MinAgeMonths, seat.MaxAgeMonths, nullFloat(seat.Price), seat.Active)
	return err
}

// Delete removes a child seat.
func (r *ChildSeatRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM child_seats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanChildSeat(row rowScanner) (*domain.ChildSeat, error) {
	var (
		seat  domain.ChildSeat
		price sql.NullFloat64
	)
	if err := row.Scan(&seat.ID, &seat.Name, &seat.MinAgeMonths, &seat.MaxAgeMonths, &price, &seat.Active); err != nil {
		return nil, err
	}
	seat.Price = floatPtr(price)
	return &seat, nil
}
