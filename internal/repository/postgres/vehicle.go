package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transfer/internal/domain"
	"transfer/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle category repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle category repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `id, name, description, max_passengers, max_luggage, sort_order, image_url, active, created_at, updated_at`

// Create adds a new vehicle category.
func (r *VehicleRepository) Create(ctx context.Context, v *domain.VehicleCategory) error {
	query := `INSERT INTO vehicle_categories (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.ExecContext(ctx, query,
		v.ID, v.Name, v.Description, v.MaxPassengers, v.MaxLuggage,
		v.SortOrder, v.ImageURL, v.Active, v.CreatedAt, v.UpdatedAt,
	)
	return translateWriteError(err)
}

// GetByID retrieves a vehicle category by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.VehicleCategory, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicle_categories WHERE id = $1`

	v, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// GetAll retrieves all vehicle categories ordered by sort order.
func (r *VehicleRepository) GetAll(ctx context.Context) ([]*domain.VehicleCategory, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicle_categories ORDER BY sort_order, id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.VehicleCategory
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Update replaces a vehicle category.
func (r *VehicleRepository) Update(ctx context.Context, v *domain.VehicleCategory) error {
	query := `UPDATE vehicle_categories
		SET name = $1, description = $2, max_passengers = $3, max_luggage = $4,
			sort_order = $5, image_url = $6, active = $7, updated_at = $8
		WHERE id = $9`
	result, err := r.q.ExecContext(ctx, query,
		v.Name, v.Description, v.MaxPassengers, v.MaxLuggage,
		v.SortOrder, v.ImageURL, v.Active, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a vehicle category. Pricing and routes cascade.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM vehicle_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanVehicle(row rowScanner) (*domain.VehicleCategory, error) {
	var v domain.VehicleCategory
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Description,
		&v.MaxPassengers,
		&v.MaxLuggage,
		&v.SortOrder,
		&v.ImageURL,
		&v.Active,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
