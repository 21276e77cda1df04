package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transfer/internal/domain"
	"transfer/internal/repository"
)

// FixedRouteRepository is a PostgreSQL implementation of repository.FixedRouteRepository.
type FixedRouteRepository struct {
	q Querier
}

// NewFixedRouteRepository creates a new PostgreSQL fixed route repository.
func NewFixedRouteRepository(db *sql.DB) *FixedRouteRepository {
	return &FixedRouteRepository{q: db}
}

// NewFixedRouteRepositoryWithTx creates a fixed route repository using a transaction.
func NewFixedRouteRepositoryWithTx(tx *sql.Tx) *FixedRouteRepository {
	return &FixedRouteRepository{q: tx}
}

const routeColumns = `id, vehicle_category_id, name,
	start_lat, start_lng, start_radius_miles,
	end_lat, end_lng, end_radius_miles,
	price, distance_miles, valid_return, priority, created_at, updated_at`

// Create adds a new fixed route.
func (r *FixedRouteRepository) Create(ctx context.Context, route *domain.FixedRoute) error {
	query := `INSERT INTO fixed_routes (` + routeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.ExecContext(ctx, query,
		route.ID, route.VehicleCategoryID, route.Name,
		route.Start.Center.Lat, route.Start.Center.Lng, route.Start.RadiusMiles,
		route.End.Center.Lat, route.End.Center.Lng, route.End.RadiusMiles,
		route.Price, route.DistanceMiles, route.ValidReturn, route.Priority,
		route.CreatedAt, route.UpdatedAt,
	)
	return translateWriteError(err)
}

// GetByID retrieves a fixed route by ID.
func (r *FixedRouteRepository) GetByID(ctx context.Context, id string) (*domain.FixedRoute, error) {
	query := `SELECT ` + routeColumns + ` FROM fixed_routes WHERE id = $1`

	route, err := scanRoute(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return route, nil
}

// ListByVehicle retrieves all fixed routes of a vehicle category.
func (r *FixedRouteRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]*domain.FixedRoute, error) {
	query := `SELECT ` + routeColumns + ` FROM fixed_routes WHERE vehicle_category_id = $1 ORDER BY priority DESC, id`
	rows, err := r.q.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*domain.FixedRoute
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

// Update replaces a fixed route.
func (r *FixedRouteRepository) Update(ctx context.Context, route *domain.FixedRoute) error {
	query := `UPDATE fixed_routes SET
			name = $1,
			start_lat = $2, start_lng = $3, start_radius_miles = $4,
			end_lat = $5, end_lng = $6, end_radius_miles = $7,
			price = $8, distance_miles = $9, valid_return = $10, priority = $11, updated_at = $12
		WHERE id = $13`
	result, err := r.q.ExecContext(ctx, query,
		route.Name,
		route.Start.Center.Lat, route.Start.Center.Lng, route.Start.RadiusMiles,
		route.End.Center.Lat, route.End.Center.Lng, route.End.RadiusMiles,
		route.Price, route.DistanceMiles, route.ValidReturn, route.Priority, route.UpdatedAt,
		route.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a fixed route.
func (r *FixedRouteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM fixed_routes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanRoute(row rowScanner) (*domain.FixedRoute, error) {
	var route domain.FixedRoute
	err := row.Scan(
		&route.ID,
		&route.VehicleCategoryID,
		&route.Name,
		&route.Start.Center.Lat,
		&route.Start.Center.Lng,
		&route.Start.RadiusMiles,
		&route.End.Center.Lat,
		&route.End.Center.Lng,
		&route.End.RadiusMiles,
		&route.Price,
		&route.DistanceMiles,
		&route.ValidReturn,
		&route.Priority,
		&route.CreatedAt,
		&route.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &route, nil
}
