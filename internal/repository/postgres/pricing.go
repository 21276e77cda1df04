package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"transfer/internal/domain"
	"transfer/internal/repository"
)

// PricingRepository is a PostgreSQL implementation of repository.PricingRepository.
// Schemes live in pricing_schemes, their brackets in mileage_brackets.
type PricingRepository struct {
	db *sql.DB
	q  Querier
}

// NewPricingRepository creates a new PostgreSQL pricing repository.
func NewPricingRepository(db *sql.DB) *PricingRepository {
	return &PricingRepository{db: db, q: db}
}

// NewPricingRepositoryWithTx creates a pricing repository using a transaction.
// Save then joins the caller's transaction instead of opening its own.
func NewPricingRepositoryWithTx(tx *sql.Tx) *PricingRepository {
	return &PricingRepository{q: tx}
}

// GetByVehicleID retrieves a scheme with brackets ordered by min distance.
func (r *PricingRepository) GetByVehicleID(ctx context.Context, vehicleID string) (*domain.PricingScheme, error) {
	query := `SELECT vehicle_category_id, base_fare, minimum_fare,
			hourly_rate, minimum_hours, daily_rate,
			additional_pickup_fee, waiting_per_minute, airport_pickup_fee, meet_greet_fee,
			night_surcharge_percent, weekend_surcharge_percent, child_seat_fee, updated_at
		FROM pricing_schemes WHERE vehicle_category_id = $1`

	var s domain.PricingScheme
	err := r.q.QueryRowContext(ctx, query, vehicleID).Scan(
		&s.VehicleCategoryID,
		&s.BaseFare,
		&s.MinimumFare,
		&s.TimeRates.HourlyRate,
		&s.TimeRates.MinimumHours,
		&s.TimeRates.DailyRate,
		&s.ExtraFees.AdditionalPickupFee,
		&s.ExtraFees.WaitingPerMinute,
		&s.ExtraFees.AirportPickupFee,
		&s.ExtraFees.MeetGreetFee,
		&s.ExtraFees.NightSurchargePercent,
		&s.ExtraFees.WeekendSurchargePercent,
		&s.ExtraFees.ChildSeatFee,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	brackets, err := r.listBrackets(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	s.Brackets = brackets

	return &s, nil
}

func (r *PricingRepository) listBrackets(ctx context.Context, vehicleID string) ([]domain.MileageBracket, error) {
	query := `SELECT min_distance, max_distance, fixed_price, per_mile_rate
		FROM mileage_brackets WHERE vehicle_category_id = $1 ORDER BY min_distance, position`
	rows, err := r.q.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brackets []domain.MileageBracket
	for rows.Next() {
		var (
			b                       domain.MileageBracket
			maxDist, fixed, perMile sql.NullFloat64
		)
		if err := rows.Scan(&b.MinDistance, &maxDist, &fixed, &perMile); err != nil {
			return nil, err
		}
		b.MaxDistance = floatPtr(maxDist)
		b.FixedPrice = floatPtr(fixed)
		b.PerMileRate = floatPtr(perMile)
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

// Save upserts the scheme and replaces its brackets in one transaction.
func (r *PricingRepository) Save(ctx context.Context, scheme *domain.PricingScheme) error {
	if r.db == nil {
		return r.save(ctx, r.q, scheme)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err = r.save(ctx, tx, scheme); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *PricingRepository) save(ctx context.Context, q Querier, s *domain.PricingScheme) error {
	upsert := `INSERT INTO pricing_schemes (
			vehicle_category_id, base_fare, minimum_fare,
			hourly_rate, minimum_hours, daily_rate,
			additional_pickup_fee, waiting_per_minute, airport_pickup_fee, meet_greet_fee,
			night_surcharge_percent, weekend_surcharge_percent, child_seat_fee, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (vehicle_category_id) DO UPDATE SET
			base_fare = EXCLUDED.base_fare,
			minimum_fare = EXCLUDED.minimum_fare,
			hourly_rate = EXCLUDED.hourly_rate,
			minimum_hours = EXCLUDED.minimum_hours,
			daily_rate = EXCLUDED.daily_rate,
			additional_pickup_fee = EXCLUDED.additional_pickup_fee,
			waiting_per_minute = EXCLUDED.waiting_per_minute,
			airport_pickup_fee = EXCLUDED.airport_pickup_fee,
			meet_greet_fee = EXCLUDED.meet_greet_fee,
			night_surcharge_percent = EXCLUDED.night_surcharge_percent,
			weekend_surcharge_percent = EXCLUDED.weekend_surcharge_percent,
			child_seat_fee = EXCLUDED.child_seat_fee,
			updated_at = EXCLUDED.updated_at`
	_, err := q.ExecContext(ctx, upsert,
		s.VehicleCategoryID, s.BaseFare, s.MinimumFare,
		s.TimeRates.HourlyRate, s.TimeRates.MinimumHours, s.TimeRates.DailyRate,
		s.ExtraFees.AdditionalPickupFee, s.ExtraFees.WaitingPerMinute,
		s.ExtraFees.AirportPickupFee, s.ExtraFees.MeetGreetFee,
		s.ExtraFees.NightSurchargePercent, s.ExtraFees.WeekendSurchargePercent,
		s.ExtraFees.ChildSeatFee, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert pricing scheme: %w", translateWriteError(err))
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM mileage_brackets WHERE vehicle_category_id = $1`, s.VehicleCategoryID); err != nil {
		return fmt.Errorf("clear brackets: %w", err)
	}

	insert := `INSERT INTO mileage_brackets (vehicle_category_id, position, min_distance, max_distance, fixed_price, per_mile_rate)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, b := range s.Brackets {
		_, err := q.ExecContext(ctx, insert,
			s.VehicleCategoryID, i, b.MinDistance,
			nullFloat(b.MaxDistance), nullFloat(b.FixedPrice), nullFloat(b.PerMileRate),
		)
		if err != nil {
			return fmt.Errorf("insert bracket %d: %w", i, err)
		}
	}

	return nil
}
