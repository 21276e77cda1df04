package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"transfer/internal/domain"
	"transfer/internal/logger"
	"transfer/internal/repository"
)

// RateInvalidator is notified after currency edits.
type RateInvalidator interface {
	Invalidate(ctx context.Context)
}

// AdminService is the validated write boundary for pricing configuration.
// Invalid edits are rejected here so the quote engine only ever reads
// well-formed data.
type AdminService struct {
	vehicles   repository.VehicleRepository
	pricing    repository.PricingRepository
	routes     repository.FixedRouteRepository
	currencies repository.CurrencyRepository
	childSeats repository.ChildSeatRepository
	rates      RateInvalidator
	log        *logger.Logger
	now        func() time.Time
}

// NewAdminService creates a new AdminService. rates may be nil.
func NewAdminService(
	vehicles repository.VehicleRepository,
	pricing repository.PricingRepository,
	routes repository.FixedRouteRepository,
	currencies repository.CurrencyRepository,
	childSeats repository.ChildSeatRepository,
	rates RateInvalidator,
	log *logger.Logger,
) *AdminService {
	if log == nil {
		log = logger.Discard()
	}
	return &AdminService{
		vehicles:   vehicles,
		pricing:    pricing,
		routes:     routes,
		currencies: currencies,
		childSeats: childSeats,
		rates:      rates,
		log:        log,
		now:        time.Now,
	}
}

// ──── Vehicle categories ────

// ListVehicles returns all vehicle categories.
func (s *AdminService) ListVehicles(ctx context.Context) ([]*domain.VehicleCategory, error) {
	return s.vehicles.GetAll(ctx)
}

// GetVehicle returns one vehicle category.
func (s *AdminService) GetVehicle(ctx context.Context, id string) (*domain.VehicleCategory, error) {
	return s.vehicles.GetByID(ctx, id)
}

// CreateVehicle validates and stores a new vehicle category.
func (s *AdminService) CreateVehicle(ctx context.Context, v *domain.VehicleCategory) (*domain.VehicleCategory, error) {
	if err := ValidateVehicle(v); err != nil {
		return nil, err
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	now := s.now()
	v.CreatedAt, v.UpdatedAt = now, now

	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, err
	}
	s.log.WithField("vehicle_category_id", v.ID).Info("vehicle category created")
	return v, nil
}

// UpdateVehicle validates and replaces a vehicle category.
func (s *AdminService) UpdateVehicle(ctx context.Context, v *domain.VehicleCategory) (*domain.VehicleCategory, error) {
	if err := ValidateVehicle(v); err != nil {
		return nil, err
	}
	existing, err := s.vehicles.GetByID(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = s.now()

	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DeleteVehicle removes a vehicle category with its pricing and routes.
func (s *AdminService) DeleteVehicle(ctx context.Context, id string) error {
	return s.vehicles.Delete(ctx, id)
}

// ──── Pricing schemes ────

// GetPricingScheme returns the scheme of a vehicle category.
func (s *AdminService) GetPricingScheme(ctx context.Context, vehicleID string) (*domain.PricingScheme, error) {
	return s.pricing.GetByVehicleID(ctx, vehicleID)
}

// SavePricingScheme validates and replaces the scheme of an existing vehicle category.
// Brackets are sorted by min distance before validation.
func (s *AdminService) SavePricingScheme(ctx context.Context, scheme *domain.PricingScheme) (*domain.PricingScheme, error) {
	if _, err := s.vehicles.GetByID(ctx, scheme.VehicleCategoryID); err != nil {
		return nil, err
	}

	sort.SliceStable(scheme.Brackets, func(i, j int) bool {
		return scheme.Brackets[i].MinDistance < scheme.Brackets[j].MinDistance
	})
	if err := ValidatePricingScheme(scheme); err != nil {
		return nil, err
	}
	scheme.UpdatedAt = s.now()

	if err := s.pricing.Save(ctx, scheme); err != nil {
		return nil, err
	}
	s.log.WithField("vehicle_category_id", scheme.VehicleCategoryID).Info("pricing scheme saved")
	return scheme, nil
}

// ──── Fixed routes ────

// ListRoutes returns the fixed routes of a vehicle category.
func (s *AdminService) ListRoutes(ctx context.Context, vehicleID string) ([]*domain.FixedRoute, error) {
	if _, err := s.vehicles.GetByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	return s.routes.ListByVehicle(ctx, vehicleID)
}

// CreateRoute validates and stores a fixed route.
func (s *AdminService) CreateRoute(ctx context.Context, route *domain.FixedRoute) (*domain.FixedRoute, error) {
	if err := ValidateFixedRoute(route); err != nil {
		return nil, err
	}
	if _, err := s.vehicles.GetByID(ctx, route.VehicleCategoryID); err != nil {
		return nil, err
	}
	if route.ID == "" {
		route.ID = uuid.New().String()
	}
	now := s.now()
	route.CreatedAt, route.UpdatedAt = now, now

	if err := s.routes.Create(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// UpdateRoute validates and replaces a fixed route. The owning vehicle cannot change.
func (s *AdminService) UpdateRoute(ctx context.Context, route *domain.FixedRoute) (*domain.FixedRoute, error) {
	existing, err := s.routes.GetByID(ctx, route.ID)
	if err != nil {
		return nil, err
	}
	route.VehicleCategoryID = existing.VehicleCategoryID
	route.CreatedAt = existing.CreatedAt

	if err := ValidateFixedRoute(route); err != nil {
		return nil, err
	}
	route.UpdatedAt = s.now()

	if err := s.routes.Update(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// DeleteRoute removes a fixed route.
func (s *AdminService) DeleteRoute(ctx context.Context, id string) error {
	return s.routes.Delete(ctx, id)
}

// ──── Currencies ────

// ListCurrencies returns every configured currency.
func (s *AdminService) ListCurrencies(ctx context.Context) ([]*domain.CurrencyRate, error) {
	return s.currencies.GetAll(ctx)
}

// UpsertCurrency validates and stores a currency. GBP may only be renamed.
func (s *AdminService) UpsertCurrency(ctx context.Context, rate *domain.CurrencyRate) (*domain.CurrencyRate, error) {
	rate.Code = strings.ToUpper(strings.TrimSpace(rate.Code))
	if err := ValidateCurrency(rate); err != nil {
		return nil, err
	}
	rate.UpdatedAt = s.now()

	if err := s.currencies.Upsert(ctx, rate); err != nil {
		return nil, err
	}
	s.invalidateRates(ctx)
	return rate, nil
}

// DeleteCurrency removes a currency. GBP cannot be removed.
func (s *AdminService) DeleteCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == domain.BaseCurrency {
		return ErrBaseCurrencyImmutable
	}
	if err := s.currencies.Delete(ctx, code); err != nil {
		return err
	}
	s.invalidateRates(ctx)
	return nil
}

func (s *AdminService) invalidateRates(ctx context.Context) {
	if s.rates != nil {
		s.rates.Invalidate(ctx)
	}
}

// ──── Child seats ────

// ListChildSeats returns the child seat list.
func (s *AdminService) ListChildSeats(ctx context.Context) ([]*domain.ChildSeat, error) {
	return s.childSeats.GetAll(ctx)
}

// UpsertChildSeat validates and stores a child seat, assigning an ID to new ones.
func (s *AdminService) UpsertChildSeat(ctx context.Context, seat *domain.ChildSeat) (*domain.ChildSeat, error) {
	if err := ValidateChildSeat(seat); err != nil {
		return nil, err
	}
	if seat.ID == "" {
		seat.ID = uuid.New().String()
	}
	if err := s.childSeats.Upsert(ctx, seat); err != nil {
		return nil, err
	}
	return seat, nil
}

// DeleteChildSeat removes a child seat.
func (s *AdminService) DeleteChildSeat(ctx context.Context, id string) error {
	return s.childSeats.Delete(ctx, id)
}

// ──── Validation ────

// ValidateVehicle checks a vehicle category edit.
func ValidateVehicle(v *domain.VehicleCategory) error {
	switch {
	case strings.TrimSpace(v.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidVehicleCategory)
	case v.MaxPassengers < 1:
		return fmt.Errorf("%w: max passengers must be at least 1", ErrInvalidVehicleCategory)
	case v.MaxLuggage < 0:
		return fmt.Errorf("%w: max luggage must not be negative", ErrInvalidVehicleCategory)
	}
	return nil
}

// ValidatePricingScheme checks that brackets start at zero, are sorted,
// contiguous and non-overlapping, that at most the last one is open-ended,
// that each has a price, and that no money field is negative.
func ValidatePricingScheme(s *domain.PricingScheme) error {
	if s.VehicleCategoryID == "" {
		return fmt.Errorf("%w: vehicle category is required", ErrInvalidPricingScheme)
	}

	money := []struct {
		name  string
		value float64
	}{
		{"base_fare", s.BaseFare},
		{"minimum_fare", s.MinimumFare},
		{"hourly_rate", s.TimeRates.HourlyRate},
		{"daily_rate", s.TimeRates.DailyRate},
		{"additional_pickup_fee", s.ExtraFees.AdditionalPickupFee},
		{"waiting_per_minute", s.ExtraFees.WaitingPerMinute},
		{"airport_pickup_fee", s.ExtraFees.AirportPickupFee},
		{"meet_greet_fee", s.ExtraFees.MeetGreetFee},
		{"night_surcharge_percent", s.ExtraFees.NightSurchargePercent},
		{"weekend_surcharge_percent", s.ExtraFees.WeekendSurchargePercent},
		{"child_seat_fee", s.ExtraFees.ChildSeatFee},
	}
	for _, m := range money {
		if m.value < 0 || math.IsNaN(m.value) || math.IsInf(m.value, 0) {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidPricingScheme, m.name)
		}
	}
	if s.TimeRates.MinimumHours < 0 {
		return fmt.Errorf("%w: minimum_hours must not be negative", ErrInvalidPricingScheme)
	}

	return ValidateBrackets(s.Brackets)
}

// ValidateBrackets checks the bracket layout rules of ValidatePricingScheme.
func ValidateBrackets(brackets []domain.MileageBracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("%w: at least one bracket is required", ErrInvalidPricingScheme)
	}
	if brackets[0].MinDistance != 0 {
		return fmt.Errorf("%w: first bracket must start at 0", ErrInvalidPricingScheme)
	}

	for i, b := range brackets {
		if b.FixedPrice == nil && b.PerMileRate == nil {
			return fmt.Errorf("%w: bracket %d needs a fixed price or per-mile rate", ErrInvalidPricingScheme, i)
		}
		if (b.FixedPrice != nil && *b.FixedPrice < 0) || (b.PerMileRate != nil && *b.PerMileRate < 0) {
			return fmt.Errorf("%w: bracket %d has a negative price", ErrInvalidPricingScheme, i)
		}
		if b.FixedPrice != nil && !hasAtMostDecimals(*b.FixedPrice, 2) {
			return fmt.Errorf("%w: bracket %d fixed price has more than 2 decimals", ErrInvalidPricingScheme, i)
		}
		if b.PerMileRate != nil && !hasAtMostDecimals(*b.PerMileRate, 4) {
			return fmt.Errorf("%w: bracket %d per-mile rate has more than 4 decimals", ErrInvalidPricingScheme, i)
		}

		last := i == len(brackets)-1
		if b.MaxDistance == nil {
			if !last {
				return fmt.Errorf("%w: only the last bracket may be open-ended", ErrInvalidPricingScheme)
			}
			continue
		}
		if *b.MaxDistance <= b.MinDistance {
			return fmt.Errorf("%w: bracket %d max must exceed min", ErrInvalidPricingScheme, i)
		}
		if !last && brackets[i+1].MinDistance != *b.MaxDistance {
			return fmt.Errorf("%w: bracket %d ends at %.2f but next starts at %.2f",
				ErrInvalidPricingScheme, i, *b.MaxDistance, brackets[i+1].MinDistance)
		}
	}
	return nil
}

// hasAtMostDecimals reports whether v survives storage at the given scale.
func hasAtMostDecimals(v float64, places int) bool {
	scaled := v * math.Pow10(places)
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

// ValidateFixedRoute checks a fixed route edit.
func ValidateFixedRoute(r *domain.FixedRoute) error {
	switch {
	case r.VehicleCategoryID == "":
		return fmt.Errorf("%w: vehicle category is required", ErrInvalidFixedRoute)
	case !isValidPoint(r.Start.Center):
		return fmt.Errorf("%w: invalid start point", ErrInvalidFixedRoute)
	case !isValidPoint(r.End.Center):
		return fmt.Errorf("%w: invalid end point", ErrInvalidFixedRoute)
	case r.Start.RadiusMiles < 0 || r.End.RadiusMiles < 0:
		return fmt.Errorf("%w: radius must not be negative", ErrInvalidFixedRoute)
	case r.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidFixedRoute)
	case r.DistanceMiles < 0:
		return fmt.Errorf("%w: distance must not be negative", ErrInvalidFixedRoute)
	}
	return nil
}

// ValidateCurrency checks a currency edit. Codes are three upper-case letters.
func ValidateCurrency(c *domain.CurrencyRate) error {
	if len(c.Code) != 3 || strings.IndexFunc(c.Code, func(r rune) bool { return !unicode.IsUpper(r) || r > unicode.MaxASCII }) >= 0 {
		return fmt.Errorf("%w: code must be three letters", ErrInvalidCurrency)
	}
	if c.Code == domain.BaseCurrency && (c.RateToBase != 1 || !c.Active) {
		return ErrBaseCurrencyImmutable
	}
	if c.RateToBase <= 0 || math.IsNaN(c.RateToBase) || math.IsInf(c.RateToBase, 0) {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidCurrency)
	}
	return nil
}

// ValidateChildSeat checks a child seat edit.
func ValidateChildSeat(seat *domain.ChildSeat) error {
	switch {
	case strings.TrimSpace(seat.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidChildSeatConfig)
	case seat.MinAgeMonths < 0 || seat.MaxAgeMonths < seat.MinAgeMonths:
		return fmt.Errorf("%w: invalid age range", ErrInvalidChildSeatConfig)
	case seat.Price != nil && *seat.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidChildSeatConfig)
	}
	return nil
}
