package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"transfer/internal/domain"
	"transfer/internal/logger"
	"transfer/internal/repository"
)

const (
	// ReturnMultiplier prices a return trip as 1.9 one-way trips.
	ReturnMultiplier = 1.9

	defaultMaxParallelLoads = 8
)

// QuotePublisher receives every issued quote set.
type QuotePublisher interface {
	PublishQuoteIssued(ctx context.Context, event domain.QuoteEvent) error
}

// ChildSeatSelection requests Count seats of one type. An empty SeatID means
// a generic seat at the vehicle's ChildSeatFee.
type ChildSeatSelection struct {
	SeatID string
	Count  int
}

// QuoteRequest contains the parameters for pricing a point-to-point transfer.
type QuoteRequest struct {
	Pickup            *domain.Point
	Dropoff           *domain.Point
	DistanceKm        float64 // used when coordinates are missing
	Passengers        int
	Luggage           int
	AirportPickup     bool
	MeetGreet         bool
	ChildSeats        []ChildSeatSelection
	Stops             int
	WaitingMinutes    int
	PickupTime        time.Time
	IsReturn          bool
	Currency          string
	VehicleCategoryID string // optional filter
}

// HourlyQuoteRequest contains the parameters for pricing a duration hire.
type HourlyQuoteRequest struct {
	Hours             float64
	Pickup            *domain.Point
	Passengers        int
	Luggage           int
	AirportPickup     bool
	MeetGreet         bool
	ChildSeats        []ChildSeatSelection
	PickupTime        time.Time
	Currency          string
	VehicleCategoryID string
}

// QuoteResult contains one quote per available vehicle category.
type QuoteResult struct {
	Quotes        []domain.Quote
	Travel        domain.TravelEstimate
	PickupTime    time.Time
	AirportPickup bool
	Currency      string
	Symbol        string
}

// QuoteServiceDeps contains the collaborators of QuoteService.
// Airports, Publisher and Clock are optional.
type QuoteServiceDeps struct {
	Vehicles    repository.VehicleRepository
	Pricing     repository.PricingRepository
	Routes      repository.FixedRouteRepository
	ChildSeats  repository.ChildSeatRepository
	Distance    *DistanceResolver
	Fees        *FeeCalculator
	Currency    *CurrencyConverter
	Airports    *AirportClassifier
	Publisher   QuotePublisher
	Log         *logger.Logger
	MaxParallel int
	Clock       func() time.Time
}

// QuoteService assembles per-vehicle quotes.
type QuoteService struct {
	vehicles    repository.VehicleRepository
	pricing     repository.PricingRepository
	routes      repository.FixedRouteRepository
	childSeats  repository.ChildSeatRepository
	distance    *DistanceResolver
	fees        *FeeCalculator
	currency    *CurrencyConverter
	airports    *AirportClassifier
	publisher   QuotePublisher
	log         *logger.Logger
	maxParallel int
	now         func() time.Time
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(deps QuoteServiceDeps) *QuoteService {
	s := &QuoteService{
		vehicles:    deps.Vehicles,
		pricing:     deps.Pricing,
		routes:      deps.Routes,
		childSeats:  deps.ChildSeats,
		distance:    deps.Distance,
		fees:        deps.Fees,
		currency:    deps.Currency,
		airports:    deps.Airports,
		publisher:   deps.Publisher,
		log:         deps.Log,
		maxParallel: deps.MaxParallel,
		now:         deps.Clock,
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.distance == nil {
		s.distance = NewDistanceResolver(nil, nil, 0, s.log)
	}
	if s.fees == nil {
		s.fees = NewFeeCalculator(time.UTC, 22, 6)
	}
	if s.currency == nil {
		s.currency = NewCurrencyConverter(CurrencyConverterConfig{Log: s.log})
	}
	if s.maxParallel <= 0 {
		s.maxParallel = defaultMaxParallelLoads
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// pricedVehicle carries the loaded configuration of one category.
type pricedVehicle struct {
	vehicle *domain.VehicleCategory
	scheme  *domain.PricingScheme
	routes  []*domain.FixedRoute
}

// Quote prices a transfer for every vehicle category that fits the party.
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	if err := validateQuoteRequest(&req); err != nil {
		return nil, err
	}

	travel := s.resolveTravel(ctx, req)
	pickupTime := s.pickupTime(req.PickupTime)
	airport := req.AirportPickup || s.atAirport(ctx, req.Pickup) || s.atAirport(ctx, req.Dropoff)

	seats, err := s.resolveChildSeats(ctx, req.ChildSeats)
	if err != nil {
		return nil, err
	}

	configs, err := s.loadVehicles(ctx, req.VehicleCategoryID, req.Passengers, req.Luggage, true)
	if err != nil {
		return nil, err
	}

	miles := KmToMiles(travel.DistanceKm)
	rate := s.currency.Rate(ctx, req.Currency)

	quotes := make([]domain.Quote, 0, len(configs))
	for _, pv := range configs {
		base, method, routeID := s.baseCharges(req, pv, miles)

		fee := s.fees.Apply(FeeInput{
			Base:          base,
			Fees:          pv.scheme.ExtraFees,
			MinimumFare:   pv.scheme.MinimumFare,
			AirportPickup: airport,
			MeetGreet:     req.MeetGreet,
			ChildSeats:    seatPrices(seats, pv.scheme.ExtraFees.ChildSeatFee),
			Stops:         req.Stops,
			WaitingMins:   req.WaitingMinutes,
			PickupTime:    pickupTime,
		})

		oneWay := fee.Total
		total := oneWay
		if req.IsReturn {
			total = round2(oneWay * ReturnMultiplier)
		}

		quotes = append(quotes, domain.Quote{
			VehicleCategoryID: pv.vehicle.ID,
			VehicleName:       pv.vehicle.Name,
			MaxPassengers:     pv.vehicle.MaxPassengers,
			MaxLuggage:        pv.vehicle.MaxLuggage,
			DistanceKm:        round2(travel.DistanceKm),
			DistanceMiles:     round2(miles),
			DurationMinutes:   round2(travel.DurationMinutes),
			DistanceSource:    travel.Source,
			PricingMethod:     method,
			FixedRouteID:      routeID,
			IsReturn:          req.IsReturn,
			BaseOneWayPrice:   oneWay,
			BasePrice:         total,
			OneWayPrice:       s.currency.Convert(ctx, oneWay, rate.Code).Amount,
			Price:             s.currency.Convert(ctx, total, rate.Code).Amount,
			Currency:          rate.Code,
			CurrencySymbol:    rate.Symbol,
			Breakdown:         fee.Breakdown,
		})
	}

	result := &QuoteResult{
		Quotes:        quotes,
		Travel:        travel,
		PickupTime:    pickupTime,
		AirportPickup: airport,
		Currency:      rate.Code,
		Symbol:        rate.Symbol,
	}
	s.publish(ctx, result, req.IsReturn, false)

	return result, nil
}

// HourlyQuote prices a duration hire for every vehicle category with time rates.
func (s *QuoteService) HourlyQuote(ctx context.Context, req HourlyQuoteRequest) (*QuoteResult, error) {
	if req.Hours <= 0 || req.Hours > 24*14 {
		return nil, fmt.Errorf("%w: %.2f hours", ErrInvalidHours, req.Hours)
	}
	if err := validateParty(&req.Passengers, req.Luggage, req.ChildSeats); err != nil {
		return nil, err
	}
	if req.Pickup != nil && !isValidPoint(*req.Pickup) {
		return nil, ErrInvalidPickupLocation
	}

	pickupTime := s.pickupTime(req.PickupTime)
	airport := req.AirportPickup || s.atAirport(ctx, req.Pickup)

	seats, err := s.resolveChildSeats(ctx, req.ChildSeats)
	if err != nil {
		return nil, err
	}

	configs, err := s.loadVehicles(ctx, req.VehicleCategoryID, req.Passengers, req.Luggage, false)
	if err != nil {
		return nil, err
	}

	rate := s.currency.Rate(ctx, req.Currency)

	quotes := make([]domain.Quote, 0, len(configs))
	for _, pv := range configs {
		charge, ok := PriceHours(req.Hours, pv.scheme.TimeRates)
		if !ok {
			continue
		}

		fee := s.fees.Apply(FeeInput{
			Base: []domain.Charge{{
				Kind:   domain.ChargeHourly,
				Label:  fmt.Sprintf("%d hour hire", charge.BilledHours),
				Amount: charge.Amount,
			}},
			Fees:          pv.scheme.ExtraFees,
			MinimumFare:   pv.scheme.MinimumFare,
			AirportPickup: airport,
			MeetGreet:     req.MeetGreet,
			ChildSeats:    seatPrices(seats, pv.scheme.ExtraFees.ChildSeatFee),
			PickupTime:    pickupTime,
		})

		quotes = append(quotes, domain.Quote{
			VehicleCategoryID: pv.vehicle.ID,
			VehicleName:       pv.vehicle.Name,
			MaxPassengers:     pv.vehicle.MaxPassengers,
			MaxLuggage:        pv.vehicle.MaxLuggage,
			DurationMinutes:   float64(charge.BilledHours * 60),
			PricingMethod:     domain.PricingMethodHourly,
			BaseOneWayPrice:   fee.Total,
			BasePrice:         fee.Total,
			OneWayPrice:       s.currency.Convert(ctx, fee.Total, rate.Code).Amount,
			Price:             s.currency.Convert(ctx, fee.Total, rate.Code).Amount,
			Currency:          rate.Code,
			CurrencySymbol:    rate.Symbol,
			Breakdown:         fee.Breakdown,
		})
	}

	result := &QuoteResult{
		Quotes:        quotes,
		PickupTime:    pickupTime,
		AirportPickup: airport,
		Currency:      rate.Code,
		Symbol:        rate.Symbol,
	}
	s.publish(ctx, result, false, true)

	return result, nil
}

// baseCharges picks the step 1 contribution: a matched fixed route verbatim,
// otherwise base fare plus the mileage bracket. A configuration gap in the
// brackets falls back to the minimum fare.
func (s *QuoteService) baseCharges(req QuoteRequest, pv pricedVehicle, miles float64) ([]domain.Charge, domain.PricingMethod, string) {
	if req.Pickup != nil && req.Dropoff != nil {
		if m, ok := MatchFixedRoute(*req.Pickup, *req.Dropoff, pv.routes); ok {
			label := m.Route.Name
			if label == "" {
				label = "Fixed route"
			}
			return []domain.Charge{{Kind: domain.ChargeFixedRoute, Label: label, Amount: m.Route.Price}},
				domain.PricingMethodFixedRoute, m.Route.ID
		}
	}

	br, err := ResolveBracket(miles, pv.scheme.Brackets)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"vehicle_category_id": pv.vehicle.ID,
			"distance_miles":      round2(miles),
		}).Warn("pricing configuration gap")
		return []domain.Charge{{Kind: domain.ChargeMinimumFare, Label: "Minimum fare", Amount: pv.scheme.MinimumFare}},
			domain.PricingMethodMinimumFare, ""
	}

	return []domain.Charge{
		{Kind: domain.ChargeBaseFare, Label: "Base fare", Amount: pv.scheme.BaseFare},
		{Kind: domain.ChargeMileage, Label: fmt.Sprintf("%.1f miles", miles), Amount: br.Amount},
	}, domain.PricingMethodMileage, ""
}

// loadVehicles returns the active categories that fit the party together with
// their pricing, loaded in parallel. Categories without a scheme are skipped.
func (s *QuoteService) loadVehicles(ctx context.Context, onlyID string, passengers, luggage int, withRoutes bool) ([]pricedVehicle, error) {
	all, err := s.vehicles.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vehicle categories: %w", err)
	}

	var candidates []*domain.VehicleCategory
	for _, v := range all {
		if !v.Active || !v.Fits(passengers, luggage) {
			continue
		}
		if onlyID != "" && v.ID != onlyID {
			continue
		}
		candidates = append(candidates, v)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].SortOrder != candidates[j].SortOrder {
			return candidates[i].SortOrder < candidates[j].SortOrder
		}
		return candidates[i].ID < candidates[j].ID
	})

	loaded := make([]*pricedVehicle, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for i, v := range candidates {
		g.Go(func() error {
			scheme, err := s.pricing.GetByVehicleID(gctx, v.ID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					s.log.WithField("vehicle_category_id", v.ID).Warn("vehicle category has no pricing scheme")
					return nil
				}
				return fmt.Errorf("load pricing for %s: %w", v.ID, err)
			}

			pv := &pricedVehicle{vehicle: v, scheme: scheme}
			if withRoutes && s.routes != nil {
				routes, err := s.routes.ListByVehicle(gctx, v.ID)
				if err != nil {
					return fmt.Errorf("load routes for %s: %w", v.ID, err)
				}
				pv.routes = routes
			}
			loaded[i] = pv
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]pricedVehicle, 0, len(loaded))
	for _, pv := range loaded {
		if pv != nil {
			out = append(out, *pv)
		}
	}
	return out, nil
}

// resolveTravel prefers coordinates and falls back to the client distance.
func (s *QuoteService) resolveTravel(ctx context.Context, req QuoteRequest) domain.TravelEstimate {
	if req.Pickup != nil && req.Dropoff != nil {
		return s.distance.Resolve(ctx, *req.Pickup, *req.Dropoff)
	}
	return ClientDistance(req.DistanceKm)
}

// resolveChildSeats expands selections into one price override per seat.
// A nil entry means the vehicle's default child seat fee applies.
func (s *QuoteService) resolveChildSeats(ctx context.Context, selections []ChildSeatSelection) ([]*float64, error) {
	var seats []*float64
	for _, sel := range selections {
		if sel.Count == 0 {
			continue
		}

		var price *float64
		if sel.SeatID != "" {
			if s.childSeats == nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidChildSeat, sel.SeatID)
			}
			seat, err := s.childSeats.GetByID(ctx, sel.SeatID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, fmt.Errorf("%w: %s", ErrInvalidChildSeat, sel.SeatID)
				}
				return nil, err
			}
			if !seat.Active {
				return nil, fmt.Errorf("%w: %s", ErrInvalidChildSeat, sel.SeatID)
			}
			price = seat.Price
		}

		for i := 0; i < sel.Count; i++ {
			seats = append(seats, price)
		}
	}
	return seats, nil
}

func seatPrices(seats []*float64, defaultFee float64) []float64 {
	if len(seats) == 0 {
		return nil
	}
	prices := make([]float64, len(seats))
	for i, p := range seats {
		if p != nil {
			prices[i] = *p
		} else {
			prices[i] = defaultFee
		}
	}
	return prices
}

func (s *QuoteService) atAirport(ctx context.Context, p *domain.Point) bool {
	if p == nil || s.airports == nil {
		return false
	}
	return s.airports.IsAirport(ctx, *p)
}

func (s *QuoteService) pickupTime(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

// publish emits a QuoteEvent. Failures are logged and never fail the request.
func (s *QuoteService) publish(ctx context.Context, result *QuoteResult, isReturn, hourly bool) {
	if s.publisher == nil || len(result.Quotes) == 0 {
		return
	}

	event := domain.QuoteEvent{
		ID:         uuid.New().String(),
		IssuedAt:   s.now(),
		PickupTime: result.PickupTime,
		Currency:   result.Currency,
		DistanceKm: round2(result.Travel.DistanceKm),
		IsReturn:   isReturn,
		Hourly:     hourly,
		Quotes:     make([]domain.QuoteEventLine, 0, len(result.Quotes)),
	}
	for _, q := range result.Quotes {
		event.Quotes = append(event.Quotes, domain.QuoteEventLine{
			VehicleCategoryID: q.VehicleCategoryID,
			PricingMethod:     q.PricingMethod,
			BasePrice:         q.BasePrice,
			Price:             q.Price,
		})
	}

	if err := s.publisher.PublishQuoteIssued(ctx, event); err != nil {
		s.log.WithError(err).WithField("event_id", event.ID).Warn("failed to publish quote event")
	}
}

func validateQuoteRequest(req *QuoteRequest) error {
	if err := validateParty(&req.Passengers, req.Luggage, req.ChildSeats); err != nil {
		return err
	}
	if req.Stops < 0 || req.WaitingMinutes < 0 {
		return fmt.Errorf("%w: stops and waiting minutes must not be negative", ErrInvalidExtras)
	}
	if req.Pickup != nil && !isValidPoint(*req.Pickup) {
		return ErrInvalidPickupLocation
	}
	if req.Dropoff != nil && !isValidPoint(*req.Dropoff) {
		return ErrInvalidDropoffLocation
	}
	if (req.Pickup == nil || req.Dropoff == nil) && req.DistanceKm <= 0 {
		return ErrMissingDistance
	}
	return nil
}

func validateParty(passengers *int, luggage int, seats []ChildSeatSelection) error {
	if *passengers < 0 || luggage < 0 {
		return ErrInvalidPassengers
	}
	if *passengers == 0 {
		*passengers = 1
	}
	for _, sel := range seats {
		if sel.Count < 0 {
			return fmt.Errorf("%w: child seat count must not be negative", ErrInvalidExtras)
		}
	}
	return nil
}
