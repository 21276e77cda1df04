package domain

import "time"

// PricingMethod records which path produced a quote's base price.
type PricingMethod string

const (
	PricingMethodFixedRoute  PricingMethod = "fixed_route"
	PricingMethodMileage     PricingMethod = "mileage"
	PricingMethodMinimumFare PricingMethod = "minimum_fare"
	PricingMethodHourly      PricingMethod = "hourly"
)

// DistanceSource records where a trip distance came from.
type DistanceSource string

const (
	DistanceSourceProvider DistanceSource = "provider"
	DistanceSourceEstimate DistanceSource = "estimate"
	DistanceSourceClient   DistanceSource = "client"
)

// TravelEstimate is a driving distance and duration between two points.
type TravelEstimate struct {
	DistanceKm      float64
	DurationMinutes float64
	Source          DistanceSource
}

// ChargeKind identifies a line of a quote breakdown.
type ChargeKind string

const (
	ChargeFixedRoute    ChargeKind = "fixed_route"
	ChargeBaseFare      ChargeKind = "base_fare"
	ChargeMileage       ChargeKind = "mileage"
	ChargeHourly        ChargeKind = "hourly"
	ChargeMinimumFare   ChargeKind = "minimum_fare"
	ChargeAirportPickup ChargeKind = "airport_pickup"
	ChargeMeetGreet     ChargeKind = "meet_greet"
	ChargeChildSeat     ChargeKind = "child_seat"
	ChargeExtraStop     ChargeKind = "additional_pickup"
	ChargeWaiting       ChargeKind = "waiting"
	ChargeNight         ChargeKind = "night_surcharge"
	ChargeWeekend       ChargeKind = "weekend_surcharge"
	ChargeMinimumTopUp  ChargeKind = "minimum_fare_adjustment"
)

// Charge is one line item of a quote, in the base currency.
type Charge struct {
	Kind   ChargeKind
	Label  string
	Amount float64
}

// Quote is the priced offer for one vehicle category. It is never persisted.
type Quote struct {
	VehicleCategoryID string
	VehicleName       string
	MaxPassengers     int
	MaxLuggage        int
	DistanceKm        float64
	DistanceMiles     float64
	DurationMinutes   float64
	DistanceSource    DistanceSource
	PricingMethod     PricingMethod
	FixedRouteID      string
	IsReturn          bool

	// Base currency amounts.
	BaseOneWayPrice float64
	BasePrice       float64

	// Display currency amounts.
	OneWayPrice    float64
	Price          float64
	Currency       string
	CurrencySymbol string

	Breakdown []Charge
}

// QuoteEvent is published for every quote response so booking systems can reconcile prices.
type QuoteEvent struct {
	ID         string
	IssuedAt   time.Time
	PickupTime time.Time
	Currency   string
	DistanceKm float64
	IsReturn   bool
	Hourly     bool
	Quotes     []QuoteEventLine
}

// QuoteEventLine is the per-category summary inside a QuoteEvent.
type QuoteEventLine struct {
	VehicleCategoryID string
	PricingMethod     PricingMethod
	BasePrice         float64
	Price             float64
}
