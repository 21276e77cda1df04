package domain

import "time"

// MileageBracket is one distance tier of a PricingScheme, in miles.
// A nil MaxDistance means the bracket is open-ended.
// When both FixedPrice and PerMileRate are set, FixedPrice wins.
type MileageBracket struct {
	MinDistance float64
	MaxDistance *float64
	FixedPrice  *float64
	PerMileRate *float64
}

// Contains reports whether d falls inside [MinDistance, MaxDistance).
func (b MileageBracket) Contains(d float64) bool {
	if d < b.MinDistance {
		return false
	}
	return b.MaxDistance == nil || d < *b.MaxDistance
}

// TimeRates drive duration-based (hourly) hire.
type TimeRates struct {
	HourlyRate   float64
	MinimumHours int
	DailyRate    float64
}

// ExtraFees are the flat and percentage add-ons of a PricingScheme.
type ExtraFees struct {
	AdditionalPickupFee     float64
	WaitingPerMinute        float64
	AirportPickupFee        float64
	MeetGreetFee            float64
	NightSurchargePercent   float64
	WeekendSurchargePercent float64
	ChildSeatFee            float64
}

// PricingScheme is the per-vehicle-category pricing configuration.
type PricingScheme struct {
	VehicleCategoryID string
	Brackets          []MileageBracket
	TimeRates         TimeRates
	ExtraFees         ExtraFees
	BaseFare          float64
	MinimumFare       float64
	UpdatedAt         time.Time
}
