package service

import (
	"fmt"
	"time"

	"transfer/internal/domain"
)

// FeeInput is everything the calculator needs after the base has been chosen.
type FeeInput struct {
	Base        []domain.Charge // step 1 contribution, already itemised
	Fees        domain.ExtraFees
	MinimumFare float64

	AirportPickup bool
	MeetGreet     bool
	ChildSeats    []float64 // price per seat, one entry per seat
	Stops         int       // pickups including the first
	WaitingMins   int
	PickupTime    time.Time
}

// FeeResult is the priced trip before return and currency handling.
type FeeResult struct {
	Total            float64
	SurchargePercent float64
	MinimumApplied   bool
	Breakdown        []domain.Charge
}

// FeeCalculator applies extras, time surcharges and the minimum fare.
type FeeCalculator struct {
	loc        *time.Location
	nightStart int
	nightEnd   int
}

// NewFeeCalculator creates a new FeeCalculator. Night runs from nightStart
// (inclusive) to nightEnd (exclusive) in loc, wrapping past midnight when
// nightStart > nightEnd.
func NewFeeCalculator(loc *time.Location, nightStart, nightEnd int) *FeeCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &FeeCalculator{loc: loc, nightStart: nightStart, nightEnd: nightEnd}
}

// Apply prices a trip in a fixed order: base, flat extras, percentage
// surcharges on that subtotal, then the minimum fare floor.
func (c *FeeCalculator) Apply(in FeeInput) FeeResult {
	breakdown := make([]domain.Charge, 0, len(in.Base)+6)
	subtotal := 0.0

	add := func(kind domain.ChargeKind, label string, amount float64) {
		if amount == 0 {
			return
		}
		amount = round2(amount)
		subtotal += amount
		breakdown = append(breakdown, domain.Charge{Kind: kind, Label: label, Amount: amount})
	}

	// 1. Base contribution.
	for _, b := range in.Base {
		add(b.Kind, b.Label, b.Amount)
	}

	// 2. Flat extras.
	if in.AirportPickup {
		add(domain.ChargeAirportPickup, "Airport pickup", in.Fees.AirportPickupFee)
	}
	if in.MeetGreet {
		add(domain.ChargeMeetGreet, "Meet & greet", in.Fees.MeetGreetFee)
	}
	for i, price := range in.ChildSeats {
		add(domain.ChargeChildSeat, fmt.Sprintf("Child seat %d", i+1), price)
	}
	if extra := in.Stops - 1; extra > 0 {
		add(domain.ChargeExtraStop, fmt.Sprintf("Additional pickups x%d", extra), in.Fees.AdditionalPickupFee*float64(extra))
	}
	if in.WaitingMins > 0 {
		add(domain.ChargeWaiting, fmt.Sprintf("Waiting %d min", in.WaitingMins), in.Fees.WaitingPerMinute*float64(in.WaitingMins))
	}

	// 3. Time surcharges, additive, applied once to the step 2 subtotal. The
	// combined amount is rounded once; the weekend line takes the remainder
	// so the lines sum to it.
	extrasSubtotal := subtotal
	night := c.IsNight(in.PickupTime) && in.Fees.NightSurchargePercent > 0
	weekend := c.IsWeekend(in.PickupTime) && in.Fees.WeekendSurchargePercent > 0
	percent := 0.0
	if night {
		percent += in.Fees.NightSurchargePercent
	}
	if weekend {
		percent += in.Fees.WeekendSurchargePercent
	}
	combined := round2(extrasSubtotal * percent / 100)
	nightAmount := 0.0
	if night {
		nightAmount = round2(extrasSubtotal * in.Fees.NightSurchargePercent / 100)
		if !weekend {
			nightAmount = combined
		}
		add(domain.ChargeNight, fmt.Sprintf("Night surcharge %g%%", in.Fees.NightSurchargePercent), nightAmount)
	}
	if weekend {
		add(domain.ChargeWeekend, fmt.Sprintf("Weekend surcharge %g%%", in.Fees.WeekendSurchargePercent),
			combined-nightAmount)
	}
	total := round2(subtotal)

	// 4. Minimum fare floor.
	minApplied := false
	if total < in.MinimumFare {
		breakdown = append(breakdown, domain.Charge{
			Kind:   domain.ChargeMinimumTopUp,
			Label:  "Minimum fare adjustment",
			Amount: round2(in.MinimumFare - total),
		})
		total = round2(in.MinimumFare)
		minApplied = true
	}

	return FeeResult{
		Total:            total,
		SurchargePercent: percent,
		MinimumApplied:   minApplied,
		Breakdown:        breakdown,
	}
}

// IsNight reports whether t falls inside the night window in the pricing timezone.
func (c *FeeCalculator) IsNight(t time.Time) bool {
	if c.nightStart == c.nightEnd {
		return false
	}
	h := t.In(c.loc).Hour()
	if c.nightStart > c.nightEnd {
		return h >= c.nightStart || h < c.nightEnd
	}
	return h >= c.nightStart && h < c.nightEnd
}

// IsWeekend reports whether t is a Saturday or Sunday in the pricing timezone.
func (c *FeeCalculator) IsWeekend(t time.Time) bool {
	switch t.In(c.loc).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}
