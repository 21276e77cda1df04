package service

import (
	"math"

	"transfer/internal/domain"
)

// HourlyCharge is the time-based base price of a duration hire.
type HourlyCharge struct {
	BilledHours int
	Days        int
	Amount      float64
}

// PriceHours bills a hire of the given length against a vehicle's time rates.
// Hours round up and never go below MinimumHours. Whole days bill at DailyRate
// when one is set, and the remaining hours never cost more than a day.
// ok is false when the vehicle has no time rates.
func PriceHours(hours float64, rates domain.TimeRates) (HourlyCharge, bool) {
	if rates.HourlyRate <= 0 && rates.DailyRate <= 0 {
		return HourlyCharge{}, false
	}

	billed := int(math.Ceil(hours))
	if billed < rates.MinimumHours {
		billed = rates.MinimumHours
	}
	if billed < 1 {
		billed = 1
	}

	if rates.DailyRate <= 0 {
		return HourlyCharge{BilledHours: billed, Amount: round2(float64(billed) * rates.HourlyRate)}, true
	}

	days := billed / 24
	rem := billed % 24
	amount := float64(days) * rates.DailyRate
	if rem > 0 {
		partial := rates.DailyRate
		if rates.HourlyRate > 0 {
			partial = math.Min(float64(rem)*rates.HourlyRate, rates.DailyRate)
		}
		amount += partial
	}

	return HourlyCharge{BilledHours: billed, Days: days, Amount: round2(amount)}, true
}
