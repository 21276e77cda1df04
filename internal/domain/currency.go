package domain

import "time"

// BaseCurrency is the currency every price is computed in.
const BaseCurrency = "GBP"

// CurrencyRate is the conversion rate from the base currency to Code.
type CurrencyRate struct {
	Code       string
	Symbol     string
	Name       string
	RateToBase float64
	Active     bool
	UpdatedAt  time.Time
}

// BaseCurrencyRate returns the immutable GBP row.
func BaseCurrencyRate() CurrencyRate {
	return CurrencyRate{
		Code:       BaseCurrency,
		Symbol:     "£",
		Name:       "British Pound",
		RateToBase: 1,
		Active:     true,
	}
}
