package service

import "errors"

var (
	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid or incomplete.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropoffLocation is returned when drop-off coordinates are invalid or incomplete.
	ErrInvalidDropoffLocation = errors.New("invalid dropoff location")

	// ErrMissingDistance is returned when a request has neither coordinates nor a distance.
	ErrMissingDistance = errors.New("coordinates or distance_km required")

	// ErrInvalidPassengers is returned when passenger or luggage counts are negative.
	ErrInvalidPassengers = errors.New("invalid passenger or luggage count")

	// ErrInvalidExtras is returned when stops, waiting minutes or seat counts are negative.
	ErrInvalidExtras = errors.New("invalid extras")

	// ErrInvalidChildSeat is returned when a requested child seat does not exist.
	ErrInvalidChildSeat = errors.New("invalid child seat")

	// ErrInvalidHours is returned when an hourly hire has no positive duration.
	ErrInvalidHours = errors.New("invalid hire duration")

	// ErrNoBracketMatch is returned when no mileage bracket covers a distance.
	ErrNoBracketMatch = errors.New("no mileage bracket covers distance")

	// ErrInvalidVehicleCategory is returned when a vehicle category edit is invalid.
	ErrInvalidVehicleCategory = errors.New("invalid vehicle category")

	// ErrInvalidPricingScheme is returned when a pricing scheme edit breaks bracket or fee rules.
	ErrInvalidPricingScheme = errors.New("invalid pricing scheme")

	// ErrInvalidFixedRoute is returned when a fixed route edit is invalid.
	ErrInvalidFixedRoute = errors.New("invalid fixed route")

	// ErrInvalidCurrency is returned when a currency edit is invalid.
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrBaseCurrencyImmutable is returned when an edit would change or remove GBP.
	ErrBaseCurrencyImmutable = errors.New("base currency cannot be changed or removed")

	// ErrInvalidChildSeatConfig is returned when a child seat edit is invalid.
	ErrInvalidChildSeatConfig = errors.New("invalid child seat configuration")

	// ErrPlacesUnavailable is returned when no mapping service is configured.
	ErrPlacesUnavailable = errors.New("place lookup unavailable")

	// ErrInvalidPlaceQuery is returned when a place search input is empty.
	ErrInvalidPlaceQuery = errors.New("invalid place query")
)
