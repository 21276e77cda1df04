package domain

import "time"

// VehicleCategory is a bookable class of vehicle (saloon, executive, MPV, ...).
// Each category owns exactly one PricingScheme and zero or more FixedRoutes.
type VehicleCategory struct {
	ID            string
	Name          string
	Description   string
	MaxPassengers int
	MaxLuggage    int
	SortOrder     int
	ImageURL      string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Fits reports whether the category can carry the given party.
func (v *VehicleCategory) Fits(passengers, luggage int) bool {
	return passengers <= v.MaxPassengers && luggage <= v.MaxLuggage
}
