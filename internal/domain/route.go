package domain

import "time"

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Geofence is a circular zone around a point.
type Geofence struct {
	Center      Point
	RadiusMiles float64
}

// FixedRoute is an operator-defined flat price between two geofenced zones.
// When ValidReturn is set the same price applies in the reverse direction.
type FixedRoute struct {
	ID                string
	VehicleCategoryID string
	Name              string
	Start             Geofence
	End               Geofence
	Price             float64
	DistanceMiles     float64 // informational only
	ValidReturn       bool
	Priority          int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
