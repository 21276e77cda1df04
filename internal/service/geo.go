package service

import (
	"math"

	"transfer/internal/domain"
)

const (
	earthRadiusKm = 6371.0
	kmPerMile     = 1.609344
)

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b domain.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// HaversineMiles returns the great-circle distance between two points in miles.
func HaversineMiles(a, b domain.Point) float64 {
	return HaversineKm(a, b) / kmPerMile
}

// KmToMiles converts kilometers to miles.
func KmToMiles(km float64) float64 {
	return km / kmPerMile
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// isValidLatitude checks if latitude is within valid range.
func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90 && !math.IsNaN(lat)
}

// isValidLongitude checks if longitude is within valid range.
func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180 && !math.IsNaN(lng)
}

func isValidPoint(p domain.Point) bool {
	return isValidLatitude(p.Lat) && isValidLongitude(p.Lng)
}
