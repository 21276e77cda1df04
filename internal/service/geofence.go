package service

import "transfer/internal/domain"

// RouteMatch is a fixed route whose geofences contain both trip endpoints.
type RouteMatch struct {
	Route *domain.FixedRoute

	// Reversed is true when the trip runs end-to-start on a ValidReturn route.
	Reversed bool

	// CombinedMiles is the pickup and drop-off distance to their zone centers.
	CombinedMiles float64
}

// MatchFixedRoute returns the fixed route covering pickup and dropoff, if any.
// Candidates are ranked by priority (highest first), then combined distance to
// the zone centers, then route ID. Routes with a negative radius never match.
func MatchFixedRoute(pickup, dropoff domain.Point, routes []*domain.FixedRoute) (RouteMatch, bool) {
	var (
		best  RouteMatch
		found bool
	)

	for _, route := range routes {
		if route == nil || route.Start.RadiusMiles < 0 || route.End.RadiusMiles < 0 {
			continue
		}

		candidate, ok := matchRoute(pickup, dropoff, route)
		if !ok {
			continue
		}

		if !found || betterMatch(candidate, best) {
			best = candidate
			found = true
		}
	}

	return best, found
}

// matchRoute tests the forward pairing and, for ValidReturn routes, the reverse.
func matchRoute(pickup, dropoff domain.Point, route *domain.FixedRoute) (RouteMatch, bool) {
	var (
		match RouteMatch
		ok    bool
	)

	if d, in := pairDistance(pickup, dropoff, route.Start, route.End); in {
		match = RouteMatch{Route: route, CombinedMiles: d}
		ok = true
	}

	if route.ValidReturn {
		if d, in := pairDistance(pickup, dropoff, route.End, route.Start); in && (!ok || d < match.CombinedMiles) {
			match = RouteMatch{Route: route, Reversed: true, CombinedMiles: d}
			ok = true
		}
	}

	return match, ok
}

func pairDistance(pickup, dropoff domain.Point, from, to domain.Geofence) (float64, bool) {
	dPickup := HaversineMiles(pickup, from.Center)
	if dPickup > from.RadiusMiles {
		return 0, false
	}
	dDropoff := HaversineMiles(dropoff, to.Center)
	if dDropoff > to.RadiusMiles {
		return 0, false
	}
	return dPickup + dDropoff, true
}

func betterMatch(a, b RouteMatch) bool {
	if a.Route.Priority != b.Route.Priority {
		return a.Route.Priority > b.Route.Priority
	}
	if a.CombinedMiles != b.CombinedMiles {
		return a.CombinedMiles < b.CombinedMiles
	}
	return a.Route.ID < b.Route.ID
}
