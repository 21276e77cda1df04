package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"transfer/internal/domain"
	"transfer/internal/logger"
	"transfer/internal/service"
)

// ──────────────────────────────────────────────
// MILEAGE BRACKETS
// ──────────────────────────────────────────────

func TestResolveBracket_ExclusiveUpperBound(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		miles  float64
		amount float64
		fixed  bool
	}{
		{"zero distance", 0, 40, true},
		{"inside first bracket", 4.99, 40, true},
		{"boundary belongs to next bracket", 5, 12.5, false},
		{"example 12 miles", 12, 30, false},
		{"upper boundary of middle bracket", 20, 40, false},
		{"open-ended bracket", 100, 200, false},
		{"negative clamps to zero", -3, 40, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.ResolveBracket(tc.miles, exampleBrackets())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if round2(got.Amount) != tc.amount {
				t.Errorf("expected %.2f, got %.2f", tc.amount, got.Amount)
			}
			if got.Fixed != tc.fixed {
				t.Errorf("expected fixed=%v, got %v", tc.fixed, got.Fixed)
			}
		})
	}
}

func TestResolveBracket_FixedPriceWinsOverRate(t *testing.T) {
	t.Parallel()

	brackets := []domain.MileageBracket{
		{MinDistance: 0, FixedPrice: floatPtr(50), PerMileRate: floatPtr(1)},
	}
	got, err := service.ResolveBracket(30, brackets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Amount != 50 || !got.Fixed {
		t.Errorf("expected fixed 50, got %.2f fixed=%v", got.Amount, got.Fixed)
	}
}

func TestResolveBracket_GapReturnsNoMatch(t *testing.T) {
	t.Parallel()

	brackets := []domain.MileageBracket{
		{MinDistance: 0, MaxDistance: floatPtr(5), FixedPrice: floatPtr(20)},
	}
	_, err := service.ResolveBracket(8, brackets)
	if !errors.Is(err, service.ErrNoBracketMatch) {
		t.Errorf("expected ErrNoBracketMatch, got %v", err)
	}
}

// ──────────────────────────────────────────────
// GEOFENCE MATCHING
// ──────────────────────────────────────────────

func TestMatchFixedRoute_InsideBothZones(t *testing.T) {
	t.Parallel()

	route := londonCityToHeathrow()
	pickup := domain.Point{Lat: 51.5060, Lng: 0.0400}
	dropoff := domain.Point{Lat: 51.4710, Lng: -0.4500}

	m, ok := service.MatchFixedRoute(pickup, dropoff, []*domain.FixedRoute{route})
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Route.ID != route.ID || m.Reversed {
		t.Errorf("expected forward match on %s, got %+v", route.ID, m)
	}
}

func TestMatchFixedRoute_ReverseRequiresValidReturn(t *testing.T) {
	t.Parallel()

	route := londonCityToHeathrow()

	if _, ok := service.MatchFixedRoute(heathrow, londonCity, []*domain.FixedRoute{route}); ok {
		t.Fatal("expected no match in reverse without ValidReturn")
	}

	route.ValidReturn = true
	m, ok := service.MatchFixedRoute(heathrow, londonCity, []*domain.FixedRoute{route})
	if !ok || !m.Reversed {
		t.Fatalf("expected reversed match, got ok=%v %+v", ok, m)
	}
}

func TestMatchFixedRoute_OutsideZone(t *testing.T) {
	t.Parallel()

	if _, ok := service.MatchFixedRoute(charingX, heathrow, []*domain.FixedRoute{londonCityToHeathrow()}); ok {
		t.Error("expected Charing Cross to fall outside the London City zone")
	}
}

func TestMatchFixedRoute_NegativeRadiusNeverMatches(t *testing.T) {
	t.Parallel()

	route := londonCityToHeathrow()
	route.Start.RadiusMiles = -1

	if _, ok := service.MatchFixedRoute(londonCity, heathrow, []*domain.FixedRoute{route}); ok {
		t.Error("expected no match for negative radius")
	}
}

func TestMatchFixedRoute_TieBreak(t *testing.T) {
	t.Parallel()

	wide := londonCityToHeathrow()
	wide.ID = "b-wide"
	wide.Start.Center = domain.Point{Lat: 51.5100, Lng: 0.0300}

	exact := londonCityToHeathrow()
	exact.ID = "c-exact"

	twin := londonCityToHeathrow()
	twin.ID = "a-twin"

	t.Run("priority wins", func(t *testing.T) {
		hi := *wide
		hi.Priority = 5
		m, ok := service.MatchFixedRoute(londonCity, heathrow, []*domain.FixedRoute{exact, &hi})
		if !ok || m.Route.ID != "b-wide" {
			t.Errorf("expected higher priority b-wide, got %+v", m.Route)
		}
	})

	t.Run("closer zone centers win", func(t *testing.T) {
		m, ok := service.MatchFixedRoute(londonCity, heathrow, []*domain.FixedRoute{wide, exact})
		if !ok || m.Route.ID != "c-exact" {
			t.Errorf("expected c-exact, got %+v", m.Route)
		}
	})

	t.Run("lowest id breaks a full tie", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			m, ok := service.MatchFixedRoute(londonCity, heathrow, []*domain.FixedRoute{exact, twin})
			if !ok || m.Route.ID != "a-twin" {
				t.Fatalf("expected a-twin on iteration %d, got %+v", i, m.Route)
			}
		}
	})
}

// ──────────────────────────────────────────────
// FEES AND SURCHARGES
// ──────────────────────────────────────────────

func TestFeeCalculator_SurchargesAreAdditive(t *testing.T) {
	t.Parallel()

	calc := service.NewFeeCalculator(londonTime(), 22, 6)
	res := calc.Apply(service.FeeInput{
		Base:       []domain.Charge{{Kind: domain.ChargeMileage, Amount: 30}},
		Fees:       saloonScheme().ExtraFees,
		PickupTime: saturdayLate(),
	})

	if res.SurchargePercent != 30 {
		t.Errorf("expected 30%% total surcharge, got %v", res.SurchargePercent)
	}
	// 30 * 1.3 = 39; compounding would give 30 * 1.2 * 1.1 = 39.60.
	if res.Total != 39 {
		t.Errorf("expected 39.00, got %.2f", res.Total)
	}
	if _, ok := hasCharge(res.Breakdown, domain.ChargeNight); !ok {
		t.Error("expected night surcharge line")
	}
	if _, ok := hasCharge(res.Breakdown, domain.ChargeWeekend); !ok {
		t.Error("expected weekend surcharge line")
	}
}

func TestFeeCalculator_CombinedSurchargeRoundedOnce(t *testing.T) {
	t.Parallel()

	calc := service.NewFeeCalculator(londonTime(), 22, 6)
	testCases := []struct {
		base float64
		want float64
	}{
		{base: 10.02, want: 13.03}, // 10.02 * 0.3 = 3.006
		{base: 25.12, want: 32.66}, // 7.536
		{base: 7.72, want: 10.04},  // 2.316
		{base: 30, want: 39},
	}

	for _, tc := range testCases {
		res := calc.Apply(service.FeeInput{
			Base:       []domain.Charge{{Kind: domain.ChargeMileage, Amount: tc.base}},
			Fees:       saloonScheme().ExtraFees,
			PickupTime: saturdayLate(),
		})
		if res.Total != tc.want {
			t.Errorf("base %.2f: expected %.2f, got %.2f", tc.base, tc.want, res.Total)
		}

		sum := 0.0
		for _, c := range res.Breakdown {
			sum += c.Amount
		}
		if round2(sum) != res.Total {
			t.Errorf("base %.2f: breakdown sums to %.2f, total %.2f", tc.base, round2(sum), res.Total)
		}
	}
}

func TestFeeCalculator_SurchargeCoversExtras(t *testing.T) {
	t.Parallel()

	calc := service.NewFeeCalculator(londonTime(), 22, 6)
	res := calc.Apply(service.FeeInput{
		Base:          []domain.Charge{{Kind: domain.ChargeMileage, Amount: 30}},
		Fees:          saloonScheme().ExtraFees,
		AirportPickup: true,
		PickupTime:    saturdayLate(),
	})

	// (30 + 5) * 1.3
	if res.Total != 45.5 {
		t.Errorf("expected 45.50, got %.2f", res.Total)
	}
}

func TestFeeCalculator_ExtrasOrder(t *testing.T) {
	t.Parallel()

	calc := service.NewFeeCalculator(londonTime(), 22, 6)
	res := calc.Apply(service.FeeInput{
		Base:          []domain.Charge{{Kind: domain.ChargeMileage, Amount: 30}},
		Fees:          saloonScheme().ExtraFees,
		AirportPickup: true,
		MeetGreet:     true,
		ChildSeats:    []float64{12, 7.5},
		Stops:         3,
		WaitingMins:   10,
		PickupTime:    weekdayNoon(),
	})

	wantKinds := []domain.ChargeKind{
		domain.ChargeMileage,
		domain.ChargeAirportPickup,
		domain.ChargeMeetGreet,
		domain.ChargeChildSeat,
		domain.ChargeChildSeat,
		domain.ChargeExtraStop,
		domain.ChargeWaiting,
	}
	if len(res.Breakdown) != len(wantKinds) {
		t.Fatalf("expected %d lines, got %d: %+v", len(wantKinds), len(res.Breakdown), res.Breakdown)
	}
	for i, kind := range wantKinds {
		if res.Breakdown[i].Kind != kind {
			t.Errorf("line %d: expected %s, got %s", i, kind, res.Breakdown[i].Kind)
		}
	}

	// 30 + 5 + 10 + 12 + 7.5 + 2*8 + 10*0.5
	if res.Total != 85.5 {
		t.Errorf("expected 85.50, got %.2f", res.Total)
	}
}

func TestFeeCalculator_MinimumFareFloor(t *testing.T) {
	t.Parallel()

	calc := service.NewFeeCalculator(londonTime(), 22, 6)
	res := calc.Apply(service.FeeInput{
		Base:        []domain.Charge{{Kind: domain.ChargeMileage, Amount: 15}},
		MinimumFare: 25,
		PickupTime:  weekdayNoon(),
	})

	if res.Total != 25 || !res.MinimumApplied {
		t.Fatalf("expected floor at 25, got %.2f applied=%v", res.Total, res.MinimumApplied)
	}
	top, ok := hasCharge(res.Breakdown, domain.ChargeMinimumTopUp)
	if !ok || top.Amount != 10 {
		t.Errorf("expected 10.00 adjustment line, got %+v", top)
	}
}

func TestFeeCalculator_MinimumFareDoesNotRaiseHigherTotal(t *testing.T) {
	t.Parallel()

	calc := service.NewFeeCalculator(londonTime(), 22, 6)
	res := calc.Apply(service.FeeInput{
		Base:        []domain.Charge{{Kind: domain.ChargeMileage, Amount: 30}},
		MinimumFare: 25,
		PickupTime:  weekdayNoon(),
	})
	if res.Total != 30 || res.MinimumApplied {
		t.Errorf("expected 30 untouched, got %.2f applied=%v", res.Total, res.MinimumApplied)
	}
}

func TestFeeCalculator_NightWindow(t *testing.T) {
	t.Parallel()

	calc := service.NewFeeCalculator(londonTime(), 22, 6)
	loc := londonTime()

	testCases := []struct {
		hour, minute int
		night        bool
	}{
		{21, 59, false},
		{22, 0, true},
		{3, 15, true},
		{5, 59, true},
		{6, 0, false},
	}
	for _, tc := range testCases {
		at := time.Date(2024, time.June, 12, tc.hour, tc.minute, 0, 0, loc)
		if got := calc.IsNight(at); got != tc.night {
			t.Errorf("%02d:%02d: expected night=%v, got %v", tc.hour, tc.minute, tc.night, got)
		}
	}
}

func TestFeeCalculator_UsesPricingTimezone(t *testing.T) {
	t.Parallel()

	calc := service.NewFeeCalculator(londonTime(), 22, 6)

	// 21:30 UTC in June is 22:30 in London.
	at := time.Date(2024, time.June, 12, 21, 30, 0, 0, time.UTC)
	if !calc.IsNight(at) {
		t.Error("expected London night for 21:30 UTC in summer")
	}

	// Sunday 23:30 UTC is already Monday 00:30 in London.
	monday := time.Date(2024, time.June, 16, 23, 30, 0, 0, time.UTC)
	if calc.IsWeekend(monday) {
		t.Error("expected Monday in London not to be weekend")
	}
}

// ──────────────────────────────────────────────
// HOURLY HIRE
// ──────────────────────────────────────────────

func TestPriceHours(t *testing.T) {
	t.Parallel()

	rates := saloonScheme().TimeRates

	testCases := []struct {
		name   string
		hours  float64
		billed int
		amount float64
	}{
		{"rounds up", 3.5, 4, 140},
		{"minimum hours", 1, 2, 70},
		{"partial day capped at daily rate", 8, 8, 250},
		{"day plus hours", 30, 30, 460},
		{"two whole days", 48, 48, 500},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := service.PriceHours(tc.hours, rates)
			if !ok {
				t.Fatal("expected time rates to apply")
			}
			if got.BilledHours != tc.billed {
				t.Errorf("expected %d billed hours, got %d", tc.billed, got.BilledHours)
			}
			if got.Amount != tc.amount {
				t.Errorf("expected %.2f, got %.2f", tc.amount, got.Amount)
			}
		})
	}
}

func TestPriceHours_NoRates(t *testing.T) {
	t.Parallel()

	if _, ok := service.PriceHours(4, domain.TimeRates{}); ok {
		t.Error("expected no hourly price without rates")
	}
}

// ──────────────────────────────────────────────
// DISTANCE RESOLUTION
// ──────────────────────────────────────────────

func TestDistanceResolver_FallbackIsDeterministic(t *testing.T) {
	t.Parallel()

	provider := NewMockDistanceProvider(0, 0)
	provider.SetFailure(ErrMockTimeout)
	resolver := service.NewDistanceResolver(provider, nil, time.Second, logger.Discard())

	first := resolver.Resolve(context.Background(), heathrow, charingX)
	second := resolver.Resolve(context.Background(), heathrow, charingX)

	if first != second {
		t.Fatalf("expected identical estimates, got %+v and %+v", first, second)
	}
	if first.Source != domain.DistanceSourceEstimate {
		t.Errorf("expected estimate source, got %s", first.Source)
	}

	want := service.HaversineKm(heathrow, charingX) * service.RoadDistortionFactor
	if first.DistanceKm != want {
		t.Errorf("expected %.4f km, got %.4f", want, first.DistanceKm)
	}
	if first.DurationMinutes != want*1.5 {
		t.Errorf("expected %.4f min, got %.4f", want*1.5, first.DurationMinutes)
	}
	// Straight line is roughly 23 km.
	if first.DistanceKm < 28 || first.DistanceKm > 31 {
		t.Errorf("fallback distance out of expected range: %.2f", first.DistanceKm)
	}
}

func TestDistanceResolver_TimeoutFallsBack(t *testing.T) {
	t.Parallel()

	provider := NewMockDistanceProvider(25, 40)
	provider.Delay = 500 * time.Millisecond
	resolver := service.NewDistanceResolver(provider, nil, 20*time.Millisecond, logger.Discard())

	start := time.Now()
	got := resolver.Resolve(context.Background(), heathrow, charingX)

	if got.Source != domain.DistanceSourceEstimate {
		t.Errorf("expected fallback after timeout, got %s", got.Source)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("resolver waited too long: %v", elapsed)
	}
}

func TestDistanceResolver_ProviderAndCache(t *testing.T) {
	t.Parallel()

	provider := NewMockDistanceProvider(25.3, 41)
	cache := NewMockDistanceCache()
	resolver := service.NewDistanceResolver(provider, cache, time.Second, logger.Discard())

	got := resolver.Resolve(context.Background(), heathrow, charingX)
	if got.Source != domain.DistanceSourceProvider || got.DistanceKm != 25.3 {
		t.Fatalf("expected provider estimate, got %+v", got)
	}

	// Second lookup is served from cache even if the provider breaks.
	provider.SetFailure(ErrMockTimeout)
	again := resolver.Resolve(context.Background(), heathrow, charingX)
	if again.DistanceKm != 25.3 {
		t.Errorf("expected cached 25.3 km, got %+v", again)
	}
	if provider.CallCount != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.CallCount)
	}
	if cache.SetCallCount != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.SetCallCount)
	}
}
