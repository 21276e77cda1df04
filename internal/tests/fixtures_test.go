package tests

import (
	"math"
	"time"
	_ "time/tzdata"

	"transfer/internal/domain"
	"transfer/internal/logger"
	"transfer/internal/service"
)

// ──────────────────────────────────────────────
// FIXTURES
// ──────────────────────────────────────────────

var (
	londonCity = domain.Point{Lat: 51.5048, Lng: 0.0495}
	heathrow   = domain.Point{Lat: 51.4700, Lng: -0.4543}
	charingX   = domain.Point{Lat: 51.5074, Lng: -0.1278}
)

func floatPtr(v float64) *float64 { return &v }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func milesToKm(mi float64) float64 { return mi * 1.609344 }

func londonTime() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
	return loc
}

// weekdayNoon is Wednesday 12 June 2024, 12:00 London: no time surcharges.
func weekdayNoon() time.Time {
	return time.Date(2024, time.June, 12, 12, 0, 0, 0, londonTime())
}

// saturdayLate is Saturday 15 June 2024, 23:30 London: night and weekend.
func saturdayLate() time.Time {
	return time.Date(2024, time.June, 15, 23, 30, 0, 0, londonTime())
}

// exampleBrackets is {0-5mi: fixed £40}, {5-20mi: £2.50/mi}, {20+: £2.00/mi}.
func exampleBrackets() []domain.MileageBracket {
	return []domain.MileageBracket{
		{MinDistance: 0, MaxDistance: floatPtr(5), FixedPrice: floatPtr(40)},
		{MinDistance: 5, MaxDistance: floatPtr(20), PerMileRate: floatPtr(2.5)},
		{MinDistance: 20, PerMileRate: floatPtr(2.0)},
	}
}

func saloon() *domain.VehicleCategory {
	return &domain.VehicleCategory{
		ID:            "saloon",
		Name:          "Saloon",
		MaxPassengers: 4,
		MaxLuggage:    2,
		SortOrder:     1,
		Active:        true,
	}
}

func mpv() *domain.VehicleCategory {
	return &domain.VehicleCategory{
		ID:            "mpv",
		Name:          "People Carrier",
		MaxPassengers: 7,
		MaxLuggage:    6,
		SortOrder:     2,
		Active:        true,
	}
}

func saloonScheme() *domain.PricingScheme {
	return &domain.PricingScheme{
		VehicleCategoryID: "saloon",
		Brackets:          exampleBrackets(),
		TimeRates:         domain.TimeRates{HourlyRate: 35, MinimumHours: 2, DailyRate: 250},
		ExtraFees: domain.ExtraFees{
			AdditionalPickupFee:     8,
			WaitingPerMinute:        0.5,
			AirportPickupFee:        5,
			MeetGreetFee:            10,
			NightSurchargePercent:   20,
			WeekendSurchargePercent: 10,
			ChildSeatFee:            7.5,
		},
		MinimumFare: 25,
	}
}

func mpvScheme() *domain.PricingScheme {
	return &domain.PricingScheme{
		VehicleCategoryID: "mpv",
		Brackets: []domain.MileageBracket{
			{MinDistance: 0, MaxDistance: floatPtr(10), PerMileRate: floatPtr(3)},
			{MinDistance: 10, PerMileRate: floatPtr(2.8)},
		},
		BaseFare:    5,
		MinimumFare: 35,
	}
}

func londonCityToHeathrow() *domain.FixedRoute {
	return &domain.FixedRoute{
		ID:                "route-lcy-lhr",
		VehicleCategoryID: "saloon",
		Name:              "London City to Heathrow",
		Start:             domain.Geofence{Center: londonCity, RadiusMiles: 3},
		End:               domain.Geofence{Center: heathrow, RadiusMiles: 3},
		Price:             65,
	}
}

// quoteFixture wires a QuoteService over in-memory collaborators.
type quoteFixture struct {
	vehicles   *MockVehicleRepository
	pricing    *MockPricingRepository
	routes     *MockFixedRouteRepository
	childSeats *MockChildSeatRepository
	provider   *MockDistanceProvider
	airports   *MockAirportStore
	rates      *MockRateSource
	publisher  *MockQuotePublisher
}

func newQuoteFixture() *quoteFixture {
	f := &quoteFixture{
		vehicles:   NewMockVehicleRepository(),
		pricing:    NewMockPricingRepository(),
		routes:     NewMockFixedRouteRepository(),
		childSeats: NewMockChildSeatRepository(),
		provider:   NewMockDistanceProvider(0, 0),
		airports:   NewMockAirportStore(),
		rates: NewMockRateSource(
			domain.CurrencyRate{Code: "EUR", Symbol: "€", Name: "Euro", RateToBase: 1.17, Active: true},
			domain.CurrencyRate{Code: "USD", Symbol: "$", Name: "US Dollar", RateToBase: 1.27, Active: true},
		),
		publisher: NewMockQuotePublisher(),
	}
	f.provider.SetFailure(ErrMockTimeout)

	f.vehicles.AddVehicle(saloon())
	f.vehicles.AddVehicle(mpv())
	f.pricing.AddScheme(saloonScheme())
	f.pricing.AddScheme(mpvScheme())
	return f
}

func (f *quoteFixture) service() *service.QuoteService {
	log := logger.Discard()
	return service.NewQuoteService(service.QuoteServiceDeps{
		Vehicles:   f.vehicles,
		Pricing:    f.pricing,
		Routes:     f.routes,
		ChildSeats: f.childSeats,
		Distance:   service.NewDistanceResolver(f.provider, nil, 50*time.Millisecond, log),
		Fees:       service.NewFeeCalculator(londonTime(), 22, 6),
		Currency:   service.NewCurrencyConverter(service.CurrencyConverterConfig{Source: f.rates, Log: log}),
		Airports:   service.NewAirportClassifier(f.airports, 3, log),
		Publisher:  f.publisher,
		Log:        log,
	})
}

func findQuote(quotes []domain.Quote, vehicleID string) *domain.Quote {
	for i := range quotes {
		if quotes[i].VehicleCategoryID == vehicleID {
			return &quotes[i]
		}
	}
	return nil
}

func hasCharge(breakdown []domain.Charge, kind domain.ChargeKind) (domain.Charge, bool) {
	for _, c := range breakdown {
		if c.Kind == kind {
			return c, true
		}
	}
	return domain.Charge{}, false
}
