package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"transfer/internal/domain"
	"transfer/internal/handler"
	"transfer/internal/logger"
	"transfer/internal/service"
	"transfer/internal/tests"
)

type routerFixture struct {
	vehicles *tests.MockVehicleRepository
	router   *gin.Engine
}

func newRouterFixture(t *testing.T, redisClient *redis.Client) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}

	vehicles := tests.NewMockVehicleRepository()
	pricing := tests.NewMockPricingRepository()
	routes := tests.NewMockFixedRouteRepository()
	currencies := tests.NewMockCurrencyRepository()
	seats := tests.NewMockChildSeatRepository()

	max5 := 5.0
	fixed40 := 40.0
	perMile := 2.5
	vehicles.AddVehicle(&domain.VehicleCategory{ID: "saloon", Name: "Saloon", MaxPassengers: 4, MaxLuggage: 2, SortOrder: 1, Active: true})
	pricing.AddScheme(&domain.PricingScheme{
		VehicleCategoryID: "saloon",
		Brackets: []domain.MileageBracket{
			{MinDistance: 0, MaxDistance: &max5, FixedPrice: &fixed40},
			{MinDistance: 5, PerMileRate: &perMile},
		},
		MinimumFare: 25,
	})

	converter := service.NewCurrencyConverter(service.CurrencyConverterConfig{
		Source: tests.NewMockRateSource(domain.CurrencyRate{Code: "EUR", Symbol: "€", Name: "Euro", RateToBase: 1.17, Active: true}),
		Log:    log,
	})
	airports := service.NewAirportClassifier(tests.NewMockAirportStore(), 3, log)

	quoteService := service.NewQuoteService(service.QuoteServiceDeps{
		Vehicles:   vehicles,
		Pricing:    pricing,
		Routes:     routes,
		ChildSeats: seats,
		Distance:   service.NewDistanceResolver(nil, nil, 50*time.Millisecond, log),
		Fees:       service.NewFeeCalculator(loc, 22, 6),
		Currency:   converter,
		Airports:   airports,
		Log:        log,
	})
	adminService := service.NewAdminService(vehicles, pricing, routes, currencies, seats, converter, log)

	router := NewRouter(RouterDeps{
		QuoteHandler:   handler.NewQuoteHandler(quoteService),
		AdminHandler:   handler.NewAdminHandler(adminService),
		PlaceHandler:   handler.NewPlaceHandler(service.NewPlaceService(nil, airports)),
		CatalogHandler: handler.NewCatalogHandler(converter, adminService),
		RedisClient:    redisClient,
		Logger:         log,
		AllowOrigins:   "https://book.example.com",
	})
	return &routerFixture{vehicles: vehicles, router: router}
}

func (f *routerFixture) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t, nil)

	w := f.do(http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRouter_CreateQuote(t *testing.T) {
	f := newRouterFixture(t, nil)

	testCases := []struct {
		name         string
		currency     string
		wantPrice    float64
		wantCurrency string
	}{
		{name: "base currency", currency: "", wantPrice: 30, wantCurrency: "GBP"},
		{name: "converted", currency: "EUR", wantPrice: 35.1, wantCurrency: "EUR"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/v1/quotes", map[string]any{
				"distance_km": 12 * 1.609344,
				"pickup_time": "2024-06-12T12:00:00+01:00",
				"currency":    tc.currency,
			}, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}

			var resp handler.QuoteResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Quotes) != 1 {
				t.Fatalf("expected 1 quote, got %d", len(resp.Quotes))
			}
			q := resp.Quotes[0]
			if q.Price != tc.wantPrice {
				t.Errorf("expected price %.2f, got %.2f", tc.wantPrice, q.Price)
			}
			if q.BasePrice != 30 {
				t.Errorf("expected base price 30, got %.2f", q.BasePrice)
			}
			if resp.Currency != tc.wantCurrency {
				t.Errorf("expected currency %s, got %s", tc.wantCurrency, resp.Currency)
			}
			if resp.BaseCurrency != domain.BaseCurrency {
				t.Errorf("expected base currency %s, got %s", domain.BaseCurrency, resp.BaseCurrency)
			}
		})
	}
}

func TestRouter_CreateQuote_BadRequests(t *testing.T) {
	f := newRouterFixture(t, nil)

	testCases := []struct {
		name string
		body any
	}{
		{name: "malformed body", body: "not an object"},
		{name: "half a coordinate", body: map[string]any{"pickup_lat": 51.5, "distance_km": 10}},
		{name: "bad pickup time", body: map[string]any{"distance_km": 10, "pickup_time": "tomorrow"}},
		{name: "no distance", body: map[string]any{"passengers": 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/v1/quotes", tc.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRouter_PlacesUnavailableWithoutProvider(t *testing.T) {
	f := newRouterFixture(t, nil)

	w := f.do(http.MethodGet, "/v1/places/autocomplete?input=heathrow", nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestRouter_ListCurrencies(t *testing.T) {
	f := newRouterFixture(t, nil)

	w := f.do(http.MethodGet, "/v1/currencies", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []handler.CurrencyDTO
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	codes := make(map[string]bool)
	for _, c := range resp {
		codes[c.Code] = true
	}
	if !codes["GBP"] || !codes["EUR"] {
		t.Errorf("expected GBP and EUR, got %v", codes)
	}
}

func TestRouter_AdminVehicleNotFound(t *testing.T) {
	f := newRouterFixture(t, nil)

	w := f.do(http.MethodGet, "/v1/admin/vehicles/unknown", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRouter_AdminWritesAreIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newRouterFixture(t, client)
	body := map[string]any{"name": "Executive", "max_passengers": 3, "max_luggage": 3}
	headers := map[string]string{"Idempotency-Key": "create-exec-1"}

	first := f.do(http.MethodPost, "/v1/admin/vehicles", body, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := f.do(http.MethodPost, "/v1/admin/vehicles", body, headers)
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Error("expected replay header on second response")
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("expected identical bodies, got %s vs %s", first.Body.String(), second.Body.String())
	}
	if f.vehicles.CreateCallCount != 1 {
		t.Errorf("expected 1 create, got %d", f.vehicles.CreateCallCount)
	}

	// A different key is a new write.
	third := f.do(http.MethodPost, "/v1/admin/vehicles", body, map[string]string{"Idempotency-Key": "create-exec-2"})
	if third.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", third.Code)
	}
	if f.vehicles.CreateCallCount != 2 {
		t.Errorf("expected 2 creates, got %d", f.vehicles.CreateCallCount)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newRouterFixture(t, nil)

	w := f.do(http.MethodOptions, "/v1/quotes", nil, map[string]string{"Origin": "https://book.example.com"})
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://book.example.com" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	w = f.do(http.MethodOptions, "/v1/quotes", nil, map[string]string{"Origin": "https://evil.example.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unknown origin, got %q", got)
	}
}
