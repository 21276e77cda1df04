package tests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"transfer/internal/domain"
	"transfer/internal/redis"
	"transfer/internal/repository"
	"transfer/internal/service"
)

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.VehicleCategory

	// Counters for verification
	CreateCallCount int32
	GetAllCallCount int32

	// Error injection
	CreateError error
	GetAllError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.VehicleCategory),
	}
}

// AddVehicle adds a vehicle category to the mock repository.
func (m *MockVehicleRepository) AddVehicle(v *domain.VehicleCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
}

func (m *MockVehicleRepository) Create(ctx context.Context, v *domain.VehicleCategory) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *v
	m.vehicles[v.ID] = &copy
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.VehicleCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *v
	return &copy, nil
}

func (m *MockVehicleRepository) GetAll(ctx context.Context) ([]*domain.VehicleCategory, error) {
	atomic.AddInt32(&m.GetAllCallCount, 1)
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.VehicleCategory, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		copy := *v
		result = append(result, &copy)
	}
	// Map order is random; the service must not rely on it but assertions are easier sorted.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockVehicleRepository) Update(ctx context.Context, v *domain.VehicleCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *v
	m.vehicles[v.ID] = &copy
	return nil
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.vehicles, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PRICING REPOSITORY
// ──────────────────────────────────────────────

// MockPricingRepository is a mock implementation of PricingRepository.
type MockPricingRepository struct {
	mu      sync.RWMutex
	schemes map[string]*domain.PricingScheme

	// Counters
	GetCallCount  int32
	SaveCallCount int32

	// Error injection
	GetError  error
	SaveError error

	// Delay simulates a slow database for concurrency tests.
	Delay time.Duration
}

// NewMockPricingRepository creates a new mock pricing repository.
func NewMockPricingRepository() *MockPricingRepository {
	return &MockPricingRepository{
		schemes: make(map[string]*domain.PricingScheme),
	}
}

// AddScheme adds a pricing scheme to the mock repository.
func (m *MockPricingRepository) AddScheme(s *domain.PricingScheme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemes[s.VehicleCategoryID] = s
}

func (m *MockPricingRepository) GetByVehicleID(ctx context.Context, vehicleID string) (*domain.PricingScheme, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schemes[vehicleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *s
	copy.Brackets = append([]domain.MileageBracket(nil), s.Brackets...)
	return &copy, nil
}

func (m *MockPricingRepository) Save(ctx context.Context, s *domain.PricingScheme) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *s
	m.schemes[s.VehicleCategoryID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK FIXED ROUTE REPOSITORY
// ──────────────────────────────────────────────

// MockFixedRouteRepository is a mock implementation of FixedRouteRepository.
type MockFixedRouteRepository struct {
	mu     sync.RWMutex
	routes map[string]*domain.FixedRoute

	// Error injection
	ListError error
}

// NewMockFixedRouteRepository creates a new mock fixed route repository.
func NewMockFixedRouteRepository() *MockFixedRouteRepository {
	return &MockFixedRouteRepository{
		routes: make(map[string]*domain.FixedRoute),
	}
}

// AddRoute adds a fixed route to the mock repository.
func (m *MockFixedRouteRepository) AddRoute(r *domain.FixedRoute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[r.ID] = r
}

func (m *MockFixedRouteRepository) Create(ctx context.Context, r *domain.FixedRoute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *r
	m.routes[r.ID] = &copy
	return nil
}

func (m *MockFixedRouteRepository) GetByID(ctx context.Context, id string) (*domain.FixedRoute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.routes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *r
	return &copy, nil
}

func (m *MockFixedRouteRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]*domain.FixedRoute, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.FixedRoute
	for _, r := range m.routes {
		if r.VehicleCategoryID == vehicleID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockFixedRouteRepository) Update(ctx context.Context, r *domain.FixedRoute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[r.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *r
	m.routes[r.ID] = &copy
	return nil
}

func (m *MockFixedRouteRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.routes, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CURRENCY REPOSITORY
// ──────────────────────────────────────────────

// MockCurrencyRepository is a mock implementation of CurrencyRepository.
type MockCurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[string]*domain.CurrencyRate

	// Counters
	GetAllCallCount int32
	UpsertCallCount int32

	// Error injection
	GetAllError error
}

// NewMockCurrencyRepository creates a new mock currency repository seeded with GBP.
func NewMockCurrencyRepository() *MockCurrencyRepository {
	gbp := domain.BaseCurrencyRate()
	return &MockCurrencyRepository{
		currencies: map[string]*domain.CurrencyRate{gbp.Code: &gbp},
	}
}

// AddCurrency adds a currency to the mock repository.
func (m *MockCurrencyRepository) AddCurrency(c *domain.CurrencyRate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currencies[c.Code] = c
}

// SetGetAllError swaps the injected GetAll error.
func (m *MockCurrencyRepository) SetGetAllError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetAllError = err
}

func (m *MockCurrencyRepository) GetAll(ctx context.Context) ([]*domain.CurrencyRate, error) {
	atomic.AddInt32(&m.GetAllCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	result := make([]*domain.CurrencyRate, 0, len(m.currencies))
	for _, c := range m.currencies {
		copy := *c
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *MockCurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.CurrencyRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.currencies[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (m *MockCurrencyRepository) Upsert(ctx context.Context, c *domain.CurrencyRate) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *c
	m.currencies[c.Code] = &copy
	return nil
}

func (m *MockCurrencyRepository) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.currencies[code]; !ok {
		return repository.ErrNotFound
	}
	delete(m.currencies, code)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CHILD SEAT REPOSITORY
// ──────────────────────────────────────────────

// MockChildSeatRepository is a mock implementation of ChildSeatRepository.
type MockChildSeatRepository struct {
	mu    sync.RWMutex
	seats map[string]*domain.ChildSeat
}

// NewMockChildSeatRepository creates a new mock child seat repository.
func NewMockChildSeatRepository() *MockChildSeatRepository {
	return &MockChildSeatRepository{
		seats: make(map[string]*domain.ChildSeat),
	}
}

// AddSeat adds a child seat to the mock repository.
func (m *MockChildSeatRepository) AddSeat(s *domain.ChildSeat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats[s.ID] = s
}

func (m *MockChildSeatRepository) GetAll(ctx context.Context) ([]*domain.ChildSeat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ChildSeat, 0, len(m.seats))
	for _, s := range m.seats {
		copy := *s
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockChildSeatRepository) GetByID(ctx context.Context, id string) (*domain.ChildSeat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.seats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (m *MockChildSeatRepository) Upsert(ctx context.Context, s *domain.ChildSeat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *s
	m.seats[s.ID] = &copy
	return nil
}

func (m *MockChildSeatRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seats[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.seats, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK DISTANCE PROVIDER
// ──────────────────────────────────────────────

// MockDistanceProvider is a mock mapping collaborator.
type MockDistanceProvider struct {
	mu sync.Mutex

	// Control behavior
	Result domain.TravelEstimate
	Err    error
	Delay  time.Duration

	// Counters
	CallCount int32
}

// NewMockDistanceProvider creates a provider that always answers with km and minutes.
func NewMockDistanceProvider(km, minutes float64) *MockDistanceProvider {
	return &MockDistanceProvider{
		Result: domain.TravelEstimate{DistanceKm: km, DurationMinutes: minutes},
	}
}

func (m *MockDistanceProvider) Distance(ctx context.Context, from, to domain.Point) (domain.TravelEstimate, error) {
	atomic.AddInt32(&m.CallCount, 1)
	m.mu.Lock()
	delay, result, err := m.Delay, m.Result, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return domain.TravelEstimate{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.TravelEstimate{}, err
	}
	return result, nil
}

// SetFailure configures the provider to fail.
func (m *MockDistanceProvider) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// ──────────────────────────────────────────────
// MOCK DISTANCE CACHE
// ──────────────────────────────────────────────

// MockDistanceCache is a mock implementation of DistanceCacheInterface.
type MockDistanceCache struct {
	mu      sync.Mutex
	entries map[[2]domain.Point]domain.TravelEstimate

	// Counters
	SetCallCount int32
}

// NewMockDistanceCache creates a new mock distance cache.
func NewMockDistanceCache() *MockDistanceCache {
	return &MockDistanceCache{
		entries: make(map[[2]domain.Point]domain.TravelEstimate),
	}
}

func (m *MockDistanceCache) GetDistance(ctx context.Context, from, to domain.Point) (*domain.TravelEstimate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[[2]domain.Point{from, to}]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MockDistanceCache) SetDistance(ctx context.Context, from, to domain.Point, estimate domain.TravelEstimate) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[[2]domain.Point{from, to}] = estimate
	return nil
}

// ──────────────────────────────────────────────
// MOCK RATE SOURCE
// ──────────────────────────────────────────────

// MockRateSource is a mock exchange rate feed.
type MockRateSource struct {
	mu    sync.Mutex
	rates []domain.CurrencyRate
	err   error

	// Counters
	FetchCallCount int32
}

// NewMockRateSource creates a source answering with rates.
func NewMockRateSource(rates ...domain.CurrencyRate) *MockRateSource {
	return &MockRateSource{rates: rates}
}

// SetRates replaces the rate table.
func (m *MockRateSource) SetRates(rates ...domain.CurrencyRate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = rates
}

// SetFailure configures the source to fail.
func (m *MockRateSource) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockRateSource) FetchRates(ctx context.Context) ([]domain.CurrencyRate, error) {
	atomic.AddInt32(&m.FetchCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.CurrencyRate(nil), m.rates...), nil
}

// ──────────────────────────────────────────────
// MOCK RATE CACHE
// ──────────────────────────────────────────────

// MockRateCache is a mock implementation of RateCacheInterface.
type MockRateCache struct {
	mu        sync.Mutex
	rates     []domain.CurrencyRate
	fetchedAt time.Time

	// Counters
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockRateCache creates a new empty mock rate cache.
func NewMockRateCache() *MockRateCache {
	return &MockRateCache{}
}

func (m *MockRateCache) GetRates(ctx context.Context) ([]domain.CurrencyRate, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rates == nil {
		return nil, time.Time{}, nil
	}
	return append([]domain.CurrencyRate(nil), m.rates...), m.fetchedAt, nil
}

func (m *MockRateCache) SetRates(ctx context.Context, rates []domain.CurrencyRate, fetchedAt time.Time, ttl time.Duration) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append([]domain.CurrencyRate(nil), rates...)
	m.fetchedAt = fetchedAt
	return nil
}

func (m *MockRateCache) InvalidateRates(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = nil
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

type mockLock struct {
	token  string
	expiry time.Time
}

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]mockLock
	seq   int

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]mockLock),
	}
}

func (m *MockLockStore) AcquireRefreshLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:refresh:" + name
	if held, exists := m.locks[key]; exists {
		if time.Now().Before(held.expiry) {
			return "", false, nil // Lock still held.
		}
	}

	m.seq++
	token := fmt.Sprintf("token-%d", m.seq)
	m.locks[key] = mockLock{token: token, expiry: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockLockStore) ReleaseRefreshLock(ctx context.Context, name, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	key := "lock:refresh:" + name
	if held, exists := m.locks[key]; exists && held.token == token {
		delete(m.locks, key)
	}
	return nil
}

// IsLocked checks if a refresh lock is held (for test assertions).
func (m *MockLockStore) IsLocked(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, exists := m.locks["lock:refresh:"+name]
	return exists && time.Now().Before(held.expiry)
}

// ──────────────────────────────────────────────
// MOCK AIRPORT STORE
// ──────────────────────────────────────────────

// MockAirportStore is a mock implementation of AirportStoreInterface.
// Unlike the location mock it filters by real distance.
type MockAirportStore struct {
	mu       sync.RWMutex
	airports map[string]redis.AirportLocation

	// Error injection
	FindError error
}

// NewMockAirportStore creates a new mock airport store.
func NewMockAirportStore() *MockAirportStore {
	return &MockAirportStore{
		airports: make(map[string]redis.AirportLocation),
	}
}

func (m *MockAirportStore) UpsertAirport(ctx context.Context, code string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.airports[code] = redis.AirportLocation{Code: code, Lat: lat, Lng: lng}
	return nil
}

func (m *MockAirportStore) FindNearbyAirports(ctx context.Context, lat, lng, radiusKm float64) ([]redis.AirportLocation, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []redis.AirportLocation
	for _, a := range m.airports {
		d := service.HaversineKm(domain.Point{Lat: lat, Lng: lng}, domain.Point{Lat: a.Lat, Lng: a.Lng})
		if d <= radiusKm {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *MockAirportStore) RemoveAirport(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.airports, code)
	return nil
}

// ──────────────────────────────────────────────
// MOCK QUOTE PUBLISHER
// ──────────────────────────────────────────────

// MockQuotePublisher records published quote events.
type MockQuotePublisher struct {
	mu     sync.Mutex
	events []domain.QuoteEvent

	// Error injection
	PublishError error
}

// NewMockQuotePublisher creates a new mock publisher.
func NewMockQuotePublisher() *MockQuotePublisher {
	return &MockQuotePublisher{}
}

func (m *MockQuotePublisher) PublishQuoteIssued(ctx context.Context, event domain.QuoteEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.PublishError
}

// Events returns the published events (for test assertions).
func (m *MockQuotePublisher) Events() []domain.QuoteEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.QuoteEvent(nil), m.events...)
}

// ──────────────────────────────────────────────
// MOCK PLACE FINDER
// ──────────────────────────────────────────────

// MockPlaceFinder is a mock address search collaborator.
type MockPlaceFinder struct {
	Suggestions []domain.PlaceSuggestion
	Places      map[string]domain.Place
	Err         error
}

// NewMockPlaceFinder creates a new mock place finder.
func NewMockPlaceFinder() *MockPlaceFinder {
	return &MockPlaceFinder{Places: make(map[string]domain.Place)}
}

func (m *MockPlaceFinder) Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Suggestions, nil
}

func (m *MockPlaceFinder) Resolve(ctx context.Context, placeID string) (*domain.Place, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Places[placeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// ──────────────────────────────────────────────
// INTERFACE ASSERTIONS
// ──────────────────────────────────────────────

var (
	_ repository.VehicleRepository    = (*MockVehicleRepository)(nil)
	_ repository.PricingRepository    = (*MockPricingRepository)(nil)
	_ repository.FixedRouteRepository = (*MockFixedRouteRepository)(nil)
	_ repository.CurrencyRepository   = (*MockCurrencyRepository)(nil)
	_ repository.ChildSeatRepository  = (*MockChildSeatRepository)(nil)
	_ service.DistanceProvider        = (*MockDistanceProvider)(nil)
	_ service.RateSource              = (*MockRateSource)(nil)
	_ service.QuotePublisher          = (*MockQuotePublisher)(nil)
	_ service.PlaceFinder             = (*MockPlaceFinder)(nil)
	_ redis.DistanceCacheInterface    = (*MockDistanceCache)(nil)
	_ redis.RateCacheInterface        = (*MockRateCache)(nil)
	_ redis.LockStoreInterface        = (*MockLockStore)(nil)
	_ redis.AirportStoreInterface     = (*MockAirportStore)(nil)
)

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
