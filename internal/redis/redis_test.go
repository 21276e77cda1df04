package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"transfer/internal/domain"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

// ──────────────────────────────────────────────
// 1. RATE TABLE CACHE
// ──────────────────────────────────────────────

func TestRateCacheStore_RoundTripAndExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewRateCacheStore(client)
	ctx := context.Background()

	rates, _, err := store.GetRates(ctx)
	if err != nil || rates != nil {
		t.Fatalf("expected clean miss, got %v, %v", rates, err)
	}

	fetchedAt := time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC)
	in := []domain.CurrencyRate{
		domain.BaseCurrencyRate(),
		{Code: "EUR", Symbol: "€", Name: "Euro", RateToBase: 1.17, Active: true},
	}
	if err := store.SetRates(ctx, in, fetchedAt, time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	out, at, err := store.GetRates(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(out) != 2 || out[1].Code != "EUR" || out[1].RateToBase != 1.17 {
		t.Errorf("unexpected rates: %+v", out)
	}
	if !at.Equal(fetchedAt) {
		t.Errorf("expected fetchedAt %v, got %v", fetchedAt, at)
	}

	mr.FastForward(61 * time.Minute)

	out, _, err = store.GetRates(ctx)
	if err != nil || out != nil {
		t.Fatalf("expected expiry miss, got %v, %v", out, err)
	}
}

func TestRateCacheStore_Invalidate(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewRateCacheStore(client)
	ctx := context.Background()

	_ = store.SetRates(ctx, []domain.CurrencyRate{domain.BaseCurrencyRate()}, time.Now(), time.Hour)
	if err := store.InvalidateRates(ctx); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if out, _, _ := store.GetRates(ctx); out != nil {
		t.Errorf("expected miss after invalidate, got %+v", out)
	}
}

// ──────────────────────────────────────────────
// 2. REFRESH LOCK
// ──────────────────────────────────────────────

func TestLockStore_SingleHolder(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewLockStore(client)
	ctx := context.Background()

	token, ok, err := store.AcquireRefreshLock(ctx, "currency", 30*time.Second)
	if err != nil || !ok || token == "" {
		t.Fatalf("expected first acquire to succeed, got %q, %v, %v", token, ok, err)
	}

	_, ok, err = store.AcquireRefreshLock(ctx, "currency", 30*time.Second)
	if err != nil || ok {
		t.Fatalf("expected second acquire to fail, got %v, %v", ok, err)
	}

	if err := store.ReleaseRefreshLock(ctx, "currency", token); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, ok, _ := store.AcquireRefreshLock(ctx, "currency", 30*time.Second); !ok {
		t.Fatal("expected acquire after release to succeed")
	}

	mr.FastForward(31 * time.Second)
	if _, ok, _ := store.AcquireRefreshLock(ctx, "currency", 30*time.Second); !ok {
		t.Fatal("expected acquire after ttl to succeed")
	}
}

func TestLockStore_StaleReleaseKeepsNewHolder(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewLockStore(client)
	ctx := context.Background()

	stale, ok, err := store.AcquireRefreshLock(ctx, "currency", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected acquire to succeed, got %v, %v", ok, err)
	}

	// The first holder overruns its ttl and another instance takes over.
	mr.FastForward(31 * time.Second)
	current, ok, err := store.AcquireRefreshLock(ctx, "currency", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected takeover to succeed, got %v, %v", ok, err)
	}
	if current == stale {
		t.Fatal("expected a fresh token for the new holder")
	}

	if err := store.ReleaseRefreshLock(ctx, "currency", stale); err != nil {
		t.Fatalf("stale release failed: %v", err)
	}
	if _, ok, _ := store.AcquireRefreshLock(ctx, "currency", 30*time.Second); ok {
		t.Fatal("stale release must not free the new holder's lock")
	}

	if err := store.ReleaseRefreshLock(ctx, "currency", current); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, ok, _ := store.AcquireRefreshLock(ctx, "currency", 30*time.Second); !ok {
		t.Fatal("expected acquire after owner release to succeed")
	}
}

// ──────────────────────────────────────────────
// 3. AIRPORT GEO INDEX
// ──────────────────────────────────────────────

func TestAirportStore_FindNearby(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewAirportStore(client)
	ctx := context.Background()

	_ = store.UpsertAirport(ctx, "LHR", 51.4700, -0.4543)
	_ = store.UpsertAirport(ctx, "LCY", 51.5048, 0.0495)

	near, err := store.FindNearbyAirports(ctx, 51.4710, -0.4500, 3)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(near) != 1 || near[0].Code != "LHR" {
		t.Fatalf("expected only LHR nearby, got %+v", near)
	}

	central, err := store.FindNearbyAirports(ctx, 51.5074, -0.1278, 3)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(central) != 0 {
		t.Errorf("expected no airport near central London, got %+v", central)
	}

	if err := store.RemoveAirport(ctx, "LHR"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	near, _ = store.FindNearbyAirports(ctx, 51.4710, -0.4500, 3)
	if len(near) != 0 {
		t.Errorf("expected LHR removed, got %+v", near)
	}
}

// ──────────────────────────────────────────────
// 4. DISTANCE CACHE
// ──────────────────────────────────────────────

func TestDistanceCacheStore_RoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewDistanceCacheStore(client, time.Hour)
	ctx := context.Background()

	from := domain.Point{Lat: 51.4700, Lng: -0.4543}
	to := domain.Point{Lat: 51.5074, Lng: -0.1278}

	if got, err := store.GetDistance(ctx, from, to); err != nil || got != nil {
		t.Fatalf("expected miss, got %v, %v", got, err)
	}

	if err := store.SetDistance(ctx, from, to, domain.TravelEstimate{DistanceKm: 27.3, DurationMinutes: 41}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := store.GetDistance(ctx, from, to)
	if err != nil || got == nil {
		t.Fatalf("expected hit, got %v, %v", got, err)
	}
	if got.DistanceKm != 27.3 || got.DurationMinutes != 41 || got.Source != domain.DistanceSourceProvider {
		t.Errorf("unexpected estimate: %+v", got)
	}

	// Direction matters.
	if rev, _ := store.GetDistance(ctx, to, from); rev != nil {
		t.Errorf("expected reverse direction miss, got %+v", rev)
	}
}
