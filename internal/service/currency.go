package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"transfer/internal/domain"
	"transfer/internal/logger"
	"transfer/internal/redis"
)

const (
	currencyLockName    = "currency"
	currencyLockTTL     = 30 * time.Second
	currencyRetryWindow = time.Minute
	defaultRateTTL      = time.Hour
)

var errRefreshInProgress = errors.New("currency refresh held by another instance")

var (
	_ RateInvalidator = (*CurrencyConverter)(nil)
	_ RateSource      = (*RepositoryRateSource)(nil)
	_ RateSource      = (*FeedRateSource)(nil)
)

// RateSource supplies the full rate table.
type RateSource interface {
	FetchRates(ctx context.Context) ([]domain.CurrencyRate, error)
}

// Conversion is an amount expressed in a display currency.
type Conversion struct {
	Amount   float64
	Currency string
	Symbol   string
	Rate     float64
}

// rateSnapshot is an immutable rate table. checkedAt drives refresh scheduling
// and moves forward on failed refreshes so a broken feed is not hammered.
type rateSnapshot struct {
	rates     map[string]domain.CurrencyRate
	fetchedAt time.Time
	checkedAt time.Time
}

// CurrencyConverterConfig wires a CurrencyConverter. Cache, Lock and Clock are optional.
type CurrencyConverterConfig struct {
	Source RateSource
	Cache  redis.RateCacheInterface
	Lock   redis.LockStoreInterface
	TTL    time.Duration
	Log    *logger.Logger
	Clock  func() time.Time
}

// CurrencyConverter converts base currency amounts using a periodically refreshed
// rate table. Readers never block on a refresh: they see the last good snapshot.
type CurrencyConverter struct {
	source RateSource
	cache  redis.RateCacheInterface
	lock   redis.LockStoreInterface
	ttl    time.Duration
	log    *logger.Logger
	now    func() time.Time

	snapshot   atomic.Pointer[rateSnapshot]
	refreshing atomic.Bool
}

// NewCurrencyConverter creates a new CurrencyConverter.
func NewCurrencyConverter(cfg CurrencyConverterConfig) *CurrencyConverter {
	c := &CurrencyConverter{
		source: cfg.Source,
		cache:  cfg.Cache,
		lock:   cfg.Lock,
		ttl:    cfg.TTL,
		log:    cfg.Log,
		now:    cfg.Clock,
	}
	if c.ttl <= 0 {
		c.ttl = defaultRateTTL
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Convert converts a GBP amount into code, rounded to 2 dp.
// Unknown, inactive or empty codes convert to GBP.
func (c *CurrencyConverter) Convert(ctx context.Context, amountGBP float64, code string) Conversion {
	rate := c.Rate(ctx, code)
	return Conversion{
		Amount:   round2(amountGBP * rate.RateToBase),
		Currency: rate.Code,
		Symbol:   rate.Symbol,
		Rate:     rate.RateToBase,
	}
}

// ConvertToBase converts an amount in code back to GBP, rounded to 2 dp.
func (c *CurrencyConverter) ConvertToBase(ctx context.Context, amount float64, code string) Conversion {
	rate := c.Rate(ctx, code)
	base := domain.BaseCurrencyRate()
	return Conversion{
		Amount:   round2(amount / rate.RateToBase),
		Currency: base.Code,
		Symbol:   base.Symbol,
		Rate:     rate.RateToBase,
	}
}

// Rate returns the effective rate for code, falling back to GBP.
func (c *CurrencyConverter) Rate(ctx context.Context, code string) domain.CurrencyRate {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == domain.BaseCurrency {
		return c.baseRate(ctx)
	}

	snap := c.current(ctx)
	rate, ok := snap.rates[code]
	if !ok || !rate.Active || rate.RateToBase <= 0 {
		return c.baseRate(ctx)
	}
	return rate
}

// Rates returns the active currencies ordered by code.
func (c *CurrencyConverter) Rates(ctx context.Context) []domain.CurrencyRate {
	snap := c.current(ctx)
	rates := make([]domain.CurrencyRate, 0, len(snap.rates))
	for _, r := range snap.rates {
		if r.Active {
			rates = append(rates, r)
		}
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Code < rates[j].Code })
	return rates
}

// Refresh reloads the rate table now. On failure the previous table stays in use.
func (c *CurrencyConverter) Refresh(ctx context.Context) error {
	return c.refresh(ctx, false)
}

// Invalidate drops the shared and local tables so the next read reloads from
// the source. Used after admin currency edits.
func (c *CurrencyConverter) Invalidate(ctx context.Context) {
	if c.cache != nil {
		if err := c.cache.InvalidateRates(ctx); err != nil {
			c.log.WithError(err).Warn("failed to invalidate shared rate table")
		}
	}
	if err := c.refresh(ctx, true); err != nil {
		c.log.WithError(err).Warn("currency reload after edit failed")
	}
}

func (c *CurrencyConverter) baseRate(ctx context.Context) domain.CurrencyRate {
	if snap := c.snapshot.Load(); snap != nil {
		if r, ok := snap.rates[domain.BaseCurrency]; ok {
			return r
		}
	}
	return domain.BaseCurrencyRate()
}

// current returns a usable snapshot, refreshing it first when stale. Only one
// goroutine refreshes at a time; the rest read the previous snapshot.
func (c *CurrencyConverter) current(ctx context.Context) *rateSnapshot {
	snap := c.snapshot.Load()
	if snap == nil || c.now().Sub(snap.checkedAt) >= c.ttl {
		if c.refreshing.CompareAndSwap(false, true) {
			if err := c.refreshLocked(ctx, false); err != nil && !errors.Is(err, errRefreshInProgress) {
				c.log.WithError(err).Warn("currency refresh failed, keeping last good rates")
			}
			c.refreshing.Store(false)
			snap = c.snapshot.Load()
		}
	}
	if snap == nil {
		return newRateSnapshot(nil, time.Time{}, time.Time{})
	}
	return snap
}

func (c *CurrencyConverter) refresh(ctx context.Context, skipCache bool) error {
	for !c.refreshing.CompareAndSwap(false, true) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	defer c.refreshing.Store(false)
	return c.refreshLocked(ctx, skipCache)
}

// refreshLocked must be called with c.refreshing held.
func (c *CurrencyConverter) refreshLocked(ctx context.Context, skipCache bool) error {
	now := c.now()

	if c.cache != nil && !skipCache {
		rates, fetchedAt, err := c.cache.GetRates(ctx)
		switch {
		case err != nil:
			c.log.WithError(err).Debug("shared rate table read failed")
		case len(rates) > 0 && now.Sub(fetchedAt) < c.ttl:
			c.snapshot.Store(newRateSnapshot(rates, fetchedAt, fetchedAt))
			return nil
		}
	}

	if c.lock != nil {
		token, acquired, err := c.lock.AcquireRefreshLock(ctx, currencyLockName, currencyLockTTL)
		if err != nil {
			c.log.WithError(err).Debug("currency refresh lock unavailable, refreshing anyway")
		} else if !acquired {
			c.backOff(now)
			return errRefreshInProgress
		} else {
			defer func() {
				if err := c.lock.ReleaseRefreshLock(ctx, currencyLockName, token); err != nil {
					c.log.WithError(err).Debug("failed to release currency refresh lock")
				}
			}()
		}
	}

	if c.source == nil {
		c.snapshot.Store(newRateSnapshot(nil, now, now))
		return nil
	}

	rates, err := c.source.FetchRates(ctx)
	if err != nil {
		c.backOff(now)
		return err
	}

	snap := newRateSnapshot(rates, now, now)
	c.snapshot.Store(snap)

	if c.cache != nil {
		if err := c.cache.SetRates(ctx, snap.list(), now, c.ttl); err != nil {
			c.log.WithError(err).Debug("failed to share rate table")
		}
	}
	return nil
}

// backOff keeps the last good table and schedules the next attempt one retry
// window from now.
func (c *CurrencyConverter) backOff(now time.Time) {
	next := now.Add(-c.ttl + currencyRetryWindow)
	prev := c.snapshot.Load()
	if prev == nil {
		c.snapshot.Store(&rateSnapshot{rates: baseOnlyRates(), checkedAt: next})
		return
	}
	c.snapshot.Store(&rateSnapshot{rates: prev.rates, fetchedAt: prev.fetchedAt, checkedAt: next})
}

func newRateSnapshot(rates []domain.CurrencyRate, fetchedAt, checkedAt time.Time) *rateSnapshot {
	table := baseOnlyRates()
	for _, r := range rates {
		r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
		if r.Code == "" || r.Code == domain.BaseCurrency || r.RateToBase <= 0 {
			continue
		}
		table[r.Code] = r
	}
	return &rateSnapshot{rates: table, fetchedAt: fetchedAt, checkedAt: checkedAt}
}

func baseOnlyRates() map[string]domain.CurrencyRate {
	return map[string]domain.CurrencyRate{domain.BaseCurrency: domain.BaseCurrencyRate()}
}

func (s *rateSnapshot) list() []domain.CurrencyRate {
	out := make([]domain.CurrencyRate, 0, len(s.rates))
	for _, r := range s.rates {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
