package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"transfer/internal/domain"
	"transfer/internal/repository"
)

// RepositoryRateSource reads the rate table maintained by administrators.
type RepositoryRateSource struct {
	repo repository.CurrencyRepository
}

// NewRepositoryRateSource creates a new RepositoryRateSource.
func NewRepositoryRateSource(repo repository.CurrencyRepository) *RepositoryRateSource {
	return &RepositoryRateSource{repo: repo}
}

// FetchRates returns every stored currency.
func (s *RepositoryRateSource) FetchRates(ctx context.Context) ([]domain.CurrencyRate, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load currencies: %w", err)
	}
	rates := make([]domain.CurrencyRate, 0, len(rows))
	for _, r := range rows {
		rates = append(rates, *r)
	}
	return rates, nil
}

// FeedRateSource overlays live rates from an HTTP feed on the stored currency
// list. Only currencies already configured are priced; the feed cannot add new ones.
type FeedRateSource struct {
	base   RateSource
	client *http.Client
	url    string
}

// NewFeedRateSource creates a new FeedRateSource.
func NewFeedRateSource(base RateSource, url string, timeout time.Duration) *FeedRateSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FeedRateSource{
		base:   base,
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

// rateFeedResponse is the feed payload: {"base": "GBP", "rates": {"EUR": 1.17}}.
type rateFeedResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRates returns stored currencies with rates replaced by the feed's.
func (s *FeedRateSource) FetchRates(ctx context.Context) ([]domain.CurrencyRate, error) {
	stored, err := s.base.FetchRates(ctx)
	if err != nil {
		return nil, err
	}

	feed, err := s.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range stored {
		if rate, ok := feed.Rates[strings.ToUpper(stored[i].Code)]; ok && rate > 0 {
			stored[i].RateToBase = rate
			stored[i].UpdatedAt = now
		}
	}
	return stored, nil
}

func (s *FeedRateSource) fetchFeed(ctx context.Context) (*rateFeedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call rate feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rate feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var feed rateFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode rate feed: %w", err)
	}
	if !strings.EqualFold(feed.Base, domain.BaseCurrency) {
		return nil, fmt.Errorf("rate feed base %q is not %s", feed.Base, domain.BaseCurrency)
	}

	normalized := make(map[string]float64, len(feed.Rates))
	for code, rate := range feed.Rates {
		normalized[strings.ToUpper(code)] = rate
	}
	feed.Rates = normalized
	return &feed, nil
}
