/*
Package rates fetches and caches the USD to PHP exchange rate.

PURPOSE:
  Earnings are computed and stored in USD; the dashboard additionally
  shows the PHP equivalent. This client wraps the free
  exchangerate-api.com endpoint with a TTL cache and a fixed fallback
  rate when the upstream is unreachable.

NOT PART OF THE ENGINE:
  The time-accounting core stays conversion-free. This package is an
  outer collaborator: the cache lives on the Client value handed in by
  the caller, never in package state, so tests can pin configuration
  and time.
*/
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the free-tier endpoint; no API key required.
const DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest/USD"

// Config controls fetching and caching. Zero values fall back to the
// defaults below.
type Config struct {
	BaseURL  string
	CacheTTL time.Duration   // default 1 hour
	Fallback decimal.Decimal // rate used when the fetch fails; default 56.5
	Timeout  time.Duration   // HTTP timeout, default 10s
}

// Quote is one resolved rate with its provenance.
type Quote struct {
	Rate      decimal.Decimal
	Fallback  bool // true when the upstream failed and Fallback was used
	FetchedAt time.Time
}

// Client resolves USD→PHP quotes. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client

	mu     sync.Mutex
	cached *Quote
}

// New builds a rates client with the given configuration.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.Fallback.IsZero() {
		cfg.Fallback = decimal.NewFromFloat(56.5)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// payload matches both response shapes the upstream has used over time:
// v6 nests under conversion_rates, v4 under rates.
type payload struct {
	ConversionRates map[string]float64 `json:"conversion_rates"`
	Rates           map[string]float64 `json:"rates"`
}

// PHPRate returns the cached quote when it is younger than the TTL,
// otherwise fetches a fresh one. A failed fetch yields the fallback
// rate, marked as such, and is not cached, so the next call retries.
func (c *Client) PHPRate(ctx context.Context, now time.Time) Quote {
	c.mu.Lock()
	if c.cached != nil && now.Sub(c.cached.FetchedAt) < c.cfg.CacheTTL {
		q := *c.cached
		c.mu.Unlock()
		return q
	}
	c.mu.Unlock()

	rate, err := c.fetch(ctx)
	if err != nil {
		return Quote{Rate: c.cfg.Fallback, Fallback: true, FetchedAt: now}
	}

	q := Quote{Rate: rate, FetchedAt: now}
	c.mu.Lock()
	c.cached = &q
	c.mu.Unlock()
	return q
}

func (c *Client) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("exchange rate fetch: unexpected status %d", resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return decimal.Zero, fmt.Errorf("exchange rate fetch: %w", err)
	}

	if php, ok := p.ConversionRates["PHP"]; ok {
		return decimal.NewFromFloat(php), nil
	}
	if php, ok := p.Rates["PHP"]; ok {
		return decimal.NewFromFloat(php), nil
	}
	return decimal.Zero, fmt.Errorf("exchange rate fetch: PHP rate missing from response")
}

// ConvertToPHP converts a USD amount using the current quote.
func (c *Client) ConvertToPHP(ctx context.Context, usd decimal.Decimal, now time.Time) decimal.Decimal {
	return usd.Mul(c.PHPRate(ctx, now).Rate)
}
