package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RateProvider returns exchange rates from base to every currency it knows
type RateProvider interface {
	Rates(ctx context.Context, base string) (map[string]float64, error)
}

// CurrencyGateway converts amounts between currencies
type CurrencyGateway struct {
	provider RateProvider
	log      *logrus.Logger
}

// NewCurrencyGateway initializes a gateway over provider
func NewCurrencyGateway(provider RateProvider, log *logrus.Logger) *CurrencyGateway {
	return &CurrencyGateway{provider: provider, log: log}
}

// Rate returns the multiplier converting from into to
func (g *CurrencyGateway) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, nil
	}
	rates, err := g.provider.Rates(ctx, from)
	if err != nil {
		g.log.Errorf("Failed to fetch rates for %s: %v", from, err)
		return 0, fmt.Errorf("%w: %s to %s: %w", ErrConversionUnavailable, from, to, err)
	}
	rate, ok := rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: %s to %s", ErrConversionUnavailable, from, to)
	}
	return rate, nil
}

// Convert returns amount expressed in to
func (g *CurrencyGateway) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	converted, _, err := g.Quote(ctx, amount, from, to)
	return converted, err
}

// Quote returns the converted amount together with the rate used
func (g *CurrencyGateway) Quote(ctx context.Context, amount float64, from, to string) (float64, float64, error) {
	rate, err := g.Rate(ctx, from, to)
	if err != nil {
		return 0, 0, err
	}
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).InexactFloat64(), rate, nil
}

// CachedRateProvider keeps rate tables per base currency for a fixed TTL
type CachedRateProvider struct {
	next  RateProvider
	cache *cache.Cache
}

// NewCachedRateProvider wraps next with a ttl cache
func NewCachedRateProvider(next RateProvider, ttl time.Duration) *CachedRateProvider {
	return &CachedRateProvider{next: next, cache: cache.New(ttl, 2*ttl)}
}

// Rates serves from cache when possible
func (c *CachedRateProvider) Rates(ctx context.Context, base string) (map[string]float64, error) {
	if v, ok := c.cache.Get(base); ok {
		return v.(map[string]float64), nil
	}
	rates, err := c.next.Rates(ctx, base)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(base, rates)
	return rates, nil
}
