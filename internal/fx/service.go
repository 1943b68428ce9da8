package fx

import (
	"context"
	"sync"
	"time"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/logger"
)

// FallbackRate is used when the live source fails and no cache exists
// (원/달러 환율 보수적 고정값)
const FallbackRate = 1350.0

// DefaultCacheTTL is the staleness window for the in-process rate cache
const DefaultCacheTTL = 5 * time.Minute

// RateProvider fetches a live exchange rate for a currency pair
type RateProvider interface {
	FetchRate(ctx context.Context, from, to string) (float64, error)
}

// Service supplies a cached USD↔KRW exchange rate.
// ⭐ SSOT: 환율 조회는 이 서비스를 통해서만. 캐시는 서비스 인스턴스가 소유하며
// 전역 상태를 두지 않는다.
type Service struct {
	provider RateProvider
	ttl      time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cached *contracts.ExchangeRate
}

// NewService creates a currency service with the given provider
func NewService(provider RateProvider, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		provider: provider,
		ttl:      ttl,
		logger:   log,
	}
}

// GetExchangeRate returns the cached USD→KRW rate if younger than the TTL;
// otherwise fetches live, caches and returns it. On fetch failure it returns
// the previous cache if present, else the fallback constant. Never fails.
func (s *Service) GetExchangeRate(ctx context.Context) contracts.ExchangeRate {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	if s.cached != nil && !s.cached.IsStale(s.ttl, now) {
		return *s.cached
	}

	rate, err := s.provider.FetchRate(ctx, "USD", "KRW")
	if err != nil || rate <= 0 {
		if err != nil {
			s.logger.WithError(err).Warn("Exchange rate fetch failed")
		}
		if s.cached != nil {
			// Stale cache beats the hard-coded fallback
			return *s.cached
		}
		return contracts.ExchangeRate{
			From:      "USD",
			To:        "KRW",
			Rate:      FallbackRate,
			FetchedAt: now,
		}
	}

	s.cached = &contracts.ExchangeRate{
		From:      "USD",
		To:        "KRW",
		Rate:      rate,
		FetchedAt: now,
	}

	s.logger.WithFields(map[string]interface{}{
		"pair": "USD/KRW",
		"rate": rate,
	}).Debug("Exchange rate refreshed")

	return *s.cached
}

// Warm refreshes the cache if stale (스케줄러의 주기적 예열용)
func (s *Service) Warm(ctx context.Context) {
	s.GetExchangeRate(ctx)
}

// Convert converts an amount between currencies using the given rate.
// 같은 통화면 그대로, USD↔KRW만 환산하고 그 외 쌍은 no-op으로 둔다.
func Convert(amount float64, from, to string, rate contracts.ExchangeRate) float64 {
	if from == to {
		return amount
	}

	switch {
	case from == "USD" && to == "KRW":
		return amount * rate.Rate
	case from == "KRW" && to == "USD":
		if rate.Rate == 0 {
			return amount
		}
		return amount / rate.Rate
	default:
		// Unsupported pair - treated as a no-op, not an error
		return amount
	}
}
