package fx

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/logger"
)

// fakeProvider returns a scripted rate or error and counts calls
type fakeProvider struct {
	rate  float64
	err   error
	calls int
}

func (f *fakeProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	f.calls++
	return f.rate, f.err
}

func TestGetExchangeRateFallbackOnError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("provider down")}
	svc := NewService(provider, time.Minute, logger.NewNop())

	rate := svc.GetExchangeRate(context.Background())

	// 공급자 장애 + 빈 캐시 → 고정 대체 환율
	if rate.Rate != FallbackRate {
		t.Errorf("Expected fallback rate %f, got %f", FallbackRate, rate.Rate)
	}
	if rate.From != "USD" || rate.To != "KRW" {
		t.Errorf("Expected USD/KRW pair, got %s/%s", rate.From, rate.To)
	}
}

func TestGetExchangeRateCachesWithinTTL(t *testing.T) {
	provider := &fakeProvider{rate: 1400}
	svc := NewService(provider, time.Minute, logger.NewNop())

	first := svc.GetExchangeRate(context.Background())
	second := svc.GetExchangeRate(context.Background())

	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", provider.calls)
	}
	if first.Rate != 1400 || second.Rate != 1400 {
		t.Errorf("Expected cached rate 1400, got %f / %f", first.Rate, second.Rate)
	}
}

func TestGetExchangeRateStaleCacheBeatsFallback(t *testing.T) {
	provider := &fakeProvider{rate: 1400}
	svc := NewService(provider, time.Nanosecond, logger.NewNop())

	_ = svc.GetExchangeRate(context.Background())

	// 다음 호출은 TTL 만료 → 재조회 실패 → 고정값이 아니라 이전 캐시 반환
	provider.err = errors.New("provider down")
	time.Sleep(time.Millisecond)

	rate := svc.GetExchangeRate(context.Background())
	if rate.Rate != 1400 {
		t.Errorf("Expected stale cached rate 1400, got %f", rate.Rate)
	}
}

func TestGetExchangeRateRejectsNonPositive(t *testing.T) {
	provider := &fakeProvider{rate: 0}
	svc := NewService(provider, time.Minute, logger.NewNop())

	rate := svc.GetExchangeRate(context.Background())
	if rate.Rate != FallbackRate {
		t.Errorf("Expected fallback for non-positive provider rate, got %f", rate.Rate)
	}
}

func TestConvert(t *testing.T) {
	rate := contracts.ExchangeRate{From: "USD", To: "KRW", Rate: 1350}

	if got := Convert(100, "USD", "KRW", rate); got != 135000 {
		t.Errorf("USD→KRW: expected 135000, got %f", got)
	}
	if got := Convert(135000, "KRW", "USD", rate); math.Abs(got-100) > 1e-9 {
		t.Errorf("KRW→USD: expected 100, got %f", got)
	}
	if got := Convert(100, "KRW", "KRW", rate); got != 100 {
		t.Errorf("Same currency: expected 100, got %f", got)
	}
	// 지원하지 않는 쌍은 no-op
	if got := Convert(100, "JPY", "KRW", rate); got != 100 {
		t.Errorf("Unsupported pair: expected 100, got %f", got)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	rate := contracts.ExchangeRate{From: "USD", To: "KRW", Rate: 1387.5}

	krw := Convert(250, "USD", "KRW", rate)
	back := Convert(krw, "KRW", "USD", rate)

	if math.Abs(back-250) > 1e-9 {
		t.Errorf("Round trip drifted: 250 → %f → %f", krw, back)
	}
}
