package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/logger"
)

// Service fetches point-in-time quote bundles with graceful degradation
// ⭐ SSOT: 시세 번들 조회는 여기서만
type Service struct {
	yahoo  *YahooClient
	naver  *NaverClient
	logger *logger.Logger
}

// NewService creates a market data service
func NewService(yahoo *YahooClient, naver *NaverClient, log *logger.Logger) *Service {
	return &Service{
		yahoo:  yahoo,
		naver:  naver,
		logger: log,
	}
}

// FetchQuote requests the valuation/financial summary plus daily closes
// spanning at least max(periodMonths, 6) months.
//
// Degradation ladder:
//   - rich summary 실패 → bare quote (가격만, 비율은 nil)
//   - KRX 종목은 bare quote 실패 시 Naver 스크랩 폴백
//   - history 실패 → 빈 히스토리 (오류 아님)
//
// 모든 폴백이 실패했을 때만 오류를 반환한다.
func (s *Service) FetchQuote(ctx context.Context, ticker string, periodMonths int) (*contracts.MarketQuote, error) {
	months := periodMonths
	if months < 6 {
		months = 6
	}
	since := time.Now().AddDate(0, -months, 0)

	quote, err := s.yahoo.QuoteSummary(ctx, ticker)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"error":  err.Error(),
		}).Warn("Quote summary failed, falling back to bare quote")

		quote, err = s.yahoo.BareQuote(ctx, ticker)
		if err != nil && s.isKRX(ticker) {
			quote, err = s.naver.FetchQuote(ctx, ticker)
		}
		if err != nil {
			return nil, fmt.Errorf("fetch quote for %s: %w", ticker, err)
		}
	}

	history, err := s.yahoo.Chart(ctx, ticker, since)
	if err != nil {
		// No history is a valid state, not an error
		s.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"error":  err.Error(),
		}).Warn("Price history fetch failed, continuing with empty history")
		history = nil
	}
	quote.History = history

	s.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"price":   quote.CurrentPrice,
		"history": len(quote.History),
	}).Debug("Fetched quote bundle")

	return quote, nil
}

func (s *Service) isKRX(ticker string) bool {
	upper := strings.ToUpper(ticker)
	return strings.HasSuffix(upper, ".KS") || strings.HasSuffix(upper, ".KQ")
}
