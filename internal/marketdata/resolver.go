package marketdata

import (
	"context"
	"strings"

	"github.com/daywook/stockpilot/pkg/logger"
)

// knownTickers maps common company names to tickers.
// 이름 검색이 불안정한 비영어권 대형주 위주의 정적 테이블로, 검색보다 먼저 본다.
var knownTickers = map[string]string{
	"삼성전자":     "005930.KS",
	"SK하이닉스":   "000660.KS",
	"LG에너지솔루션": "373220.KS",
	"삼성바이오로직스": "207940.KS",
	"현대차":      "005380.KS",
	"현대자동차":    "005380.KS",
	"기아":       "000270.KS",
	"NAVER":    "035420.KS",
	"네이버":      "035420.KS",
	"카카오":      "035720.KS",
	"셀트리온":     "068270.KS",
	"POSCO홀딩스":  "005490.KS",
	"KB금융":     "105560.KS",
	"에코프로비엠":   "247540.KQ",

	"애플":       "AAPL",
	"APPLE":    "AAPL",
	"테슬라":      "TSLA",
	"TESLA":    "TSLA",
	"엔비디아":     "NVDA",
	"NVIDIA":   "NVDA",
	"마이크로소프트":  "MSFT",
	"알파벳":      "GOOGL",
	"구글":       "GOOGL",
	"아마존":      "AMZN",
}

// Resolver maps a company name + market hint to a tradable ticker
// ⭐ SSOT: 티커 해석은 여기서만
type Resolver struct {
	yahoo  *YahooClient
	logger *logger.Logger
}

// NewResolver creates a ticker resolver
func NewResolver(yahoo *YahooClient, log *logger.Logger) *Resolver {
	return &Resolver{
		yahoo:  yahoo,
		logger: log,
	}
}

// ResolveTicker resolves a company name to a ticker.
// 빈 문자열은 "검색 결과 없음"이라는 정상적인 결과이며 오류가 아니다.
// 오류는 공급자 호출 자체가 실패했을 때만 반환한다.
func (r *Resolver) ResolveTicker(ctx context.Context, companyName, marketHint string) (string, error) {
	name := strings.TrimSpace(companyName)
	if name == "" {
		return "", nil
	}

	// 1. Static table (case-insensitive on the latin entries)
	if ticker, ok := knownTickers[name]; ok {
		return ticker, nil
	}
	if ticker, ok := knownTickers[strings.ToUpper(name)]; ok {
		return ticker, nil
	}

	// 2. Provider text search
	hits, err := r.yahoo.Search(ctx, name)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		r.logger.WithField("company", name).Debug("Ticker search yielded nothing")
		return "", nil
	}

	// Prefer a hit whose exchange matches the market hint
	if preferred := pickByMarketHint(hits, marketHint); preferred != "" {
		return preferred, nil
	}

	return hits[0].Symbol, nil
}

// pickByMarketHint selects a search hit matching the listing market hint
func pickByMarketHint(hits []SearchHit, marketHint string) string {
	hint := strings.ToUpper(strings.TrimSpace(marketHint))
	if hint == "" {
		return ""
	}

	korean := hint == "KRX" || hint == "KOSPI" || hint == "KOSDAQ"
	usExchanges := map[string]bool{"NYSE": true, "NASDAQ": true, "AMEX": true}

	for _, h := range hits {
		symbol := strings.ToUpper(h.Symbol)
		exch := strings.ToUpper(h.ExchDisp)

		if korean && (strings.HasSuffix(symbol, ".KS") || strings.HasSuffix(symbol, ".KQ")) {
			return h.Symbol
		}
		if usExchanges[hint] && exch == hint {
			return h.Symbol
		}
		// 힌트가 거래소 표기와 그대로 일치하는 경우 (LSE, TSE 등)
		if exch == hint {
			return h.Symbol
		}
	}

	return ""
}
