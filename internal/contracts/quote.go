package contracts

import (
	"math"
	"sort"
	"strings"
	"time"
)

// PricePoint is one daily close in a price history series
type PricePoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// MarketQuote is a point-in-time snapshot of live data for one ticker.
// 분석 실행마다 새로 조회하며 이 코어는 저장하지 않는다.
type MarketQuote struct {
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`

	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	High52W       float64 `json:"high_52w"`
	Low52W        float64 `json:"low_52w"`

	// Analyst/valuation figures - nil when the provider omits them
	TargetMeanPrice *float64 `json:"target_mean_price,omitempty"`
	TrailingPE      *float64 `json:"trailing_pe,omitempty"`
	ForwardPE       *float64 `json:"forward_pe,omitempty"`
	PriceToBook     *float64 `json:"price_to_book,omitempty"`
	ReturnOnEquity  *float64 `json:"return_on_equity,omitempty"` // 퍼센트 단위
	DividendYield   *float64 `json:"dividend_yield,omitempty"`   // 퍼센트 단위
	MarketCap       *float64 `json:"market_cap,omitempty"`

	// Empty history is a valid state, not an error
	History []PricePoint `json:"history,omitempty"`
}

// Metric returns a live metric by the document metric name
// (학습 기준의 ideal range와 대조할 때 사용)
func (q *MarketQuote) Metric(name string) (float64, bool) {
	switch strings.ToUpper(name) {
	case "PER", "PE", "TRAILINGPE":
		if q.TrailingPE != nil {
			return *q.TrailingPE, true
		}
	case "PBR", "PB", "PRICETOBOOK":
		if q.PriceToBook != nil {
			return *q.PriceToBook, true
		}
	case "ROE":
		if q.ReturnOnEquity != nil {
			return *q.ReturnOnEquity, true
		}
	case "DIVIDENDYIELD", "배당수익률":
		if q.DividendYield != nil {
			return *q.DividendYield, true
		}
	}
	return 0, false
}

// InferCurrency derives the trading currency from a ticker suffix.
// 한국거래소 종목(.KS/.KQ)은 KRW, 그 외는 공급자 통화 또는 USD
func InferCurrency(ticker, providerCurrency string) string {
	upper := strings.ToUpper(ticker)
	if strings.HasSuffix(upper, ".KS") || strings.HasSuffix(upper, ".KQ") {
		return "KRW"
	}
	if providerCurrency != "" {
		return strings.ToUpper(providerCurrency)
	}
	return "USD"
}

// MonthlyReturns derives month-over-month returns from a daily price series.
// 월별 마지막 종가를 버킷으로 묶어 연속 월 간 수익률을 계산한다.
// Fewer than 2 monthly buckets yields an empty slice.
func MonthlyReturns(history []PricePoint) []float64 {
	if len(history) < 2 {
		return nil
	}

	// Last close per month (key: YYYY-MM)
	lastClose := make(map[string]PricePoint)
	for _, p := range history {
		key := p.Date.Format("2006-01")
		if prev, ok := lastClose[key]; !ok || p.Date.After(prev.Date) {
			lastClose[key] = p
		}
	}

	if len(lastClose) < 2 {
		return nil
	}

	keys := make([]string, 0, len(lastClose))
	for k := range lastClose {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	returns := make([]float64, 0, len(keys)-1)
	for i := 1; i < len(keys); i++ {
		prev := lastClose[keys[i-1]].Close
		curr := lastClose[keys[i]].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}

	return returns
}

// Mean returns the arithmetic mean of a series
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev returns the sample standard deviation of a series
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// DefaultVolatility is assumed when price history is too thin to measure
const DefaultVolatility = 0.3

// Volatility is the sample standard deviation of month-over-month returns.
// 월별 버킷이 2개 미만이면 측정 불가로 보고 기본값을 쓴다.
func Volatility(history []PricePoint) float64 {
	returns := MonthlyReturns(history)
	if len(returns) == 0 {
		return DefaultVolatility
	}
	if len(returns) == 1 {
		// One observation - no dispersion to measure
		return DefaultVolatility
	}
	return SampleStdDev(returns)
}
