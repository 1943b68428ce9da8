package contracts

import "time"

// ExchangeRate is one cached currency pair rate
type ExchangeRate struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}

// IsStale reports whether the rate is older than the given TTL
func (r ExchangeRate) IsStale(ttl time.Duration, now time.Time) bool {
	return now.Sub(r.FetchedAt) > ttl
}

// NormalizedPrices holds all candidate prices converted into the single
// reporting currency, plus the rate actually applied.
// 매 실행마다 다시 계산되는 파생값
type NormalizedPrices struct {
	Currency     string       `json:"currency"`
	CurrentPrice float64      `json:"current_price"`
	TargetPrice  float64      `json:"target_price"`
	BuyPrice     float64      `json:"buy_price"`
	RateApplied  ExchangeRate `json:"rate_applied"`
}
