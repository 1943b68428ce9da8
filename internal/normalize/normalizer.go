package normalize

import (
	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/internal/fx"
)

// Normalizer converts all monetary figures attached to a candidate into
// one reporting currency for fair comparison.
// ⭐ SSOT: 가격 정규화는 여기서만
type Normalizer struct {
	reportingCurrency string
}

// New creates a price normalizer for the given reporting currency
func New(reportingCurrency string) *Normalizer {
	return &Normalizer{reportingCurrency: reportingCurrency}
}

// ReportingCurrency returns the configured reporting currency
func (n *Normalizer) ReportingCurrency() string {
	return n.reportingCurrency
}

// NormalizePrices converts the live current price, the document target price
// and the document buy price into the reporting currency.
// 목표가/매수가가 없으면 현재가를 기본값으로 쓴다.
func (n *Normalizer) NormalizePrices(
	company *contracts.CandidateCompany,
	quote *contracts.MarketQuote,
	rate contracts.ExchangeRate,
) *contracts.NormalizedPrices {
	current := fx.Convert(quote.CurrentPrice, quote.Currency, n.reportingCurrency, rate)

	// 문서 가격은 문서에 기재된 통화 기준
	target := current
	if company.TargetPrice != nil {
		target = fx.Convert(*company.TargetPrice, company.Currency, n.reportingCurrency, rate)
	}

	buy := current
	if company.RecommendedBuyPrice != nil {
		buy = fx.Convert(*company.RecommendedBuyPrice, company.Currency, n.reportingCurrency, rate)
	}

	return &contracts.NormalizedPrices{
		Currency:     n.reportingCurrency,
		CurrentPrice: current,
		TargetPrice:  target,
		BuyPrice:     buy,
		RateApplied:  rate,
	}
}
