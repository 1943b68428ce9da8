package scoring

import "github.com/daywook/stockpilot/internal/contracts"

// ConfidenceScore measures how well-corroborated a candidate is, in [0,1].
// 문서 신뢰도에서 출발해 실시간 데이터 가용성과 출처 수로 가점한다.
func ConfidenceScore(company *contracts.CandidateCompany, quote *contracts.MarketQuote) float64 {
	confidence := company.Confidence

	if quote.TargetMeanPrice != nil {
		confidence += 0.1
	}
	if quote.TrailingPE != nil {
		confidence += 0.05
	}
	if quote.PriceToBook != nil {
		confidence += 0.05
	}
	if quote.ReturnOnEquity != nil {
		confidence += 0.05
	}

	switch {
	case len(quote.History) > 60:
		confidence += 0.1
	case len(quote.History) > 20:
		confidence += 0.05
	}

	switch {
	case len(company.Sources) > 3:
		confidence += 0.1
	case len(company.Sources) > 1:
		confidence += 0.05
	}

	return clamp(confidence, 0, 1)
}
