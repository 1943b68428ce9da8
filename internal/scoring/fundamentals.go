package scoring

import "github.com/daywook/stockpilot/internal/contracts"

// FundamentalsScore measures valuation/profitability quality from live ratios
// plus the learned ideal metric ranges. Result is clamped into [0,100].
//
// 50점에서 출발해 밴드별 고정 가감점을 더한다. criteria가 nil이면 지표 범위
// 가감점은 건너뛴다.
func FundamentalsScore(company *contracts.CandidateCompany, quote *contracts.MarketQuote, criteria *contracts.LearnedInvestmentCriteria) float64 {
	score := 50.0

	if quote.TrailingPE != nil && *quote.TrailingPE > 0 {
		pe := *quote.TrailingPE
		switch {
		case pe < 10:
			score += 15
		case pe < 15:
			score += 10
		case pe < 25:
			score += 5
		case pe > 50:
			score -= 10
		}
	}

	if quote.PriceToBook != nil && *quote.PriceToBook > 0 {
		pb := *quote.PriceToBook
		switch {
		case pb < 1:
			score += 15
		case pb < 2:
			score += 10
		case pb < 3:
			score += 5
		case pb > 5:
			score -= 5
		}
	}

	if quote.ReturnOnEquity != nil {
		roe := *quote.ReturnOnEquity
		switch {
		case roe > 20:
			score += 15
		case roe > 10:
			score += 10
		case roe > 5:
			score += 5
		case roe < 0:
			score -= 10
		}
	}

	if quote.DividendYield != nil {
		dy := *quote.DividendYield
		switch {
		case dy > 4:
			score += 10
		case dy > 2:
			score += 5
		}
	}

	// 학습된 이상 범위와 대조 - 범위 안이면 가점, 밖이면 감점
	if criteria != nil {
		for _, r := range criteria.MetricRanges {
			live, ok := quote.Metric(r.Metric)
			if !ok {
				continue
			}
			if r.Contains(live) {
				score += 5
			} else {
				score -= 3
			}
		}
	}

	return clamp(score, 0, 100)
}
