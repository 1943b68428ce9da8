package scoring

import "github.com/daywook/stockpilot/internal/contracts"

// ClassifyRisk classifies candidate risk from monthly-return volatility and
// the current-price/target-price ratio.
//
// 보수형은 같은 수치라도 더 일찍 위험으로 분류한다.
func ClassifyRisk(volatility, priceTargetRatio float64, style contracts.InvestmentStyle) contracts.RiskLevel {
	if style == contracts.StyleConservative {
		switch {
		case volatility > 0.3 || priceTargetRatio > 0.9:
			return contracts.RiskHigh
		case volatility > 0.15 || priceTargetRatio > 0.7:
			return contracts.RiskMedium
		default:
			return contracts.RiskLow
		}
	}

	switch {
	case volatility > 0.5 || priceTargetRatio > 0.95:
		return contracts.RiskHigh
	case volatility > 0.3 || priceTargetRatio > 0.85:
		return contracts.RiskMedium
	default:
		return contracts.RiskLow
	}
}
