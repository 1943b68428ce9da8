package scoring

import (
	"math"

	"github.com/daywook/stockpilot/internal/contracts"
)

// WeightProfile defines how the four sub-scores combine into a final score
type WeightProfile struct {
	Return       float64
	Fundamentals float64
	Feasibility  float64
	Confidence   float64
}

// Style-dependent weight profiles.
// 보수형은 펀더멘털 비중이, 공격형은 기대수익률 비중이 높다.
var weightProfiles = map[contracts.InvestmentStyle]WeightProfile{
	contracts.StyleConservative: {
		Return:       0.30,
		Fundamentals: 0.35,
		Feasibility:  0.25,
		Confidence:   0.10,
	},
	contracts.StyleAggressive: {
		Return:       0.50,
		Fundamentals: 0.20,
		Feasibility:  0.20,
		Confidence:   0.10,
	},
}

// ProfileFor returns the weight profile for a style
// (알 수 없는 스타일은 보수형 프로파일)
func ProfileFor(style contracts.InvestmentStyle) WeightProfile {
	if p, ok := weightProfiles[style]; ok {
		return p
	}
	return weightProfiles[contracts.StyleConservative]
}

// volatilityDiscountFactor - 변동성 1단위당 기대수익률 할인율
const volatilityDiscountFactor = 0.3

// ExpectedReturn derives the volatility-discounted expected return in percent.
// Zero if either price is non-positive.
func ExpectedReturn(current, target, volatility float64) float64 {
	if current <= 0 || target <= 0 {
		return 0
	}

	base := (target - current) / current * 100
	discount := math.Max(0.3, 1-volatility*volatilityDiscountFactor)
	return base * discount
}

// FinalScore combines the four components into a single 0..100 integer using
// the style's weight profile. Each component is clamped into [0,100] first
// (confidence is scaled by 100).
func FinalScore(expectedReturn, fundamentals, feasibility, confidence float64, style contracts.InvestmentStyle) int {
	p := ProfileFor(style)

	er := clamp(expectedReturn, 0, 100)
	fund := clamp(fundamentals, 0, 100)
	feas := clamp(feasibility, 0, 100)
	conf := clamp(confidence*100, 0, 100)

	total := er*p.Return + fund*p.Fundamentals + feas*p.Feasibility + conf*p.Confidence
	return int(math.Round(total))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
