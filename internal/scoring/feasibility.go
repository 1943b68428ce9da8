package scoring

import "github.com/daywook/stockpilot/internal/contracts"

// FeasibilityScore buckets how reachable the target price is within the
// requested period. The result is always one of {10,20,30,50,60,70,90}.
//
// 기간 실현성 필터(4단계)와 같은 월별 수익률 시계열을 재사용하되,
// 통과/탈락이 아니라 등급 점수를 낸다.
func FeasibilityScore(current, target float64, periodMonths int, history []contracts.PricePoint) float64 {
	monthlyReturns := contracts.MonthlyReturns(history)
	if len(monthlyReturns) == 0 {
		// 데이터 부족 - 중립
		return 50
	}

	requiredReturn := 0.0
	if current > 0 {
		requiredReturn = (target - current) / current
	}

	meanMonthly := contracts.Mean(monthlyReturns)
	if meanMonthly <= 0 {
		if requiredReturn <= 0 {
			// 이미 목표가 이상 - 횡보해도 달성
			return 70
		}
		return 20
	}

	estimatedMonths := requiredReturn / meanMonthly
	period := float64(periodMonths)

	switch {
	case estimatedMonths <= period:
		return 90
	case estimatedMonths <= period*1.5:
		return 60
	case estimatedMonths <= period*2:
		return 30
	default:
		return 10
	}
}
