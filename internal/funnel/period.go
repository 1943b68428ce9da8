package funnel

import (
	"fmt"

	"github.com/daywook/stockpilot/internal/contracts"
)

// Period feasibility thresholds.
// 추정 도달 기간이 투자 기간의 1.5배를 넘으면 탈락, 1배를 넘으면 주의 통과.
const (
	periodHardLimit = 1.5

	// 평균 월 수익률이 0 이하일 때 허용하는 최대 요구 수익률
	maxRequiredOnFlat = 0.05
)

// CheckPeriodFeasibility is stage 4: extrapolates historical monthly returns
// to judge whether the target price is reachable within the requested period.
func (p *Pipeline) CheckPeriodFeasibility(prices *contracts.NormalizedPrices, history []contracts.PricePoint, periodMonths int) contracts.FilterStageResult {
	result := contracts.FilterStageResult{
		Stage: 4,
		Name:  contracts.StagePeriod,
	}

	current := prices.CurrentPrice
	target := prices.TargetPrice

	if current <= 0 || target <= current {
		result.Passed = false
		result.Reason = "현재가를 상회하는 유효한 목표가가 없습니다"
		return result
	}

	requiredReturn := (target - current) / current

	monthlyReturns := contracts.MonthlyReturns(history)
	if len(monthlyReturns) == 0 {
		// 월별 버킷 2개 미만 - 추정 불가, 데이터 부족 주의 통과
		result.Passed = true
		result.Reason = fmt.Sprintf(
			"주의: 가격 이력이 부족해 기간 실현성을 추정할 수 없습니다 (요구 수익률 %.1f%%)",
			requiredReturn*100,
		)
		return result
	}

	meanMonthly := contracts.Mean(monthlyReturns)

	if meanMonthly <= 0 {
		if requiredReturn <= maxRequiredOnFlat {
			result.Passed = true
			result.Reason = fmt.Sprintf(
				"평균 월 수익률 %.2f%%가 0 이하지만 요구 수익률 %.1f%%가 낮아 실현 가능",
				meanMonthly*100, requiredReturn*100,
			)
			return result
		}
		result.Passed = false
		result.Reason = fmt.Sprintf(
			"평균 월 수익률이 음수(%.2f%%)라 %d개월 내 %.1f%% 달성이 어렵습니다",
			meanMonthly*100, periodMonths, requiredReturn*100,
		)
		return result
	}

	estimatedMonths := requiredReturn / meanMonthly
	period := float64(periodMonths)

	switch {
	case estimatedMonths > period*periodHardLimit:
		result.Passed = false
		result.Reason = fmt.Sprintf(
			"목표 도달 추정 %.1f개월 - 투자 기간 %d개월의 1.5배를 초과합니다",
			estimatedMonths, periodMonths,
		)
	case estimatedMonths > period:
		result.Passed = true
		result.Reason = fmt.Sprintf(
			"주의: 목표 도달 추정 %.1f개월로 투자 기간 %d개월을 다소 초과합니다",
			estimatedMonths, periodMonths,
		)
	default:
		result.Passed = true
		result.Reason = fmt.Sprintf(
			"목표 도달 추정 %.1f개월 - 투자 기간 %d개월 내 실현 가능",
			estimatedMonths, periodMonths,
		)
	}

	return result
}
