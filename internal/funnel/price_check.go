package funnel

import (
	"fmt"

	"github.com/daywook/stockpilot/internal/contracts"
)

// Price-check thresholds against the recommended buy price.
// 추천가 대비 ±15%를 벗어나면 통과하되 주의 사유를 남긴다.
const (
	chasedThreshold       = 1.15
	deterioratedThreshold = 0.85
)

// CheckPrice is stage 2: rejects candidates with no upside left and flags
// candidates that have run away from (or fallen far below) the recommended
// buy price.
func (p *Pipeline) CheckPrice(company *contracts.CandidateCompany, prices *contracts.NormalizedPrices) contracts.FilterStageResult {
	result := contracts.FilterStageResult{
		Stage: 2,
		Name:  contracts.StagePriceCheck,
	}

	current := prices.CurrentPrice

	// 목표가가 있는데 이미 도달/초과했으면 상승 여력 없음
	if company.TargetPrice != nil && current >= prices.TargetPrice {
		result.Passed = false
		result.Reason = fmt.Sprintf(
			"현재가 %.2f가 목표가 %.2f 이상 - 상승 여력이 없습니다",
			current, prices.TargetPrice,
		)
		return result
	}

	if company.RecommendedBuyPrice != nil {
		buy := prices.BuyPrice

		if buy > 0 && current > buy*chasedThreshold {
			result.Passed = true
			result.Reason = fmt.Sprintf(
				"주의: 현재가 %.2f가 추천 매수가 %.2f를 15%% 이상 상회 - 이미 추격 매수 구간",
				current, buy,
			)
			return result
		}

		if buy > 0 && current < buy*deterioratedThreshold {
			result.Passed = true
			result.Reason = fmt.Sprintf(
				"주의: 현재가 %.2f가 추천 매수가 %.2f 대비 15%% 이상 하락 - 펀더멘털 악화 가능성 추가 검토 필요",
				current, buy,
			)
			return result
		}
	}

	result.Passed = true
	result.Reason = fmt.Sprintf("현재가 %.2f, 목표가 %.2f - 가격 적정", current, prices.TargetPrice)
	return result
}
