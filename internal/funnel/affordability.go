package funnel

import (
	"fmt"
	"math"

	"github.com/daywook/stockpilot/internal/contracts"
)

// minAllocationRatio - 투자금의 10% 미만밖에 배정되지 않으면서 1주도 못 사면 탈락
const minAllocationRatio = 0.1

// CheckAffordability is stage 3: given the investment amount and the
// normalized current price, verifies the candidate is actually purchasable.
//
// quoteCurrency는 종목의 거래 통화. USD 종목은 소수점 매수가 가능한 브로커가
// 많아 "1주 미만" 탈락 규칙에서 제외된다.
func (p *Pipeline) CheckAffordability(amount float64, prices *contracts.NormalizedPrices, quoteCurrency string) contracts.FilterStageResult {
	result := contracts.FilterStageResult{
		Stage: 3,
		Name:  contracts.StageAffordability,
	}

	price := prices.CurrentPrice
	if price <= 0 || amount <= 0 {
		result.Passed = false
		result.Reason = "가격 또는 투자금이 0 이하라 매수 가능 수량을 계산할 수 없습니다"
		return result
	}

	maxShares := math.Floor(amount / price)
	allocationRatio := maxShares * price / amount

	if quoteCurrency != "USD" && maxShares < 1 {
		result.Passed = false
		result.Reason = fmt.Sprintf(
			"투자금 %.0f%s로는 1주(%.2f)도 매수할 수 없습니다",
			amount, prices.Currency, price,
		)
		return result
	}

	if allocationRatio < minAllocationRatio && maxShares < 1 {
		result.Passed = false
		result.Reason = fmt.Sprintf(
			"배분 비율 %.1f%%로 투자 의미가 없습니다 (매수 가능 %d주)",
			allocationRatio*100, int(maxShares),
		)
		return result
	}

	result.Passed = true
	result.Reason = fmt.Sprintf(
		"매수 가능 %d주, 배분 비율 %.1f%%",
		int(maxShares), allocationRatio*100,
	)
	return result
}
