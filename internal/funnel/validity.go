package funnel

import (
	"fmt"

	"github.com/daywook/stockpilot/internal/contracts"
)

// CheckValidity is stage 1: the candidate must have a resolvable ticker and
// at least one document price opinion (목표가 또는 추천 매수가).
func (p *Pipeline) CheckValidity(company *contracts.CandidateCompany, ticker string) contracts.FilterStageResult {
	result := contracts.FilterStageResult{
		Stage: 1,
		Name:  contracts.StageValidity,
	}

	if ticker == "" {
		result.Passed = false
		result.Reason = fmt.Sprintf("'%s'의 티커를 찾을 수 없습니다", company.Name)
		return result
	}

	if !company.HasPriceOpinion() {
		result.Passed = false
		result.Reason = "문서에 목표가와 추천 매수가가 모두 없습니다"
		return result
	}

	result.Passed = true
	result.Reason = fmt.Sprintf("티커 %s 확인, 가격 의견 존재", ticker)
	return result
}
