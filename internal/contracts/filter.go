package contracts

// Filter stage display names. 감사 기록에 그대로 노출되는 이름이므로 변경 금지.
const (
	StageValidity      = "유효성 검증"
	StagePriceCheck    = "가격 적정성 검증"
	StageAffordability = "투자 가능성 검증"
	StagePeriod        = "기간 실현성 검증"

	// Synthetic stage recorded when an external fetch fails mid-candidate
	StageDataRetrieval = "데이터 조회"
)

// FilterStageResult is the outcome of one funnel stage for one candidate.
// 실패한 단계도 감사 추적을 위해 절대 버리지 않는다.
type FilterStageResult struct {
	Stage  int    `json:"stage"`
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}
