package contracts

import (
	"strings"
	"time"
)

// InvestmentStyle selects the scoring weight profile.
// 알 수 없는 스타일 문자열은 경계에서 보수형으로 정규화한다.
type InvestmentStyle string

const (
	StyleConservative InvestmentStyle = "conservative"
	StyleAggressive   InvestmentStyle = "aggressive"
)

// ParseStyle normalizes a style string to a known variant
func ParseStyle(s string) InvestmentStyle {
	if strings.EqualFold(strings.TrimSpace(s), string(StyleAggressive)) {
		return StyleAggressive
	}
	return StyleConservative
}

// RiskLevel classifies candidate risk
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// InvestmentConditions are the caller-supplied run parameters
type InvestmentConditions struct {
	// Investment amount in the reporting currency
	Amount float64 `json:"amount"`

	PeriodMonths int `json:"period_months"`

	// Optional hints (이 코어는 참고용으로만 전달)
	Sectors  []string `json:"sectors,omitempty"`
	Strategy string   `json:"strategy,omitempty"`
}

// FilteredCandidate is the aggregate per-company result: the unit that is
// ranked and returned.
type FilteredCandidate struct {
	Company CandidateCompany  `json:"company"`
	Ticker  string            `json:"ticker,omitempty"`
	Quote   *MarketQuote      `json:"quote,omitempty"`
	Prices  *NormalizedPrices `json:"prices,omitempty"`

	Stages           []FilterStageResult `json:"stages"`
	PassedAllFilters bool                `json:"passed_all_filters"`

	Score             int       `json:"score"` // 0..100
	ExpectedReturnPct float64   `json:"expected_return_pct"`
	ConfidenceScore   float64   `json:"confidence_score"` // 0..1
	RiskLevel         RiskLevel `json:"risk_level"`

	Evidence *EvidenceChain `json:"evidence,omitempty"`
}

// FailedStageNames returns the display names of failed stages, in order
func (fc *FilteredCandidate) FailedStageNames() []string {
	var names []string
	for _, s := range fc.Stages {
		if !s.Passed {
			names = append(names, s.Name)
		}
	}
	return names
}

// RecommendationResult is the run-level output. run()은 어떤 경우에도
// (모든 후보가 전 단계에서 탈락해도) 이 값을 반환한다.
type RecommendationResult struct {
	Candidates []FilteredCandidate `json:"candidates"`
	TopPick    *FilteredCandidate  `json:"top_pick,omitempty"`

	Conditions   InvestmentConditions `json:"conditions"`
	Style        InvestmentStyle      `json:"style"`
	ExchangeRate ExchangeRate         `json:"exchange_rate"`

	GeneratedAt time.Time         `json:"generated_at"`
	Summary     string            `json:"summary"`
	Sources     []SourceReference `json:"sources,omitempty"`
}

// DedupSources deduplicates source references by (file name, location) pair,
// preserving first-seen order
func DedupSources(refs []SourceReference) []SourceReference {
	seen := make(map[SourceReference]bool, len(refs))
	out := make([]SourceReference, 0, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}
