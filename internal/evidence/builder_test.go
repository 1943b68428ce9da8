package evidence

import (
	"strings"
	"testing"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/logger"
)

func fptr(v float64) *float64 { return &v }

func testCompany() *contracts.CandidateCompany {
	return &contracts.CandidateCompany{
		Name:                "삼성전자",
		Currency:            "KRW",
		TargetPrice:         fptr(90000),
		RecommendedBuyPrice: fptr(70000),
		Metrics:             map[string]float64{"PER": 12, "PBR": 1.5},
		Thesis:              "HBM 수요 확대에 따른 실적 개선",
		RiskFactors:         []string{"메모리 가격 변동성"},
		Sources: []contracts.SourceReference{
			{FileName: "report.pdf", Location: "p.3"},
		},
	}
}

func testPrices(current float64) *contracts.NormalizedPrices {
	return &contracts.NormalizedPrices{
		Currency:     "KRW",
		CurrentPrice: current,
		TargetPrice:  90000,
		BuyPrice:     70000,
	}
}

func TestBuildFactors(t *testing.T) {
	b := NewBuilder(logger.NewNop())
	company := testCompany()
	quote := &contracts.MarketQuote{Currency: "KRW", CurrentPrice: 65000}
	criteria := &contracts.LearnedInvestmentCriteria{
		Rules: []contracts.WeightedRule{
			{Text: "부채비율 100% 이하 기업 선호", Weight: 2},
		},
	}

	chain := b.Build(company, quote, testPrices(65000), nil, criteria)

	// 논거 + 목표가 + 매수가 + PER + ROE 없음 + 규칙 1 + 리스크 1 = 6
	if len(chain.Factors) != 6 {
		t.Fatalf("Expected 6 factors, got %d", len(chain.Factors))
	}

	if chain.Factors[0].Weight != 0.3 {
		t.Errorf("Expected thesis weight 0.3, got %f", chain.Factors[0].Weight)
	}
	if chain.Factors[0].Source == nil || chain.Factors[0].Source.FileName != "report.pdf" {
		t.Error("Expected thesis factor to carry the primary source")
	}

	last := chain.Factors[len(chain.Factors)-1]
	if last.Weight >= 0 {
		t.Errorf("Expected risk factor weight to be negative, got %f", last.Weight)
	}

	// 학습 규칙 가중치는 rule.Weight * 0.05
	var ruleFactor *contracts.EvidenceFactor
	for i := range chain.Factors {
		if strings.Contains(chain.Factors[i].Description, "투자 규칙") {
			ruleFactor = &chain.Factors[i]
		}
	}
	if ruleFactor == nil {
		t.Fatal("Expected a learned-rule factor")
	}
	if ruleFactor.Weight != 0.1 {
		t.Errorf("Expected rule weight 0.1, got %f", ruleFactor.Weight)
	}
}

func TestBuildChecks(t *testing.T) {
	b := NewBuilder(logger.NewNop())
	company := testCompany()
	quote := &contracts.MarketQuote{
		Currency:        "KRW",
		CurrentPrice:    65000,
		TrailingPE:      fptr(13), // 문서 12와 상대 차이 <20% → favorable
		PriceToBook:     fptr(1.2), // 문서 1.5보다 낮음 → favorable
		TargetMeanPrice: fptr(85000),
	}

	chain := b.Build(company, quote, testPrices(65000), nil, nil)

	if len(chain.Checks) != 5 {
		t.Fatalf("Expected 5 checks, got %d", len(chain.Checks))
	}

	byName := map[string]contracts.RealTimeCheck{}
	for _, c := range chain.Checks {
		byName[c.Name] = c
	}

	// 현재가 65000 / 매수가 70000 ≈ 0.93 ≤ 0.95 → favorable
	if byName["현재가 vs 추천 매수가"].Status != contracts.CheckFavorable {
		t.Errorf("Buy-price check: expected favorable, got %s", byName["현재가 vs 추천 매수가"].Status)
	}
	if byName["현재가 vs 목표가"].Status != contracts.CheckFavorable {
		t.Errorf("Target check: expected favorable, got %s", byName["현재가 vs 목표가"].Status)
	}
	if byName["PER 검증"].Status != contracts.CheckFavorable {
		t.Errorf("PER check: expected favorable, got %s", byName["PER 검증"].Status)
	}
	if byName["PBR 검증"].Status != contracts.CheckFavorable {
		t.Errorf("PBR check: expected favorable, got %s", byName["PBR 검증"].Status)
	}
	if byName["애널리스트 컨센서스"].Status != contracts.CheckFavorable {
		t.Errorf("Consensus check: expected favorable, got %s", byName["애널리스트 컨센서스"].Status)
	}
}

func TestBuildChecksUnfavorable(t *testing.T) {
	b := NewBuilder(logger.NewNop())
	company := testCompany()
	quote := &contracts.MarketQuote{
		Currency:     "KRW",
		CurrentPrice: 95000,
		TrailingPE:   fptr(20), // 문서 12와 상대 차이 >20% → neutral
	}

	// 현재가 95000: 매수가 대비 1.36 (>1.15), 목표가 이상
	prices := testPrices(95000)
	chain := b.Build(company, quote, prices, nil, nil)

	byName := map[string]contracts.RealTimeCheck{}
	for _, c := range chain.Checks {
		byName[c.Name] = c
	}

	if byName["현재가 vs 추천 매수가"].Status != contracts.CheckUnfavorable {
		t.Errorf("Buy-price check: expected unfavorable, got %s", byName["현재가 vs 추천 매수가"].Status)
	}
	if byName["현재가 vs 목표가"].Status != contracts.CheckUnfavorable {
		t.Errorf("Target check: expected unfavorable, got %s", byName["현재가 vs 목표가"].Status)
	}
	if byName["PER 검증"].Status != contracts.CheckNeutral {
		t.Errorf("PER check: expected neutral, got %s", byName["PER 검증"].Status)
	}
}

func TestDecisionSummary(t *testing.T) {
	b := NewBuilder(logger.NewNop())
	company := testCompany()
	quote := &contracts.MarketQuote{Currency: "KRW", CurrentPrice: 65000}

	allPassed := []contracts.FilterStageResult{
		{Name: contracts.StageValidity, Passed: true},
		{Name: contracts.StagePriceCheck, Passed: true},
	}
	chain := b.Build(company, quote, testPrices(65000), allPassed, nil)
	if chain.Decision != "모든 필터 통과" {
		t.Errorf("Expected full-pass decision, got %q", chain.Decision)
	}

	withFailure := []contracts.FilterStageResult{
		{Name: contracts.StageValidity, Passed: true},
		{Name: contracts.StagePeriod, Passed: false},
	}
	chain = b.Build(company, quote, testPrices(65000), withFailure, nil)
	if !strings.Contains(chain.Decision, contracts.StagePeriod) {
		t.Errorf("Expected failed stage in decision, got %q", chain.Decision)
	}
}
