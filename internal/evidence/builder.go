package evidence

import (
	"fmt"
	"math"
	"strings"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/logger"
)

// Factor weights for document-derived claims.
// 합이 1이 되도록 맞춘 값이 아니라 원 근거의 상대적 중요도다.
const (
	weightThesis      = 0.3
	weightTargetPrice = 0.25
	weightBuyPrice    = 0.2
	weightPERCitation = 0.1
	weightROECitation = 0.1
	weightPerRule     = 0.05
	weightRiskFactor  = -0.05
)

// Builder reconstructs why a candidate scored as it did. The chain is built
// once per candidate for display; scoring never reads it.
// ⭐ SSOT: 증거 체인 구성은 여기서만
type Builder struct {
	logger *logger.Logger
}

// NewBuilder creates an evidence chain builder
func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{logger: log}
}

// Build assembles the weighted factor list and real-time corroboration checks
func (b *Builder) Build(
	company *contracts.CandidateCompany,
	quote *contracts.MarketQuote,
	prices *contracts.NormalizedPrices,
	stages []contracts.FilterStageResult,
	criteria *contracts.LearnedInvestmentCriteria,
) *contracts.EvidenceChain {
	chain := &contracts.EvidenceChain{
		Decision: decisionSummary(stages),
		Factors:  b.buildFactors(company, criteria),
		Checks:   b.buildChecks(company, quote, prices),
	}

	b.logger.WithFields(map[string]interface{}{
		"company": company.Name,
		"factors": len(chain.Factors),
		"checks":  len(chain.Checks),
	}).Debug("Evidence chain built")

	return chain
}

// buildFactors collects weighted factors drawn from source material
func (b *Builder) buildFactors(company *contracts.CandidateCompany, criteria *contracts.LearnedInvestmentCriteria) []contracts.EvidenceFactor {
	var factors []contracts.EvidenceFactor

	primary := primarySource(company)

	if strings.TrimSpace(company.Thesis) != "" {
		factors = append(factors, contracts.EvidenceFactor{
			Description: fmt.Sprintf("투자 논거: %s", company.Thesis),
			Weight:      weightThesis,
			Source:      primary,
		})
	}

	if company.TargetPrice != nil {
		factors = append(factors, contracts.EvidenceFactor{
			Description: fmt.Sprintf("문서 목표가 %.2f %s", *company.TargetPrice, company.Currency),
			Weight:      weightTargetPrice,
			Source:      primary,
		})
	}

	if company.RecommendedBuyPrice != nil {
		factors = append(factors, contracts.EvidenceFactor{
			Description: fmt.Sprintf("문서 추천 매수가 %.2f %s", *company.RecommendedBuyPrice, company.Currency),
			Weight:      weightBuyPrice,
			Source:      primary,
		})
	}

	if per, ok := company.Metric("PER"); ok {
		factors = append(factors, contracts.EvidenceFactor{
			Description: fmt.Sprintf("문서 인용 PER %.2f", per),
			Weight:      weightPERCitation,
			Source:      primary,
		})
	}

	if roe, ok := company.Metric("ROE"); ok {
		factors = append(factors, contracts.EvidenceFactor{
			Description: fmt.Sprintf("문서 인용 ROE %.2f%%", roe),
			Weight:      weightROECitation,
			Source:      primary,
		})
	}

	if criteria != nil {
		for _, rule := range criteria.Rules {
			factors = append(factors, contracts.EvidenceFactor{
				Description: fmt.Sprintf("학습된 투자 규칙: %s", rule.Text),
				Weight:      rule.Weight * weightPerRule,
				Source:      rule.Source,
			})
		}
	}

	for _, risk := range company.RiskFactors {
		factors = append(factors, contracts.EvidenceFactor{
			Description: fmt.Sprintf("리스크 요인: %s", risk),
			Weight:      weightRiskFactor,
			Source:      primary,
		})
	}

	return factors
}

// buildChecks contrasts document-sourced values against live quote values
func (b *Builder) buildChecks(
	company *contracts.CandidateCompany,
	quote *contracts.MarketQuote,
	prices *contracts.NormalizedPrices,
) []contracts.RealTimeCheck {
	var checks []contracts.RealTimeCheck

	// 현재가 vs 추천 매수가 (정규화 기준)
	if company.RecommendedBuyPrice != nil && prices.BuyPrice > 0 {
		ratio := prices.CurrentPrice / prices.BuyPrice
		status := contracts.CheckNeutral
		if ratio <= 0.95 {
			status = contracts.CheckFavorable
		} else if ratio > 1.15 {
			status = contracts.CheckUnfavorable
		}
		checks = append(checks, contracts.RealTimeCheck{
			Name:          "현재가 vs 추천 매수가",
			DocumentValue: prices.BuyPrice,
			LiveValue:     prices.CurrentPrice,
			Status:        status,
		})
	}

	// 현재가 vs 목표가
	if company.TargetPrice != nil {
		status := contracts.CheckUnfavorable
		if prices.CurrentPrice < prices.TargetPrice {
			status = contracts.CheckFavorable
		}
		checks = append(checks, contracts.RealTimeCheck{
			Name:          "현재가 vs 목표가",
			DocumentValue: prices.TargetPrice,
			LiveValue:     prices.CurrentPrice,
			Status:        status,
		})
	}

	// 문서 PER vs 실시간 PER: 상대 차이 20% 미만이면 문서 신뢰
	if docPER, ok := company.Metric("PER"); ok && quote.TrailingPE != nil && docPER != 0 {
		status := contracts.CheckNeutral
		if math.Abs(*quote.TrailingPE-docPER)/math.Abs(docPER) < 0.2 {
			status = contracts.CheckFavorable
		}
		checks = append(checks, contracts.RealTimeCheck{
			Name:          "PER 검증",
			DocumentValue: docPER,
			LiveValue:     *quote.TrailingPE,
			Status:        status,
		})
	}

	// 문서 PBR vs 실시간 PBR: 실시간이 더 낮으면 저평가 방향
	if docPBR, ok := company.Metric("PBR"); ok && quote.PriceToBook != nil {
		status := contracts.CheckNeutral
		if *quote.PriceToBook <= docPBR {
			status = contracts.CheckFavorable
		}
		checks = append(checks, contracts.RealTimeCheck{
			Name:          "PBR 검증",
			DocumentValue: docPBR,
			LiveValue:     *quote.PriceToBook,
			Status:        status,
		})
	}

	// 애널리스트 컨센서스 vs 문서 목표가
	if quote.TargetMeanPrice != nil && company.TargetPrice != nil {
		status := contracts.CheckUnfavorable
		if quote.CurrentPrice < *quote.TargetMeanPrice {
			status = contracts.CheckFavorable
		}
		checks = append(checks, contracts.RealTimeCheck{
			Name:          "애널리스트 컨센서스",
			DocumentValue: *company.TargetPrice,
			LiveValue:     *quote.TargetMeanPrice,
			Status:        status,
		})
	}

	return checks
}

// decisionSummary names either a full pass or the failed stages
func decisionSummary(stages []contracts.FilterStageResult) string {
	var failed []string
	for _, s := range stages {
		if !s.Passed {
			failed = append(failed, s.Name)
		}
	}

	if len(failed) == 0 {
		return "모든 필터 통과"
	}
	return fmt.Sprintf("탈락 단계: %s", strings.Join(failed, ", "))
}

// primarySource returns the first cited source, if any
func primarySource(company *contracts.CandidateCompany) *contracts.SourceReference {
	if len(company.Sources) == 0 {
		return nil
	}
	ref := company.Sources[0]
	return &ref
}
