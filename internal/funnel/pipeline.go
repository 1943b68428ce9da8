package funnel

import (
	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/logger"
)

// Pipeline is the four-stage filtering funnel. Each stage either fails the
// candidate (excluded from "passed all filters" but retained in results) or
// passes it, possibly with a caveat reason.
// ⭐ SSOT: 필터링 단계 로직은 여기서만
type Pipeline struct {
	logger *logger.Logger
}

// New creates a filtering pipeline
func New(log *logger.Logger) *Pipeline {
	return &Pipeline{logger: log}
}

// RunMarketStages runs stages 2-4, which all require live market data.
// 단계 2가 실패해도 3, 4는 계속 실행한다 - 감사 추적은 모든 단계를 기록해야 하므로
// 중간 실패로 끊지 않는다.
func (p *Pipeline) RunMarketStages(
	company *contracts.CandidateCompany,
	quote *contracts.MarketQuote,
	prices *contracts.NormalizedPrices,
	conditions contracts.InvestmentConditions,
) []contracts.FilterStageResult {
	results := []contracts.FilterStageResult{
		p.CheckPrice(company, prices),
		p.CheckAffordability(conditions.Amount, prices, quote.Currency),
		p.CheckPeriodFeasibility(prices, quote.History, conditions.PeriodMonths),
	}

	for _, r := range results {
		if !r.Passed {
			p.logger.WithFields(map[string]interface{}{
				"company": company.Name,
				"stage":   r.Name,
				"reason":  r.Reason,
			}).Debug("Filter stage failed")
		}
	}

	return results
}

// AllPassed reports whether every stage in the list passed
func AllPassed(results []contracts.FilterStageResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return len(results) > 0
}
