package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/internal/evidence"
	"github.com/daywook/stockpilot/internal/funnel"
	"github.com/daywook/stockpilot/internal/fx"
	"github.com/daywook/stockpilot/internal/normalize"
	"github.com/daywook/stockpilot/internal/scoring"
	"github.com/daywook/stockpilot/pkg/logger"
)

// TickerResolver maps company names to tickers
type TickerResolver interface {
	ResolveTicker(ctx context.Context, companyName, marketHint string) (string, error)
}

// QuoteFetcher fetches a point-in-time quote bundle
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, ticker string, periodMonths int) (*contracts.MarketQuote, error)
}

// ProgressEvent is emitted once per candidate step for observers
type ProgressEvent struct {
	Company string `json:"company"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Step    string `json:"step"`
	Message string `json:"message,omitempty"`
}

// ProgressFunc receives progress events (nil이면 무시)
type ProgressFunc func(ProgressEvent)

// Orchestrator drives the analysis funnel per candidate, isolates
// per-candidate failures, ranks results and assembles the final payload.
//
// 후보 처리는 의도적으로 순차 실행이다 - 시세/검색 공급자가 동시 호출에
// 민감하므로 한 번에 하나씩만 호출한다.
// ⭐ SSOT: 추천 파이프라인 조율은 여기서만
type Orchestrator struct {
	fxService  *fx.Service
	resolver   TickerResolver
	market     QuoteFetcher
	normalizer *normalize.Normalizer
	pipeline   *funnel.Pipeline
	evidence   *evidence.Builder

	// Per-candidate external fetch budget; a timeout is treated exactly
	// like a fetch failure (isolated, non-fatal)
	fetchTimeout time.Duration

	progress ProgressFunc
	logger   *logger.Logger
}

// NewOrchestrator creates an analysis engine
func NewOrchestrator(
	fxService *fx.Service,
	resolver TickerResolver,
	market QuoteFetcher,
	normalizer *normalize.Normalizer,
	pipeline *funnel.Pipeline,
	evidenceBuilder *evidence.Builder,
	fetchTimeout time.Duration,
	log *logger.Logger,
) *Orchestrator {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &Orchestrator{
		fxService:    fxService,
		resolver:     resolver,
		market:       market,
		normalizer:   normalizer,
		pipeline:     pipeline,
		evidence:     evidenceBuilder,
		fetchTimeout: fetchTimeout,
		logger:       log,
	}
}

// WithProgress registers a progress observer
func (o *Orchestrator) WithProgress(fn ProgressFunc) *Orchestrator {
	o.progress = fn
	return o
}

// Run executes the funnel for every candidate and always returns a result -
// even when every candidate fails every stage there is no fatal error path.
func (o *Orchestrator) Run(
	ctx context.Context,
	candidates []contracts.CandidateCompany,
	conditions contracts.InvestmentConditions,
	criteria *contracts.LearnedInvestmentCriteria,
	style contracts.InvestmentStyle,
) *contracts.RecommendationResult {
	startTime := time.Now()

	o.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"style":      string(style),
		"amount":     conditions.Amount,
		"period":     conditions.PeriodMonths,
	}).Info("Starting recommendation run")

	// Exchange rate is fetched once per run
	rate := o.fxService.GetExchangeRate(ctx)

	result := &contracts.RecommendationResult{
		Candidates:   make([]contracts.FilteredCandidate, 0, len(candidates)),
		Conditions:   conditions,
		Style:        style,
		ExchangeRate: rate,
		GeneratedAt:  time.Now(),
	}

	var allSources []contracts.SourceReference

	for i := range candidates {
		company := &candidates[i]
		o.emit(ProgressEvent{
			Company: company.Name,
			Index:   i + 1,
			Total:   len(candidates),
			Step:    "analyzing",
		})

		fc, sources := o.analyzeCandidate(ctx, company, conditions, criteria, rate, style)
		result.Candidates = append(result.Candidates, *fc)
		allSources = append(allSources, sources...)

		o.emit(ProgressEvent{
			Company: company.Name,
			Index:   i + 1,
			Total:   len(candidates),
			Step:    "done",
			Message: fmt.Sprintf("score=%d passed=%v", fc.Score, fc.PassedAllFilters),
		})
	}

	// Rank by score, descending. 동점은 입력 순서 유지 (stable)
	sort.SliceStable(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].Score > result.Candidates[j].Score
	})

	// Top pick: highest-scoring candidate that passed every stage
	for i := range result.Candidates {
		if result.Candidates[i].PassedAllFilters {
			result.TopPick = &result.Candidates[i]
			break
		}
	}

	result.Sources = contracts.DedupSources(allSources)
	result.Summary = o.buildSummary(result)

	o.logger.WithFields(map[string]interface{}{
		"candidates": len(result.Candidates),
		"top_pick":   topPickName(result),
		"duration":   time.Since(startTime).Seconds(),
	}).Info("Recommendation run completed")

	return result
}

// analyzeCandidate runs the full funnel for one candidate. Any external
// failure is converted into a synthetic failed stage; it never propagates.
func (o *Orchestrator) analyzeCandidate(
	ctx context.Context,
	company *contracts.CandidateCompany,
	conditions contracts.InvestmentConditions,
	criteria *contracts.LearnedInvestmentCriteria,
	rate contracts.ExchangeRate,
	style contracts.InvestmentStyle,
) (*contracts.FilteredCandidate, []contracts.SourceReference) {
	cctx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	// Ticker resolution. 전송 오류는 데이터 조회 실패, 검색 결과 없음은
	// 유효성 검증 실패로 구분해 기록한다.
	ticker, err := o.resolver.ResolveTicker(cctx, company.Name, company.Market)
	if err != nil {
		o.logger.WithError(err).WithField("company", company.Name).Warn("Ticker resolution failed")
		return o.failedCandidate(company, contracts.FilterStageResult{
			Stage:  0,
			Name:   contracts.StageDataRetrieval,
			Passed: false,
			Reason: fmt.Sprintf("티커 검색 중 오류가 발생했습니다: %v", err),
		}), nil
	}

	// Stage 1: validity
	validity := o.pipeline.CheckValidity(company, ticker)
	if !validity.Passed {
		// 사용할 수 없는 후보 - 시세 조회 없이 종료
		return o.failedCandidate(company, validity), nil
	}

	// Quote fetch (summary + history, graceful degradation inside)
	quote, err := o.market.FetchQuote(cctx, ticker, conditions.PeriodMonths)
	if err != nil {
		o.logger.WithError(err).WithField("ticker", ticker).Warn("Quote fetch failed")
		fc := o.failedCandidate(company, validity, contracts.FilterStageResult{
			Stage:  0,
			Name:   contracts.StageDataRetrieval,
			Passed: false,
			Reason: fmt.Sprintf("시세 데이터를 가져오지 못했습니다: %v", err),
		})
		fc.Ticker = ticker
		return fc, nil
	}

	// Normalize prices into the reporting currency
	prices := o.normalizer.NormalizePrices(company, quote, rate)

	// Stages 2-4
	stages := append([]contracts.FilterStageResult{validity},
		o.pipeline.RunMarketStages(company, quote, prices, conditions)...)

	// Scores
	volatility := contracts.Volatility(quote.History)
	expectedReturn := scoring.ExpectedReturn(prices.CurrentPrice, prices.TargetPrice, volatility)
	fundamentals := scoring.FundamentalsScore(company, quote, criteria)
	feasibility := scoring.FeasibilityScore(prices.CurrentPrice, prices.TargetPrice, conditions.PeriodMonths, quote.History)
	confidence := scoring.ConfidenceScore(company, quote)
	score := scoring.FinalScore(expectedReturn, fundamentals, feasibility, confidence, style)

	priceTargetRatio := 1.0
	if prices.TargetPrice > 0 {
		priceTargetRatio = prices.CurrentPrice / prices.TargetPrice
	}
	riskLevel := scoring.ClassifyRisk(volatility, priceTargetRatio, style)

	fc := &contracts.FilteredCandidate{
		Company:           *company,
		Ticker:            ticker,
		Quote:             quote,
		Prices:            prices,
		Stages:            stages,
		PassedAllFilters:  funnel.AllPassed(stages),
		Score:             score,
		ExpectedReturnPct: expectedReturn,
		ConfidenceScore:   confidence,
		RiskLevel:         riskLevel,
	}

	// Evidence chain is display-only; scoring never reads it
	fc.Evidence = o.evidence.Build(company, quote, prices, stages, criteria)

	return fc, company.Sources
}

// failedCandidate synthesizes a zero-scored result carrying only the stages
// that could run
func (o *Orchestrator) failedCandidate(company *contracts.CandidateCompany, stages ...contracts.FilterStageResult) *contracts.FilteredCandidate {
	return &contracts.FilteredCandidate{
		Company:          *company,
		Stages:           stages,
		PassedAllFilters: false,
		Score:            0,
		RiskLevel:        contracts.RiskHigh,
	}
}

// buildSummary generates the one-paragraph run summary
func (o *Orchestrator) buildSummary(result *contracts.RecommendationResult) string {
	total := len(result.Candidates)
	if total == 0 {
		return "분석할 후보 기업이 없습니다. 문서에서 추출된 후보를 확인해 주세요."
	}

	passed := 0
	for _, c := range result.Candidates {
		if c.PassedAllFilters {
			passed++
		}
	}

	if result.TopPick == nil {
		return fmt.Sprintf(
			"후보 %d개를 분석했으나 모든 필터를 통과한 기업이 없습니다. 투자 조건(금액 %.0f, 기간 %d개월)을 완화하거나 후보를 추가해 보세요.",
			total, result.Conditions.Amount, result.Conditions.PeriodMonths,
		)
	}

	top := result.TopPick
	return fmt.Sprintf(
		"후보 %d개 중 %d개가 모든 필터를 통과했습니다. 최우선 추천은 %s(종합 %d점, 기대수익률 %.1f%%, 위험도 %s)입니다. 환율 %.2f %s/%s 기준, %s 스타일로 평가했습니다.",
		total, passed, top.Company.Name, top.Score, top.ExpectedReturnPct, top.RiskLevel,
		result.ExchangeRate.Rate, result.ExchangeRate.To, result.ExchangeRate.From,
		styleKorean(result.Style),
	)
}

func styleKorean(style contracts.InvestmentStyle) string {
	if style == contracts.StyleAggressive {
		return "공격형"
	}
	return "보수형"
}

func topPickName(result *contracts.RecommendationResult) string {
	if result.TopPick == nil {
		return ""
	}
	return result.TopPick.Company.Name
}

func (o *Orchestrator) emit(event ProgressEvent) {
	if o.progress != nil {
		o.progress(event)
	}
}
