package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/internal/evidence"
	"github.com/daywook/stockpilot/internal/funnel"
	"github.com/daywook/stockpilot/internal/fx"
	"github.com/daywook/stockpilot/internal/normalize"
	"github.com/daywook/stockpilot/pkg/logger"
)

// fakeResolver maps names to tickers; missing names resolve to ""
type fakeResolver struct {
	tickers map[string]string
	err     error
}

func (f *fakeResolver) ResolveTicker(ctx context.Context, companyName, marketHint string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.tickers[companyName], nil
}

// fakeMarket serves canned quotes; missing tickers return an error
type fakeMarket struct {
	quotes map[string]*contracts.MarketQuote
}

func (f *fakeMarket) FetchQuote(ctx context.Context, ticker string, periodMonths int) (*contracts.MarketQuote, error) {
	q, ok := f.quotes[ticker]
	if !ok {
		return nil, errors.New("quote unavailable")
	}
	// 호출자가 수정해도 다음 테스트에 영향 없게 복사
	copied := *q
	return &copied, nil
}

type fixedRateProvider struct{ rate float64 }

func (f fixedRateProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	return f.rate, nil
}

func fptr(v float64) *float64 { return &v }

// growthHistory builds one close per month rising at the given rate
func growthHistory(start, growth float64, months int) []contracts.PricePoint {
	points := make([]contracts.PricePoint, 0, months)
	price := start
	date := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		points = append(points, contracts.PricePoint{Date: date, Close: price})
		price *= 1 + growth
		date = date.AddDate(0, 1, 0)
	}
	return points
}

func newTestOrchestrator(resolver TickerResolver, market QuoteFetcher) *Orchestrator {
	log := logger.NewNop()
	return NewOrchestrator(
		fx.NewService(fixedRateProvider{rate: 1300}, time.Minute, log),
		resolver,
		market,
		normalize.New("KRW"),
		funnel.New(log),
		evidence.NewBuilder(log),
		5*time.Second,
		log,
	)
}

func goodQuote(ticker string, price float64) *contracts.MarketQuote {
	return &contracts.MarketQuote{
		Ticker:          ticker,
		Currency:        "KRW",
		CurrentPrice:    price,
		TargetMeanPrice: fptr(price * 1.4),
		TrailingPE:      fptr(11),
		PriceToBook:     fptr(1.2),
		ReturnOnEquity:  fptr(12),
		History:         growthHistory(price*0.7, 0.05, 10),
	}
}

func conditions() contracts.InvestmentConditions {
	return contracts.InvestmentConditions{Amount: 10000000, PeriodMonths: 12}
}

func TestRunUnresolvableTicker(t *testing.T) {
	resolver := &fakeResolver{tickers: map[string]string{}}
	o := newTestOrchestrator(resolver, &fakeMarket{})

	candidates := []contracts.CandidateCompany{
		{Name: "유령회사", Currency: "KRW", TargetPrice: fptr(10000), Confidence: 0.5},
	}

	result := o.Run(context.Background(), candidates, conditions(), nil, contracts.StyleConservative)

	require.Len(t, result.Candidates, 1)
	fc := result.Candidates[0]

	// 검색 결과 없음 = 유효성 검증 단계에서만 탈락 기록
	require.Len(t, fc.Stages, 1)
	assert.Equal(t, contracts.StageValidity, fc.Stages[0].Name)
	assert.False(t, fc.Stages[0].Passed)
	assert.False(t, fc.PassedAllFilters)
	assert.Equal(t, 0, fc.Score)
	assert.Equal(t, contracts.RiskHigh, fc.RiskLevel)
	assert.Nil(t, result.TopPick)
}

func TestRunResolverTransportError(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("search endpoint down")}
	o := newTestOrchestrator(resolver, &fakeMarket{})

	candidates := []contracts.CandidateCompany{
		{Name: "삼성전자", Currency: "KRW", TargetPrice: fptr(90000)},
	}

	result := o.Run(context.Background(), candidates, conditions(), nil, contracts.StyleConservative)

	require.Len(t, result.Candidates, 1)
	fc := result.Candidates[0]

	// 전송 오류는 데이터 조회 단계 실패로 구분된다
	require.Len(t, fc.Stages, 1)
	assert.Equal(t, contracts.StageDataRetrieval, fc.Stages[0].Name)
	assert.False(t, fc.PassedAllFilters)
}

func TestRunQuoteFetchFailureIsolated(t *testing.T) {
	resolver := &fakeResolver{tickers: map[string]string{
		"좋은회사": "GOOD.KS",
		"깨진회사": "BROKEN.KS",
	}}
	market := &fakeMarket{quotes: map[string]*contracts.MarketQuote{
		"GOOD.KS": goodQuote("GOOD.KS", 70000),
	}}
	o := newTestOrchestrator(resolver, market)

	candidates := []contracts.CandidateCompany{
		{Name: "깨진회사", Currency: "KRW", TargetPrice: fptr(100000), RecommendedBuyPrice: fptr(70000), Confidence: 0.5},
		{Name: "좋은회사", Currency: "KRW", TargetPrice: fptr(90000), RecommendedBuyPrice: fptr(68000), Confidence: 0.7},
	}

	result := o.Run(context.Background(), candidates, conditions(), nil, contracts.StyleConservative)

	// 한 후보의 조회 실패가 배치를 중단시키지 않는다
	require.Len(t, result.Candidates, 2)

	byName := map[string]contracts.FilteredCandidate{}
	for _, fc := range result.Candidates {
		byName[fc.Company.Name] = fc
	}

	broken := byName["깨진회사"]
	assert.False(t, broken.PassedAllFilters)
	assert.Contains(t, broken.FailedStageNames(), contracts.StageDataRetrieval)
	assert.Equal(t, "BROKEN.KS", broken.Ticker)

	good := byName["좋은회사"]
	assert.True(t, good.PassedAllFilters)
	assert.Greater(t, good.Score, 0)
	require.NotNil(t, result.TopPick)
	assert.Equal(t, "좋은회사", result.TopPick.Company.Name)
}

func TestRunRanksByScoreDescending(t *testing.T) {
	resolver := &fakeResolver{tickers: map[string]string{
		"알파": "ALPHA.KS",
		"베타": "BETA.KS",
		"감마": "GAMMA.KS",
	}}
	market := &fakeMarket{quotes: map[string]*contracts.MarketQuote{
		"ALPHA.KS": goodQuote("ALPHA.KS", 70000),
		"BETA.KS":  goodQuote("BETA.KS", 50000),
		"GAMMA.KS": goodQuote("GAMMA.KS", 60000),
	}}
	o := newTestOrchestrator(resolver, market)

	candidates := []contracts.CandidateCompany{
		{Name: "알파", Currency: "KRW", TargetPrice: fptr(80000), Confidence: 0.3},
		{Name: "베타", Currency: "KRW", TargetPrice: fptr(70000), Confidence: 0.9},
		{Name: "감마", Currency: "KRW", TargetPrice: fptr(75000), Confidence: 0.6},
	}

	result := o.Run(context.Background(), candidates, conditions(), nil, contracts.StyleAggressive)

	require.Len(t, result.Candidates, 3)
	for i := 1; i < len(result.Candidates); i++ {
		assert.GreaterOrEqual(t,
			result.Candidates[i-1].Score, result.Candidates[i].Score,
			"candidates must be sorted by score descending")
	}

	require.NotNil(t, result.TopPick)
	assert.Equal(t, result.Candidates[0].Score, result.TopPick.Score)
	assert.True(t, result.TopPick.PassedAllFilters)
}

func TestRunTopPickSkipsFailedCandidates(t *testing.T) {
	resolver := &fakeResolver{tickers: map[string]string{
		"고평가": "OVER.KS",
		"정상":  "OK.KS",
	}}

	// 고평가: 현재가가 목표가 이상 → 2단계 탈락 (점수는 높을 수 있음)
	over := goodQuote("OVER.KS", 100000)
	market := &fakeMarket{quotes: map[string]*contracts.MarketQuote{
		"OVER.KS": over,
		"OK.KS":   goodQuote("OK.KS", 70000),
	}}
	o := newTestOrchestrator(resolver, market)

	candidates := []contracts.CandidateCompany{
		{Name: "고평가", Currency: "KRW", TargetPrice: fptr(90000), Confidence: 0.9},
		{Name: "정상", Currency: "KRW", TargetPrice: fptr(90000), Confidence: 0.5},
	}

	result := o.Run(context.Background(), candidates, conditions(), nil, contracts.StyleConservative)

	require.NotNil(t, result.TopPick)
	assert.Equal(t, "정상", result.TopPick.Company.Name)
	assert.True(t, result.TopPick.PassedAllFilters)
}

func TestRunEmptyCandidates(t *testing.T) {
	o := newTestOrchestrator(&fakeResolver{}, &fakeMarket{})

	result := o.Run(context.Background(), nil, conditions(), nil, contracts.StyleConservative)

	require.NotNil(t, result)
	assert.Empty(t, result.Candidates)
	assert.Nil(t, result.TopPick)
	assert.Contains(t, result.Summary, "후보 기업이 없습니다")
}

func TestRunCollectsAndDedupsSources(t *testing.T) {
	resolver := &fakeResolver{tickers: map[string]string{"정상": "OK.KS"}}
	market := &fakeMarket{quotes: map[string]*contracts.MarketQuote{
		"OK.KS": goodQuote("OK.KS", 70000),
	}}
	o := newTestOrchestrator(resolver, market)

	ref := contracts.SourceReference{FileName: "report.pdf", Location: "p.3"}
	candidates := []contracts.CandidateCompany{
		{
			Name: "정상", Currency: "KRW", TargetPrice: fptr(90000), Confidence: 0.5,
			Sources: []contracts.SourceReference{ref, ref},
		},
	}

	result := o.Run(context.Background(), candidates, conditions(), nil, contracts.StyleConservative)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, ref, result.Sources[0])
}

func TestRunEmitsProgressEvents(t *testing.T) {
	resolver := &fakeResolver{tickers: map[string]string{"정상": "OK.KS"}}
	market := &fakeMarket{quotes: map[string]*contracts.MarketQuote{
		"OK.KS": goodQuote("OK.KS", 70000),
	}}

	var events []ProgressEvent
	o := newTestOrchestrator(resolver, market).WithProgress(func(e ProgressEvent) {
		events = append(events, e)
	})

	candidates := []contracts.CandidateCompany{
		{Name: "정상", Currency: "KRW", TargetPrice: fptr(90000), Confidence: 0.5},
	}

	_ = o.Run(context.Background(), candidates, conditions(), nil, contracts.StyleConservative)

	// 후보당 analyzing + done
	require.Len(t, events, 2)
	assert.Equal(t, "analyzing", events[0].Step)
	assert.Equal(t, "done", events[1].Step)
	assert.Equal(t, 1, events[0].Index)
	assert.Equal(t, 1, events[0].Total)
}

func TestRunSummaryMentionsTopPick(t *testing.T) {
	resolver := &fakeResolver{tickers: map[string]string{"정상": "OK.KS"}}
	market := &fakeMarket{quotes: map[string]*contracts.MarketQuote{
		"OK.KS": goodQuote("OK.KS", 70000),
	}}
	o := newTestOrchestrator(resolver, market)

	candidates := []contracts.CandidateCompany{
		{Name: "정상", Currency: "KRW", TargetPrice: fptr(90000), Confidence: 0.5},
	}

	result := o.Run(context.Background(), candidates, conditions(), nil, contracts.StyleConservative)

	require.NotNil(t, result.TopPick)
	assert.Contains(t, result.Summary, "정상")
	assert.Contains(t, result.Summary, fmt.Sprintf("%d점", result.TopPick.Score))
}
