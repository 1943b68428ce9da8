package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/internal/engine"
	"github.com/daywook/stockpilot/internal/evidence"
	"github.com/daywook/stockpilot/internal/funnel"
	"github.com/daywook/stockpilot/internal/fx"
	"github.com/daywook/stockpilot/internal/normalize"
	"github.com/daywook/stockpilot/pkg/logger"
)

type stubResolver struct{}

func (stubResolver) ResolveTicker(ctx context.Context, companyName, marketHint string) (string, error) {
	return "", nil // 검색 결과 없음 - 유효성 검증에서 탈락
}

type stubMarket struct{}

func (stubMarket) FetchQuote(ctx context.Context, ticker string, periodMonths int) (*contracts.MarketQuote, error) {
	return nil, nil
}

type stubRateProvider struct{}

func (stubRateProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	return 1300, nil
}

func newTestHandler() *RecommendHandler {
	log := logger.NewNop()
	orchestrator := engine.NewOrchestrator(
		fx.NewService(stubRateProvider{}, time.Minute, log),
		stubResolver{},
		stubMarket{},
		normalize.New("KRW"),
		funnel.New(log),
		evidence.NewBuilder(log),
		time.Second,
		log,
	)
	return NewRecommendHandler(orchestrator, nil, log)
}

func postRecommend(t *testing.T, h *RecommendHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)
	return rec
}

func TestRecommendReturnsResult(t *testing.T) {
	h := newTestHandler()

	rec := postRecommend(t, h, `{
		"candidates": [{"name": "유령회사", "currency": "KRW", "target_price": 10000}],
		"conditions": {"amount": 10000000, "period_months": 12},
		"style": "aggressive"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	// 티커 미해석 후보도 결과에 포함된다
	require.Len(t, result.Candidates, 1)
	assert.False(t, result.Candidates[0].PassedAllFilters)
	assert.Equal(t, contracts.StyleAggressive, result.Style)
	assert.Equal(t, 1300.0, result.ExchangeRate.Rate)
	assert.NotEmpty(t, result.Summary)
}

func TestRecommendInvalidBody(t *testing.T) {
	rec := postRecommend(t, newTestHandler(), `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendValidatesConditions(t *testing.T) {
	h := newTestHandler()

	rec := postRecommend(t, h, `{
		"candidates": [],
		"conditions": {"amount": 10000000, "period_months": 0}
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "period_months")

	rec = postRecommend(t, h, `{
		"candidates": [],
		"conditions": {"amount": 0, "period_months": 12}
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "amount")
}

func TestRecommendUnknownStyleDefaultsToConservative(t *testing.T) {
	h := newTestHandler()

	rec := postRecommend(t, h, `{
		"candidates": [],
		"conditions": {"amount": 1000, "period_months": 6},
		"style": "yolo"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, contracts.StyleConservative, result.Style)
}

func TestHistoryDisabled(t *testing.T) {
	h := newTestHandler() // historyRepo nil

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/history", nil)
	rec := httptest.NewRecorder()
	h.History(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
