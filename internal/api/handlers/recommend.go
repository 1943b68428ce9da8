package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/internal/engine"
	"github.com/daywook/stockpilot/internal/history"
	"github.com/daywook/stockpilot/pkg/logger"
)

// RecommendHandler handles recommendation API endpoints
// ⭐ SSOT: 추천 API 핸들러는 여기서만
type RecommendHandler struct {
	orchestrator *engine.Orchestrator
	historyRepo  *history.Repository // nil이면 history 기능 비활성화
	logger       *logger.Logger
}

// NewRecommendHandler creates a recommendation handler
func NewRecommendHandler(orchestrator *engine.Orchestrator, historyRepo *history.Repository, log *logger.Logger) *RecommendHandler {
	return &RecommendHandler{
		orchestrator: orchestrator,
		historyRepo:  historyRepo,
		logger:       log,
	}
}

// RecommendRequest is the POST /api/recommendations payload
type RecommendRequest struct {
	Candidates []contracts.CandidateCompany        `json:"candidates"`
	Conditions contracts.InvestmentConditions      `json:"conditions"`
	Criteria   *contracts.LearnedInvestmentCriteria `json:"criteria,omitempty"`
	Style      string                              `json:"style,omitempty"`
}

// Recommend runs the analysis funnel for the supplied candidates
// POST /api/recommendations
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Conditions.PeriodMonths <= 0 {
		writeError(w, http.StatusBadRequest, "conditions.period_months must be positive")
		return
	}
	if req.Conditions.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "conditions.amount must be positive")
		return
	}

	// 알 수 없는 스타일 문자열은 경계에서 보수형으로 정규화
	style := contracts.ParseStyle(req.Style)

	result := h.orchestrator.Run(r.Context(), req.Candidates, req.Conditions, req.Criteria, style)

	// History is best-effort; a storage failure never fails the request
	if h.historyRepo != nil {
		if err := h.historyRepo.SaveRun(r.Context(), result); err != nil {
			h.logger.WithError(err).Warn("Failed to persist run history")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// History returns recent run summaries
// GET /api/recommendations/history?limit=20
func (h *RecommendHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.historyRepo == nil {
		writeError(w, http.StatusNotFound, "run history is not enabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.historyRepo.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list run history")
		writeError(w, http.StatusInternalServerError, "failed to load run history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs": records,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
