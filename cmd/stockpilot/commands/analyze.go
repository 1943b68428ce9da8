package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/config"
	"github.com/daywook/stockpilot/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "후보 파일로 추천 분석 실행",
	Long: `JSON 파일의 후보 기업을 분석하고 추천 결과를 stdout에 출력합니다.

입력 파일 형식:
  {
    "candidates": [{"name": "삼성전자", "ticker": "005930.KS", ...}],
    "conditions": {"amount": 10000000, "period_months": 12},
    "criteria": {...},
    "style": "conservative"
  }

conditions와 style은 플래그로 덮어쓸 수 있습니다.

Example:
  go run ./cmd/stockpilot analyze --input candidates.json
  go run ./cmd/stockpilot analyze --input candidates.json --amount 5000000 --period 6 --style aggressive`,
	RunE: runAnalyze,
}

var (
	analyzeInput  string
	analyzeAmount float64
	analyzePeriod int
	analyzeStyle  string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "후보 JSON 파일 경로 (필수)")
	analyzeCmd.Flags().Float64Var(&analyzeAmount, "amount", 0, "투자 금액 (파일 값 덮어쓰기)")
	analyzeCmd.Flags().IntVar(&analyzePeriod, "period", 0, "투자 기간(개월) (파일 값 덮어쓰기)")
	analyzeCmd.Flags().StringVar(&analyzeStyle, "style", "", "투자 스타일 conservative|aggressive")
	_ = analyzeCmd.MarkFlagRequired("input")
}

// analyzeRequest is the analyze input file document
type analyzeRequest struct {
	Candidates []contracts.CandidateCompany         `json:"candidates"`
	Conditions contracts.InvestmentConditions       `json:"conditions"`
	Criteria   *contracts.LearnedInvestmentCriteria `json:"criteria,omitempty"`
	Style      string                               `json:"style,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	// 결과 JSON이 stdout으로 나가므로 로그는 콘솔 포맷이 섞이지 않게 유지
	log := logger.New(cfg)

	data, err := os.ReadFile(analyzeInput)
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	var req analyzeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse input file: %w", err)
	}

	if analyzeAmount > 0 {
		req.Conditions.Amount = analyzeAmount
	}
	if analyzePeriod > 0 {
		req.Conditions.PeriodMonths = analyzePeriod
	}
	if analyzeStyle != "" {
		req.Style = analyzeStyle
	}

	if req.Conditions.PeriodMonths <= 0 {
		return fmt.Errorf("conditions.period_months must be positive (use --period)")
	}
	if req.Conditions.Amount <= 0 {
		return fmt.Errorf("conditions.amount must be positive (use --amount)")
	}

	d, err := buildDeps(cfg, log)
	if err != nil {
		return fmt.Errorf("build dependencies: %w", err)
	}
	defer d.close()

	style := contracts.ParseStyle(req.Style)
	result := d.orchestrator.Run(cmd.Context(), req.Candidates, req.Conditions, req.Criteria, style)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
