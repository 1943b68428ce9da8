package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockpilot",
	Short: "StockPilot - 리포트 기반 투자 추천 엔진",
	Long: `StockPilot CLI

문서에서 추출된 후보 기업을 4단계 필터 퍼널로 검증하고
다요인 점수로 순위를 매겨 최종 추천을 생성합니다.

Usage:
  go run ./cmd/stockpilot [command]

Examples:
  go run ./cmd/stockpilot api
  go run ./cmd/stockpilot analyze --input candidates.json --amount 10000000 --period 12
  go run ./cmd/stockpilot rate`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
