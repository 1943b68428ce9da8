package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daywook/stockpilot/pkg/config"
	"github.com/daywook/stockpilot/pkg/logger"
)

// rateCmd represents the rate command
var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "현재 적용 환율 조회",
	Long: `분석에 사용되는 USD/KRW 환율을 조회해 출력합니다.

공급자 장애 시에도 항상 값을 반환합니다 (고정 대체 환율).

Example:
  go run ./cmd/stockpilot rate`,
	RunE: runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	d, err := buildDeps(cfg, log)
	if err != nil {
		return fmt.Errorf("build dependencies: %w", err)
	}
	defer d.close()

	rate := d.fxService.GetExchangeRate(cmd.Context())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rate)
}
