package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/daywook/stockpilot/internal/api"
	"github.com/daywook/stockpilot/internal/api/handlers"
	"github.com/daywook/stockpilot/internal/history"
	"github.com/daywook/stockpilot/internal/scheduler"
	"github.com/daywook/stockpilot/pkg/config"
	"github.com/daywook/stockpilot/pkg/database"
	"github.com/daywook/stockpilot/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `추천 API 서버를 시작합니다.

Endpoints:
  GET  /health                       - Health check
  POST /api/recommendations          - 추천 분석 실행
  GET  /api/recommendations/history  - 최근 실행 이력 조회
  GET  /ws/progress                  - 후보별 진행 상황 스트림

Example:
  go run ./cmd/stockpilot api
  go run ./cmd/stockpilot api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
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

	// Run history is optional - only wired when DATABASE_URL is set
	var historyRepo *history.Repository
	if cfg.HistoryEnabled() {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		historyRepo = history.NewRepository(db.Pool)
		if err := historyRepo.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure history schema: %w", err)
		}
		log.Info("Run history enabled")
	}

	// Progress events fan out to websocket clients
	hub := api.NewProgressHub(log)
	d.orchestrator.WithProgress(hub.Broadcast)

	recommendHandler := handlers.NewRecommendHandler(d.orchestrator, historyRepo, log)
	router := api.NewRouter(recommendHandler, hub, log)
	server := api.New(cfg, log, router)

	// FX cache warm-up schedule (optional)
	if cfg.Analysis.FXWarmSchedule != "" {
		sched := scheduler.New(d.fxService, log)
		if err := sched.RegisterFXWarm(cfg.Analysis.FXWarmSchedule); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
