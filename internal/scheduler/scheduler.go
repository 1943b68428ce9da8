package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/daywook/stockpilot/internal/fx"
	"github.com/daywook/stockpilot/pkg/logger"
)

// Scheduler runs periodic maintenance jobs.
// 현재는 환율 캐시 예열 하나뿐이다 - 5분 TTL 캐시가 분석 실행 사이에도
// 따뜻하게 유지되도록 주기적으로 갱신한다.
// ⭐ SSOT: 주기 작업 등록은 여기서만
type Scheduler struct {
	cron      *cron.Cron
	fxService *fx.Service
	logger    *logger.Logger
}

// New creates a scheduler
func New(fxService *fx.Service, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		fxService: fxService,
		logger:    log,
	}
}

// RegisterFXWarm registers the exchange-rate warm job with a cron spec
// (예: "*/4 * * * *")
func (s *Scheduler) RegisterFXWarm(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.fxService.Warm(context.Background())
		s.logger.Debug("FX rate cache warmed")
	})
	if err != nil {
		return fmt.Errorf("register fx warm job: %w", err)
	}

	s.logger.WithField("spec", spec).Info("FX warm job registered")
	return nil
}

// Start begins running registered jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
