package commands

import (
	"github.com/daywook/stockpilot/internal/engine"
	"github.com/daywook/stockpilot/internal/evidence"
	"github.com/daywook/stockpilot/internal/funnel"
	"github.com/daywook/stockpilot/internal/fx"
	"github.com/daywook/stockpilot/internal/marketdata"
	"github.com/daywook/stockpilot/internal/normalize"
	"github.com/daywook/stockpilot/pkg/config"
	"github.com/daywook/stockpilot/pkg/httputil"
	"github.com/daywook/stockpilot/pkg/logger"
	"github.com/daywook/stockpilot/pkg/redis"
)

// deps bundles the fully wired analysis engine and its shared services
type deps struct {
	fxService    *fx.Service
	orchestrator *engine.Orchestrator
	redisClient  *redis.Client
}

// buildDeps wires config into the analysis engine.
// ⭐ SSOT: 엔진 의존성 조립은 여기서만 (api/analyze/rate 공용)
func buildDeps(cfg *config.Config, log *logger.Logger) (*deps, error) {
	// Redis is optional; disabled client is a no-op
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, err
	}

	// External providers never retry - a slow candidate must not stall
	// the rest of the batch
	marketHTTP := httputil.New(log, cfg.Market.FetchTimeout).
		DisableRetry().
		WithRateLimit(cfg.Market.RateLimit)
	fxHTTP := httputil.New(log, cfg.Market.FetchTimeout).
		DisableRetry()

	if redisClient.Enabled() {
		limiter := redis.NewRateLimiter(redisClient, "stockpilot")
		marketHTTP = marketHTTP.WithDistributedRateLimit(limiter, redis.YahooRateLimit)
		fxHTTP = fxHTTP.WithDistributedRateLimit(limiter, redis.FXRateLimit)
		log.Info("Distributed rate limiting enabled")
	}

	fxService := fx.NewService(
		fx.NewERAPIProvider(fxHTTP, log, cfg.FX.BaseURL),
		cfg.FX.CacheTTL,
		log,
	)

	yahoo := marketdata.NewYahooClient(marketHTTP, log, cfg.Market.YahooBaseURL)
	naver := marketdata.NewNaverClient(marketHTTP, log, cfg.Market.NaverBaseURL)
	resolver := marketdata.NewResolver(yahoo, log)
	market := marketdata.NewService(yahoo, naver, log)

	orchestrator := engine.NewOrchestrator(
		fxService,
		resolver,
		market,
		normalize.New(cfg.Analysis.ReportingCurrency),
		funnel.New(log),
		evidence.NewBuilder(log),
		cfg.Market.FetchTimeout,
		log,
	)

	return &deps{
		fxService:    fxService,
		orchestrator: orchestrator,
		redisClient:  redisClient,
	}, nil
}

// close releases shared resources
func (d *deps) close() {
	if d.redisClient != nil {
		_ = d.redisClient.Close()
	}
}
