package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/health"
	"github.com/shuliakovsky/peer-monitor/pkg/scheduler"
)

func main() {
	PrintVersion()
	_ = godotenv.Load()

	logger := initLogger(getEnv("LOG_LEVEL", "info"))
	defer logger.Sync()

	stdin := bufio.NewReader(os.Stdin)
	cfg := loadOrSetup(getEnv("PEERMON_CONFIG", "config.json"), stdin, os.Stdout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, cleanup, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("pipeline_init_error", zap.Error(err))
	}
	defer cleanup()

	live := health.NewTracker(pipeline, 3*cfg.Delay()+time.Minute)
	startMetricsServer(cfg.MetricsAddr, live, logger)

	logger.Info("monitor_started",
		zap.String("source", cfg.Source),
		zap.Int("peers", len(cfg.PeerIDs)),
		zap.Int("owners", len(cfg.OwnerAddresses)),
		zap.Duration("delay", cfg.Delay()),
	)
	_ = scheduler.New(live, cfg.Delay(), logger).Run(ctx)
	logger.Info("monitor_stopped")
}
