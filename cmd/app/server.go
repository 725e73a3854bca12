package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/health"
	"github.com/shuliakovsky/peer-monitor/pkg/metrics"
)

// startMetricsServer exposes /metrics and /healthz on addr. Empty addr
// disables the listener.
func startMetricsServer(addr string, live *health.Tracker, logger *zap.Logger) {
	if addr == "" {
		return
	}
	metrics.Init()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/healthz", live.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics_listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics_server_down", zap.Error(err))
		}
	}()
}
