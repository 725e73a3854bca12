package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/audit"
	"github.com/shuliakovsky/peer-monitor/pkg/cache"
	"github.com/shuliakovsky/peer-monitor/pkg/chain"
	"github.com/shuliakovsky/peer-monitor/pkg/config"
	"github.com/shuliakovsky/peer-monitor/pkg/logtail"
	"github.com/shuliakovsky/peer-monitor/pkg/message"
	"github.com/shuliakovsky/peer-monitor/pkg/monitor"
	"github.com/shuliakovsky/peer-monitor/pkg/notify"
	"github.com/shuliakovsky/peer-monitor/pkg/source"
	"github.com/shuliakovsky/peer-monitor/pkg/timefmt"
	"github.com/shuliakovsky/peer-monitor/pkg/tracker"
	"github.com/shuliakovsky/peer-monitor/pkg/transport"
)

func buildPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*monitor.Pipeline, func(), error) {
	hc, err := transport.NewHTTPClient(cfg.RequestTimeout(), cfg.SOCKS5Proxy)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {}

	var deps source.Deps
	if cfg.UsesContract() {
		abiJSON := ""
		if cfg.ABIFile != "" {
			b, err := os.ReadFile(cfg.ABIFile)
			if err != nil {
				return nil, nil, fmt.Errorf("read abi file: %w", err)
			}
			abiJSON = string(b)
		}
		reader, err := chain.Dial(ctx, cfg.RPCURL, cfg.ContractAddress, abiJSON, hc, logger.Named("chain"))
		if err != nil {
			return nil, nil, err
		}
		cleanup = reader.Close
		deps.Reader = reader
		deps.Cache = cache.NewAddressCache(cfg.CacheFile, reader, logger.Named("cache"))
	}
	if cfg.UsesTracker() {
		deps.Tracker = tracker.New(tracker.Options{
			BaseURL:    cfg.Tracker.BaseURL,
			Path:       cfg.Tracker.Path,
			Method:     cfg.Tracker.Method,
			QueryParam: cfg.Tracker.QueryParam,
			APIKey:     cfg.Tracker.APIKey,
			AuthHeader: cfg.Tracker.AuthHeader,
		}, hc, logger.Named("tracker"))
	}

	src, err := source.New(cfg, deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	channels := []notify.Notifier{
		notify.NewTelegram(cfg.TelegramAPIURL, cfg.TelegramToken, cfg.ChatID, hc, logger.Named("telegram")),
	}
	if cfg.DiscordWebhookURL != "" {
		channels = append(channels, notify.NewDiscord(cfg.DiscordWebhookURL, hc, logger.Named("discord")))
	}

	var tail monitor.Tailer
	if cfg.ScreenName != "" {
		tail = logtail.NewScreen(cfg.ScreenName, cfg.LogLines, logtail.ExecRunner, logger.Named("logtail"))
	}

	builder := message.NewBuilder(cfg.ExplorerURL, timefmt.New(*cfg.TZOffsetMinutes, cfg.TZName))
	p := monitor.New(src, tail, builder, notify.NewMulti(logger, channels...), audit.New(cfg.AuditLog), logger)
	return p, cleanup, nil
}
