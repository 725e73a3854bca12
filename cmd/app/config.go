package main

import (
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/config"
	"github.com/shuliakovsky/peer-monitor/pkg/secrets"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadOrSetup returns the stored config, running the interactive setup on
// first start or when the operator asks for a new one. Any failure here is
// fatal.
func loadOrSetup(path string, in io.Reader, out io.Writer, logger *zap.Logger) *config.Config {
	cfg, err := config.Load(path, logger)
	switch {
	case errors.Is(err, config.ErrNotFound):
		cfg = setup(path, in, out, logger)
	case err != nil:
		logger.Fatal("config_load_error", zap.String("path", path), zap.Error(err))
	case getEnv("PEERMON_SETUP", "") == "1":
		cfg = setup(path, in, out, logger)
	default:
		reuse, err := config.AskReuse(in, out)
		if err != nil {
			logger.Fatal("config_prompt_error", zap.Error(err))
		}
		if !reuse {
			cfg = setup(path, in, out, logger)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config_invalid", zap.String("path", path), zap.Error(err))
	}
	secrets.Register(cfg.TelegramToken, cfg.Tracker.APIKey, cfg.DiscordWebhookURL)
	secrets.RegisterURL(cfg.RPCURL)
	secrets.RegisterURL(cfg.Tracker.BaseURL)
	return cfg
}

func setup(path string, in io.Reader, out io.Writer, logger *zap.Logger) *config.Config {
	cfg, err := config.Prompt(in, out)
	if err != nil {
		logger.Fatal("config_prompt_error", zap.Error(err))
	}
	if err := config.Save(path, cfg); err != nil {
		logger.Fatal("config_save_error", zap.String("path", path), zap.Error(err))
	}
	logger.Info("config_saved", zap.String("path", path))
	return cfg
}
