package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("config file not found")

var envRe = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the config file at path. ${VAR} placeholders are substituted
// from the environment before decoding. Defaults are not applied.
func Load(path string, logger *zap.Logger) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b = expandEnv(b, path, logger)

	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(b, &cfg)
	} else {
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

func expandEnv(b []byte, path string, logger *zap.Logger) []byte {
	b = envRe.ReplaceAllFunc(b, func(m []byte) []byte {
		k := string(envRe.FindSubmatch(m)[1])
		val := os.Getenv(k)
		if val == "" {
			logger.Warn("env variable is empty during config expansion",
				zap.String("file", filepath.Base(path)),
				zap.String("var", k))
		}
		return []byte(val)
	})
	return b
}

// Save overwrites path with cfg.
func Save(path string, cfg *Config) error {
	var (
		b   []byte
		err error
	)
	if isYAML(path) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(cfg); err == nil {
			err = enc.Close()
		}
		b = buf.Bytes()
	} else {
		b, err = json.MarshalIndent(cfg, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, b, 0600)
}

func (c *Config) ApplyDefaults() {
	if c.Source == "" {
		c.Source = SourceContract
	}
	c.Source = strings.ToLower(c.Source)
	if c.LogLines <= 0 {
		c.LogLines = DefaultLogLines
	}
	if c.RPCURL == "" {
		c.RPCURL = DefaultRPCURL
	}
	if c.ContractAddress == "" {
		c.ContractAddress = DefaultContractAddress
	}
	if c.ExplorerURL == "" {
		c.ExplorerURL = DefaultExplorerURL
	}
	if c.CacheFile == "" {
		c.CacheFile = DefaultCacheFile
	}
	if c.AuditLog == "" {
		c.AuditLog = DefaultAuditLog
	}
	if c.TelegramAPIURL == "" {
		c.TelegramAPIURL = DefaultTelegramAPIURL
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.TZOffsetMinutes == nil {
		off := DefaultTZOffsetMinutes
		c.TZOffsetMinutes = &off
	}
	if c.TZName == "" {
		c.TZName = DefaultTZName
	}
	if c.Tracker.Method == "" {
		c.Tracker.Method = "GET"
	}
	c.Tracker.Method = strings.ToUpper(c.Tracker.Method)
	if c.Tracker.QueryParam == "" {
		c.Tracker.QueryParam = DefaultQueryParam
	}
	if c.Tracker.AuthHeader == "" {
		c.Tracker.AuthHeader = DefaultAuthHeader
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("telegram_api_token is required"))
	}
	if c.ChatID == "" {
		errs = append(errs, errors.New("chat_id is required"))
	}
	if c.DelaySeconds <= 0 {
		errs = append(errs, errors.New("delay_seconds must be positive"))
	}
	if len(c.PeerIDs) == 0 && len(c.OwnerAddresses) == 0 {
		errs = append(errs, errors.New("peer_ids or owner_addresses must be set"))
	}
	switch c.Source {
	case SourceContract, SourceHybrid:
		if c.RPCURL == "" || c.ContractAddress == "" {
			errs = append(errs, errors.New("rpc_url and contract_address are required for contract reads"))
		}
	case SourceTracker:
	default:
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}
	if c.UsesTracker() {
		if c.Tracker.BaseURL == "" {
			errs = append(errs, errors.New("tracker.base_url is required"))
		}
		if c.Tracker.Method != "GET" && c.Tracker.Method != "POST" {
			errs = append(errs, fmt.Errorf("tracker.method %q must be GET or POST", c.Tracker.Method))
		}
		if len(c.OwnerAddresses) > 0 && c.Source == SourceTracker {
			errs = append(errs, errors.New("owner_addresses need the contract; use source contract or hybrid"))
		}
	}
	return errors.Join(errs...)
}
