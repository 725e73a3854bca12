package config

import "time"

const (
	SourceContract = "contract"
	SourceTracker  = "tracker"
	SourceHybrid   = "hybrid"
)

const (
	DefaultRPCURL          = "https://gensyn-testnet.g.alchemy.com/public"
	DefaultContractAddress = "0x69C6e1D608ec64885E7b185d39b04B491a71768C"
	DefaultExplorerURL     = "https://gensyn-testnet.explorer.alchemy.com"
	DefaultTelegramAPIURL  = "https://api.telegram.org"
	DefaultCacheFile       = "peer_cache.json"
	DefaultAuditLog        = "sent_messages_log.txt"
	DefaultLogLines        = 10
	DefaultTimeoutSeconds  = 15
	DefaultTZOffsetMinutes = 330
	DefaultTZName          = "IST"
	DefaultQueryParam      = "name"
	DefaultAuthHeader      = "Authorization"
)

type Tracker struct {
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Method     string `json:"method,omitempty" yaml:"method,omitempty"` // GET|POST
	QueryParam string `json:"query_param,omitempty" yaml:"query_param,omitempty"`
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	AuthHeader string `json:"auth_header,omitempty" yaml:"auth_header,omitempty"`
}

type Config struct {
	TelegramToken  string   `json:"telegram_api_token" yaml:"telegram_api_token"`
	ChatID         string   `json:"chat_id" yaml:"chat_id"`
	DelaySeconds   int      `json:"delay_seconds" yaml:"delay_seconds"`
	PeerIDs        []string `json:"peer_ids,omitempty" yaml:"peer_ids,omitempty"`
	OwnerAddresses []string `json:"owner_addresses,omitempty" yaml:"owner_addresses,omitempty"`
	ScreenName     string   `json:"screen_name,omitempty" yaml:"screen_name,omitempty"`
	LogLines       int      `json:"log_lines,omitempty" yaml:"log_lines,omitempty"`

	Source          string  `json:"source,omitempty" yaml:"source,omitempty"` // contract|tracker|hybrid
	RPCURL          string  `json:"rpc_url,omitempty" yaml:"rpc_url,omitempty"`
	ContractAddress string  `json:"contract_address,omitempty" yaml:"contract_address,omitempty"`
	ABIFile         string  `json:"abi_file,omitempty" yaml:"abi_file,omitempty"`
	ExplorerURL     string  `json:"explorer_url,omitempty" yaml:"explorer_url,omitempty"`
	Tracker         Tracker `json:"tracker,omitempty" yaml:"tracker,omitempty"`

	CacheFile         string `json:"cache_file,omitempty" yaml:"cache_file,omitempty"`
	AuditLog          string `json:"audit_log,omitempty" yaml:"audit_log,omitempty"`
	TelegramAPIURL    string `json:"telegram_api_url,omitempty" yaml:"telegram_api_url,omitempty"`
	DiscordWebhookURL string `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty"`
	SOCKS5Proxy       string `json:"socks5_proxy,omitempty" yaml:"socks5_proxy,omitempty"`
	MetricsAddr       string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`

	RequestTimeoutSeconds int    `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty"`
	TZOffsetMinutes       *int   `json:"timezone_offset_minutes,omitempty" yaml:"timezone_offset_minutes,omitempty"`
	TZName                string `json:"timezone_name,omitempty" yaml:"timezone_name,omitempty"`
}

func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// UsesContract reports whether the configured source reads the coordinator contract.
func (c *Config) UsesContract() bool {
	return c.Source == SourceContract || c.Source == SourceHybrid
}

// UsesTracker reports whether the configured source calls the tracking API.
func (c *Config) UsesTracker() bool {
	return c.Source == SourceTracker || c.Source == SourceHybrid
}
