// Package config loads and validates tracker configuration from YAML.
package config

import "time"

// TrackerConfig is the root configuration for a tracker instance.
type TrackerConfig struct {
	API      APIConfig           `yaml:"api"`
	Database DBConfig            `yaml:"database"`
	Stream   StreamConfig        `yaml:"stream"`
	Alerts   AlertsConfig        `yaml:"alerts"`
	Telegram TelegramConfig      `yaml:"telegram"`
	Poller   PollerConfig        `yaml:"poller"`
	Metrics  MetricsConfig       `yaml:"metrics"`
	Topics   map[string][]string `yaml:"topics"`
}

// APIConfig holds Kalshi API settings.
type APIConfig struct {
	RestURL        string        `yaml:"rest_url"`
	WSURL          string        `yaml:"ws_url"`
	KeyID          string        `yaml:"key_id"`           // API key ID (for KALSHI-ACCESS-KEY header)
	PrivateKeyPath string        `yaml:"private_key_path"` // Path to RSA private key PEM file
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// DBConfig holds the Postgres connection for prints, prefs, and market cache.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// StreamConfig holds WebSocket connection settings.
type StreamConfig struct {
	Channels           []string      `yaml:"channels"`
	SubscribeTimeout   time.Duration `yaml:"subscribe_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
}

// AlertsConfig holds classification and fan-out settings.
type AlertsConfig struct {
	// MinNotional is the floor (dollars) below which trades are dropped
	// entirely: not persisted, not fanned out.
	MinNotional float64 `yaml:"min_notional"`
	// DefaultThreshold is applied to subscribers with no stored preference.
	DefaultThreshold float64 `yaml:"default_threshold"`
	// MaxConcurrentDeliveries bounds parallel notify calls per trade.
	MaxConcurrentDeliveries int64         `yaml:"max_concurrent_deliveries"`
	ShutdownGrace           time.Duration `yaml:"shutdown_grace"`
}

// TelegramConfig holds the delivery adapter settings.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
}

// PollerConfig holds REST fallback settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	PageSize int           `yaml:"page_size"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
