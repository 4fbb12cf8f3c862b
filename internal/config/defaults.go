package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL            = "https://api.elections.kalshi.com"
	DefaultWSURL              = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultSubscribeTimeout   = 10 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultPingInterval       = 15 * time.Second
	DefaultPingTimeout        = 60 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultStreamBufferSize   = 10000
	DefaultMinNotional        = 500
	DefaultThreshold          = 5000
	DefaultMaxDeliveries      = 8
	DefaultShutdownGrace      = 10 * time.Second
	DefaultPollInterval       = 10 * time.Second
	DefaultPollPageSize       = 100
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
)

// DefaultTopics maps topic filter keys to venue tag lists. The venue's tag
// taxonomy drifts (e.g. "Economy" vs "Economics"), so deployments override
// this in YAML rather than patching code.
func DefaultTopics() map[string][]string {
	return map[string][]string{
		"macro":  {"Economy", "Politics", "Macro"},
		"crypto": {"Crypto"},
		"sports": {"Sports"},
		"all":    nil,
	}
}

// ApplyDefaults fills in zero-valued optional fields.
func (c *TrackerConfig) ApplyDefaults() {
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	if len(c.Stream.Channels) == 0 {
		c.Stream.Channels = []string{"trade"}
	}
	if c.Stream.SubscribeTimeout == 0 {
		c.Stream.SubscribeTimeout = DefaultSubscribeTimeout
	}
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.PingTimeout == 0 {
		c.Stream.PingTimeout = DefaultPingTimeout
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBufferSize
	}

	if c.Alerts.MinNotional == 0 {
		c.Alerts.MinNotional = DefaultMinNotional
	}
	if c.Alerts.DefaultThreshold == 0 {
		c.Alerts.DefaultThreshold = DefaultThreshold
	}
	if c.Alerts.MaxConcurrentDeliveries == 0 {
		c.Alerts.MaxConcurrentDeliveries = DefaultMaxDeliveries
	}
	if c.Alerts.ShutdownGrace == 0 {
		c.Alerts.ShutdownGrace = DefaultShutdownGrace
	}

	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.PageSize == 0 {
		c.Poller.PageSize = DefaultPollPageSize
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Topics == nil {
		c.Topics = DefaultTopics()
	}
}
