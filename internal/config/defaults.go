package config

import (
	"os"
	"time"
)

// Backend selectors.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	AssetsDisk = "disk"
	AssetsS3   = "s3"

	BusNone  = "none"
	BusRedis = "redis"
	BusNATS  = "nats"
)

// Default values for optional configuration fields.
const (
	DefaultInstanceID      = "scenesync"
	DefaultHTTPPort        = 5000
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultAssetsDir       = "uploads"
	DefaultMaxUploadBytes  = 100 << 20
	DefaultS3Region        = "us-east-1"
	DefaultS3Prefix        = "models/"
	DefaultPingInterval    = 25 * time.Second
	DefaultPongTimeout     = 60 * time.Second
	DefaultWSWriteTimeout  = 10 * time.Second
	DefaultOutboxSize      = 256
	DefaultWriteBatch      = 64
	DefaultMaxMessageBytes = 1 << 20
	DefaultBusSubject      = "scenesync.rooms"
	DefaultRedisAddr       = "localhost:6379"
	DefaultNATSURL         = "nats://127.0.0.1:4222"
	DefaultMetricsPath     = "/metrics"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

func (c *ServerConfig) applyDefaults() {
	// Instance defaults
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
		if host, err := os.Hostname(); err == nil && host != "" {
			c.Instance.ID = host
		}
	}

	// HTTP defaults
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultHTTPPort
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = DefaultReadTimeout
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = DefaultWriteTimeout
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = DefaultIdleTimeout
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Database defaults
	applyDBDefaults(&c.Database)

	// Assets defaults
	if c.Assets.Driver == "" {
		c.Assets.Driver = AssetsDisk
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = DefaultAssetsDir
	}
	if c.Assets.MaxUploadBytes == 0 {
		c.Assets.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Assets.S3.Region == "" {
		c.Assets.S3.Region = DefaultS3Region
	}
	if c.Assets.S3.Prefix == "" {
		c.Assets.S3.Prefix = DefaultS3Prefix
	}

	// Session defaults
	if c.Session.PingInterval == 0 {
		c.Session.PingInterval = DefaultPingInterval
	}
	if c.Session.PongTimeout == 0 {
		c.Session.PongTimeout = DefaultPongTimeout
	}
	if c.Session.WriteTimeout == 0 {
		c.Session.WriteTimeout = DefaultWSWriteTimeout
	}
	if c.Session.OutboxSize == 0 {
		c.Session.OutboxSize = DefaultOutboxSize
	}
	if c.Session.WriteBatch == 0 {
		c.Session.WriteBatch = DefaultWriteBatch
	}
	if c.Session.MaxMessageBytes == 0 {
		c.Session.MaxMessageBytes = DefaultMaxMessageBytes
	}

	// Bus defaults
	if c.Bus.Driver == "" {
		c.Bus.Driver = BusNone
	}
	if c.Bus.Subject == "" {
		c.Bus.Subject = DefaultBusSubject
	}
	if c.Bus.Driver == BusRedis && c.Bus.Redis.Addr == "" {
		c.Bus.Redis.Addr = DefaultRedisAddr
	}
	if c.Bus.Driver == BusNATS && c.Bus.NATS.URL == "" {
		c.Bus.NATS.URL = DefaultNATSURL
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DatabaseConfig) {
	// A config that names no database at all runs on the in-memory store.
	if db.Driver == "" {
		if db.URL != "" || db.Host != "" {
			db.Driver = DriverPostgres
		} else {
			db.Driver = DriverMemory
		}
	}
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
