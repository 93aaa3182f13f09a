package config

import "time"

// ServerConfig is the root configuration for a scenesync instance.
type ServerConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Assets   AssetsConfig   `yaml:"assets"`
	Session  SessionConfig  `yaml:"session"`
	Bus      BusConfig      `yaml:"bus"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// InstanceConfig identifies this server process. The ID tags frames on the
// cluster bus so an instance can recognize its own publications.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"` // Empty = allow all
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the project store.
type DatabaseConfig struct {
	Driver         string        `yaml:"driver"` // "postgres" or "memory"
	URL            string        `yaml:"url"`    // Overrides the discrete fields when set
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Name           string        `yaml:"name"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	SSLMode        string        `yaml:"ssl_mode"`
	MaxConns       int           `yaml:"max_conns"`
	MinConns       int           `yaml:"min_conns"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	StoreTimeout   time.Duration `yaml:"store_timeout"` // 0 = no per-call timeout
}

// AssetsConfig selects and configures binary model storage.
type AssetsConfig struct {
	Driver         string   `yaml:"driver"` // "disk" or "s3"
	Dir            string   `yaml:"dir"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	S3             S3Config `yaml:"s3"`
}

// S3Config holds object storage settings.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // Custom endpoint (MinIO, R2); empty = AWS
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// SessionConfig holds websocket session settings.
type SessionConfig struct {
	PingInterval    time.Duration `yaml:"ping_interval"`
	PongTimeout     time.Duration `yaml:"pong_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	OutboxSize      int           `yaml:"outbox_size"`
	WriteBatch      int           `yaml:"write_batch"`
	MaxMessageBytes int64         `yaml:"max_message_bytes"`
}

// BusConfig configures the optional cross-instance event bus.
type BusConfig struct {
	Driver  string      `yaml:"driver"` // "none", "redis" or "nats"
	Subject string      `yaml:"subject"`
	Redis   RedisConfig `yaml:"redis"`
	NATS    NATSConfig  `yaml:"nats"`
}

// RedisConfig holds Redis pub/sub settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig holds NATS settings.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
