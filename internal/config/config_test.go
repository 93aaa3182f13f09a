package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: scene-1
http:
  port: 8080
  allowed_origins:
    - http://localhost:3000
database:
  driver: postgres
  host: localhost
  port: 5432
  name: scenes
  user: scene
  password: scenepass
assets:
  driver: s3
  s3:
    bucket: models
    endpoint: http://localhost:9000
    use_path_style: true
bus:
  driver: redis
  redis:
    addr: redis:6379
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "scene-1" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "scene-1")
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("HTTP.Port = %d, want 8080", cfg.HTTP.Port)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("HTTP.AllowedOrigins = %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if !cfg.Assets.S3.UsePathStyle {
		t.Error("Assets.S3.UsePathStyle = false, want true")
	}
	if cfg.Bus.Redis.Addr != "redis:6379" {
		t.Errorf("Bus.Redis.Addr = %q, want %q", cfg.Bus.Redis.Addr, "redis:6379")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  host: localhost
  name: scenes
  user: scene
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: scene-1
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Database.Driver != DriverMemory && os.Getenv("DATABASE_URL") == "" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverMemory)
	}
	if cfg.Assets.Driver != AssetsDisk {
		t.Errorf("Assets.Driver = %q, want %q", cfg.Assets.Driver, AssetsDisk)
	}
	if cfg.Assets.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("Assets.MaxUploadBytes = %d, want %d", cfg.Assets.MaxUploadBytes, DefaultMaxUploadBytes)
	}
	if cfg.Session.PingInterval != DefaultPingInterval {
		t.Errorf("Session.PingInterval = %v, want %v", cfg.Session.PingInterval, DefaultPingInterval)
	}
	if cfg.Session.PongTimeout != DefaultPongTimeout {
		t.Errorf("Session.PongTimeout = %v, want %v", cfg.Session.PongTimeout, DefaultPongTimeout)
	}
	if cfg.Session.WriteBatch != DefaultWriteBatch {
		t.Errorf("Session.WriteBatch = %d, want %d", cfg.Session.WriteBatch, DefaultWriteBatch)
	}
	if cfg.Session.OutboxSize != DefaultOutboxSize {
		t.Errorf("Session.OutboxSize = %d, want %d", cfg.Session.OutboxSize, DefaultOutboxSize)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.HTTP.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("HTTP.ShutdownTimeout = %v, want %v", cfg.HTTP.ShutdownTimeout, DefaultShutdownTimeout)
	}
}

func TestLoadWithDefaultsNoFile(t *testing.T) {
	t.Setenv("PORT", "6123")
	t.Setenv("INSTANCE_ID", "from-env")

	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.HTTP.Port != 6123 {
		t.Errorf("HTTP.Port = %d, want 6123", cfg.HTTP.Port)
	}
	if cfg.Instance.ID != "from-env" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "from-env")
	}
}

func TestApplyDefaultsDatabaseDriver(t *testing.T) {
	tests := []struct {
		name string
		db   DatabaseConfig
		want string
	}{
		{name: "empty", db: DatabaseConfig{}, want: DriverMemory},
		{name: "url", db: DatabaseConfig{URL: "postgres://localhost/scenes"}, want: DriverPostgres},
		{name: "host", db: DatabaseConfig{Host: "db"}, want: DriverPostgres},
		{name: "explicit memory", db: DatabaseConfig{Driver: DriverMemory, Host: "db"}, want: DriverMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := tt.db
			applyDBDefaults(&db)
			if db.Driver != tt.want {
				t.Errorf("Driver = %q, want %q", db.Driver, tt.want)
			}
			if db.MaxConns != DefaultMaxConns {
				t.Errorf("MaxConns = %d, want %d", db.MaxConns, DefaultMaxConns)
			}
		})
	}
}

func TestApplyDefaultsBusAddr(t *testing.T) {
	cfg := &ServerConfig{Bus: BusConfig{Driver: BusNATS}}
	cfg.applyDefaults()
	if cfg.Bus.NATS.URL != DefaultNATSURL {
		t.Errorf("Bus.NATS.URL = %q, want %q", cfg.Bus.NATS.URL, DefaultNATSURL)
	}
	if cfg.Bus.Redis.Addr != "" {
		t.Errorf("Bus.Redis.Addr = %q, want empty", cfg.Bus.Redis.Addr)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/scenes")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BUS_DRIVER", "nats")
	t.Setenv("NATS_URL", "nats://bus:4222")

	cfg := &ServerConfig{Log: LogConfig{Level: "warn"}}
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Database.URL != "postgres://u:p@db:5432/scenes" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Bus.Driver != BusNATS || cfg.Bus.NATS.URL != "nats://bus:4222" {
		t.Errorf("Bus = %+v", cfg.Bus)
	}
}

func TestApplyEnvInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := &ServerConfig{}
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}

func validConfig() ServerConfig {
	cfg := ServerConfig{Instance: InstanceConfig{ID: "test"}}
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ServerConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *ServerConfig) {},
			wantErr: "",
		},
		{
			name:    "missing instance id",
			mutate:  func(c *ServerConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "port out of range",
			mutate:  func(c *ServerConfig) { c.HTTP.Port = 70000 },
			wantErr: "http.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "unknown database driver",
			mutate:  func(c *ServerConfig) { c.Database.Driver = "mysql" },
			wantErr: `database.driver must be "postgres" or "memory", got "mysql"`,
		},
		{
			name: "missing postgres host",
			mutate: func(c *ServerConfig) {
				c.Database.Driver = DriverPostgres
			},
			wantErr: "database.host is required",
		},
		{
			name: "missing postgres password",
			mutate: func(c *ServerConfig) {
				c.Database = DatabaseConfig{Driver: DriverPostgres, Host: "localhost", Name: "db", User: "user", MaxConns: 5}
			},
			wantErr: "database.password is required",
		},
		{
			name: "postgres url skips discrete fields",
			mutate: func(c *ServerConfig) {
				c.Database = DatabaseConfig{Driver: DriverPostgres, URL: "postgres://localhost/db", MaxConns: 5}
			},
			wantErr: "",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *ServerConfig) {
				c.Database = DatabaseConfig{Driver: DriverPostgres, URL: "postgres://localhost/db", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *ServerConfig) { c.Assets.Driver = AssetsS3 },
			wantErr: "assets.s3.bucket is required",
		},
		{
			name: "ping interval not below pong timeout",
			mutate: func(c *ServerConfig) {
				c.Session.PingInterval = time.Minute
				c.Session.PongTimeout = time.Minute
			},
			wantErr: "session.ping_interval (1m0s) must be less than session.pong_timeout (1m0s)",
		},
		{
			name:    "unknown bus driver",
			mutate:  func(c *ServerConfig) { c.Bus.Driver = "kafka" },
			wantErr: `bus.driver must be one of none, redis, nats, got "kafka"`,
		},
		{
			name: "redis without addr",
			mutate: func(c *ServerConfig) {
				c.Bus.Driver = BusRedis
				c.Bus.Redis.Addr = ""
			},
			wantErr: "bus.redis.addr is required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *ServerConfig) { c.Log.Level = "trace" },
			wantErr: `log.level must be one of debug, info, warn, error, got "trace"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestLoadAndValidateWrapsError(t *testing.T) {
	path := writeTempFile(t, "log:\n  format: xml\n")

	_, err := LoadAndValidate(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.HasPrefix(err.Error(), "validate config: ") {
		t.Errorf("error = %q, want validate config prefix", err.Error())
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
