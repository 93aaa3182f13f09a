package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *ServerConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	switch c.Assets.Driver {
	case AssetsDisk:
		if c.Assets.Dir == "" {
			return errors.New("assets.dir is required")
		}
	case AssetsS3:
		if c.Assets.S3.Bucket == "" {
			return errors.New("assets.s3.bucket is required")
		}
		if c.Assets.S3.Region == "" {
			return errors.New("assets.s3.region is required")
		}
	default:
		return fmt.Errorf("assets.driver must be %q or %q, got %q", AssetsDisk, AssetsS3, c.Assets.Driver)
	}
	if c.Assets.MaxUploadBytes < 1 {
		return errors.New("assets.max_upload_bytes must be >= 1")
	}

	if c.Session.PingInterval >= c.Session.PongTimeout {
		return fmt.Errorf("session.ping_interval (%s) must be less than session.pong_timeout (%s)",
			c.Session.PingInterval, c.Session.PongTimeout)
	}
	if c.Session.OutboxSize < 1 {
		return errors.New("session.outbox_size must be >= 1")
	}
	if c.Session.WriteBatch < 1 {
		return errors.New("session.write_batch must be >= 1")
	}
	if c.Session.MaxMessageBytes < 1 {
		return errors.New("session.max_message_bytes must be >= 1")
	}

	switch c.Bus.Driver {
	case BusNone:
	case BusRedis:
		if c.Bus.Redis.Addr == "" {
			return errors.New("bus.redis.addr is required")
		}
	case BusNATS:
		if c.Bus.NATS.URL == "" {
			return errors.New("bus.nats.url is required")
		}
	default:
		return fmt.Errorf("bus.driver must be one of none, redis, nats, got %q", c.Bus.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (db *DatabaseConfig) validate(prefix string) error {
	switch db.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres:
	default:
		return fmt.Errorf("%s.driver must be %q or %q, got %q", prefix, DriverPostgres, DriverMemory, db.Driver)
	}

	if db.URL == "" {
		if db.Host == "" {
			return fmt.Errorf("%s.host is required", prefix)
		}
		if db.Name == "" {
			return fmt.Errorf("%s.name is required", prefix)
		}
		if db.User == "" {
			return fmt.Errorf("%s.user is required", prefix)
		}
		if db.Password == "" {
			return fmt.Errorf("%s.password is required", prefix)
		}
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
