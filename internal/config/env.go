package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides are the process environment variables honored on top of the
// YAML file. Unset variables leave the file value alone.
type envOverrides struct {
	Port        int    `env:"PORT"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL"`
	InstanceID  string `env:"INSTANCE_ID"`
	BusDriver   string `env:"BUS_DRIVER"`
	RedisAddr   string `env:"REDIS_ADDR"`
	NATSURL     string `env:"NATS_URL"`
}

// ApplyEnv overlays well-known environment variables onto c.
func (c *ServerConfig) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Port != 0 {
		c.HTTP.Port = o.Port
	}
	if o.DatabaseURL != "" {
		c.Database.URL = o.DatabaseURL
		if c.Database.Driver == "" {
			c.Database.Driver = DriverPostgres
		}
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.InstanceID != "" {
		c.Instance.ID = o.InstanceID
	}
	if o.BusDriver != "" {
		c.Bus.Driver = o.BusDriver
	}
	if o.RedisAddr != "" {
		c.Bus.Redis.Addr = o.RedisAddr
	}
	if o.NATSURL != "" {
		c.Bus.NATS.URL = o.NATSURL
	}
	return nil
}
