// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A small set of well-known variables (PORT, DATABASE_URL, LOG_LEVEL, INSTANCE_ID)
// override file values after loading, so container deployments can run without a
// config file at all.
package config
