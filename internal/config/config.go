// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

// Package config loads service configuration. Precedence, lowest to
// highest: built-in defaults, YAML config file, command-line flags.
// DATABASE_URL and IRIS_SECRET_KEY fall back to the environment so secrets
// can stay out of files and argv.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Configuration keys, shared between flags and the YAML file.
const (
	KeyListenAddr  = "listen-addr"
	KeyMetricsAddr = "metrics-addr"
	KeyDatabaseURL = "database-url"
	KeySecretKey   = "secret-key"
	KeyAlgorithm   = "algorithm"
	KeyTokenTTL    = "token-ttl"
	KeyLogFormat   = "log-format"
)

// Config holds the full service configuration. The token parameters are
// passed explicitly into the token issuer at construction; nothing here is
// consulted as ambient global state after startup.
type Config struct {
	ListenAddr  string
	MetricsAddr string
	DatabaseURL string
	SecretKey   string
	Algorithm   string
	TokenTTL    time.Duration
	LogFormat   string
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		ListenAddr:  ":8000",
		MetricsAddr: "127.0.0.1:9100",
		Algorithm:   "HS256",
		TokenTTL:    60 * time.Minute,
		LogFormat:   "json",
	}
}

// Load builds a Config from the given flag set and optional YAML file.
// Either argument may be zero-valued; defaults fill the gaps.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("file", configFile).
				Wrap(err)
		}
	}

	if flags != nil {
		// posflag keeps file-provided values unless the flag was
		// explicitly changed.
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("source", "flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if k.Exists(KeyListenAddr) {
		cfg.ListenAddr = k.String(KeyListenAddr)
	}
	if k.Exists(KeyMetricsAddr) {
		cfg.MetricsAddr = k.String(KeyMetricsAddr)
	}
	if k.Exists(KeyDatabaseURL) {
		cfg.DatabaseURL = k.String(KeyDatabaseURL)
	}
	if k.Exists(KeySecretKey) {
		cfg.SecretKey = k.String(KeySecretKey)
	}
	if k.Exists(KeyAlgorithm) {
		cfg.Algorithm = k.String(KeyAlgorithm)
	}
	if k.Exists(KeyTokenTTL) {
		cfg.TokenTTL = k.Duration(KeyTokenTTL)
	}
	if k.Exists(KeyLogFormat) {
		cfg.LogFormat = k.String(KeyLogFormat)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = os.Getenv("IRIS_SECRET_KEY")
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen address is required")
	}
	if c.SecretKey == "" {
		return oops.Code("CONFIG_INVALID").Errorf("secret key is required (flag, config file, or IRIS_SECRET_KEY)")
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return oops.Code("CONFIG_INVALID").
			With("algorithm", c.Algorithm).
			Errorf("algorithm must be HS256, HS384, or HS512")
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token TTL must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log format must be 'json' or 'text'")
	}
	return nil
}
