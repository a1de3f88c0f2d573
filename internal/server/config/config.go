// Package config handles configuration for the dev backend: defaults,
// an optional JSON or YAML file, environment variables and flags.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the server.
//
// SecretKey signs the HS256 access tokens. When it is empty the server
// picks a random key per process, so tokens do not survive a restart.
// The Seed* fields describe the account created at startup so a
// fresh server can be signed into.
type Config struct {
	HTTPAddr      string        `env:"GYM_SERVER_HTTP_ADDR"`
	GRPCAddr      string        `env:"GYM_SERVER_GRPC_ADDR"`
	SecretKey     string        `env:"GYM_SERVER_SECRET_KEY"`
	TokenValidity time.Duration `env:"GYM_SERVER_TOKEN_VALIDITY"`
	SeedName      string        `env:"GYM_SERVER_SEED_NAME"`
	SeedEmail     string        `env:"GYM_SERVER_SEED_EMAIL"`
	SeedPassword  string        `env:"GYM_SERVER_SEED_PASSWORD"`
	LogLevel      string        `env:"GYM_SERVER_LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.TokenValidity = 24 * time.Hour
	c.SeedName = "Demo User"
	c.SeedEmail = "demo@gym.local"
	c.SeedPassword = "demo"
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	if c.HTTPAddr == "" && c.GRPCAddr == "" {
		return fmt.Errorf("at least one of the HTTP or gRPC addresses must be set")
	}
	if c.TokenValidity <= 0 {
		return fmt.Errorf("token validity must be positive")
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the config file,
// environment and flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
