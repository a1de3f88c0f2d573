package config

import (
	"fmt"
	"time"
)

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings for the terminal client.
type Config struct {
	ServerAddr          string        `env:"GYM_SERVER_ADDR"`
	Transport           string        `env:"GYM_TRANSPORT"`
	DatabasePath        string        `env:"GYM_DATABASE_PATH"`
	RequestTimeout      time.Duration `env:"GYM_REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"GYM_ONLINE_CHECK_INTERVAL"`
	LogLevel            string        `env:"GYM_LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:8080"
	c.Transport = TransportHTTP
	c.DatabasePath = "gymsession.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
}

// Validate checks the values that cannot be defaulted silently.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportGRPC:
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportHTTP, TransportGRPC)
	}
	if c.ServerAddr == "" {
		return fmt.Errorf("server address is empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
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
