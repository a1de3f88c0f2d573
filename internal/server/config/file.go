package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gymsession/internal/flagx"
	"github.com/dmitrijs2005/gymsession/internal/timex"
	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	HTTPAddr      string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr      string         `json:"grpc_addr" yaml:"grpc_addr"`
	SecretKey     string         `json:"secret_key" yaml:"secret_key"`
	TokenValidity timex.Duration `json:"token_validity" yaml:"token_validity"`
	SeedName      string         `json:"seed_name" yaml:"seed_name"`
	SeedEmail     string         `json:"seed_email" yaml:"seed_email"`
	SeedPassword  string         `json:"seed_password" yaml:"seed_password"`
	LogLevel      string         `json:"log_level" yaml:"log_level"`
}

func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}
	return loadFile(cfg, path)
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for dst, v := range map[*string]string{
		&cfg.HTTPAddr:     fc.HTTPAddr,
		&cfg.GRPCAddr:     fc.GRPCAddr,
		&cfg.SecretKey:    fc.SecretKey,
		&cfg.SeedName:     fc.SeedName,
		&cfg.SeedEmail:    fc.SeedEmail,
		&cfg.SeedPassword: fc.SeedPassword,
		&cfg.LogLevel:     fc.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if fc.TokenValidity.Duration > 0 {
		cfg.TokenValidity = fc.TokenValidity.Duration
	}
	return nil
}
