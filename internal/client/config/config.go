package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for authctl.
type Config struct {
	ServerAddr string
	TokenFile  string
	Timeout    time.Duration
}

// DefaultTokenFile is <user config dir>/gophauth/tokens.json, or
// ./.gophauth-tokens.json when the config dir cannot be determined.
func DefaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gophauth-tokens.json"
	}
	return filepath.Join(dir, "gophauth", "tokens.json")
}

func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:50051"
	c.TokenFile = DefaultTokenFile()
	c.Timeout = 10 * time.Second
}

// Load applies defaults, then the JSON file at jsonPath (skipped when
// empty), then environment variables.
func Load(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, jsonPath); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
