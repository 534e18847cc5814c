package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type EnvConfig struct {
	ServerAddr *string        `env:"GOPHAUTH_ADDR"`
	TokenFile  *string        `env:"GOPHAUTH_TOKEN_FILE"`
	Timeout    *time.Duration `env:"GOPHAUTH_TIMEOUT"`
}

func parseEnv(cfg *Config) error {
	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if ec.ServerAddr != nil {
		cfg.ServerAddr = *ec.ServerAddr
	}
	if ec.TokenFile != nil {
		cfg.TokenFile = *ec.TokenFile
	}
	if ec.Timeout != nil {
		cfg.Timeout = *ec.Timeout
	}
	return nil
}
