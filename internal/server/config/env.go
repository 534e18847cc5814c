package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

const defaultEnvFile = ".env"

// EnvConfig mirrors Config for environment variables. Pointer fields stay nil
// when the variable is unset, so only variables actually present override.
type EnvConfig struct {
	EndpointAddrGRPC             *string        `env:"GOPHAUTH_GRPC_ADDR"`
	MetricsAddr                  *string        `env:"GOPHAUTH_METRICS_ADDR"`
	DatabaseDSN                  *string        `env:"GOPHAUTH_DATABASE_DSN"`
	SecretKey                    *string        `env:"GOPHAUTH_SECRET_KEY"`
	AccessTokenValidityDuration  *time.Duration `env:"GOPHAUTH_ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration *time.Duration `env:"GOPHAUTH_REFRESH_TOKEN_TTL"`
	HashWorkers                  *int           `env:"GOPHAUTH_HASH_WORKERS"`
	HashMemoryKB                 *uint32        `env:"GOPHAUTH_HASH_MEMORY_KB"`
	HashIterations               *uint32        `env:"GOPHAUTH_HASH_ITERATIONS"`
	HashThreads                  *uint8         `env:"GOPHAUTH_HASH_THREADS"`
	LogLevel                     *string        `env:"GOPHAUTH_LOG_LEVEL"`
	LogFormat                    *string        `env:"GOPHAUTH_LOG_FORMAT"`
}

// parseEnv loads the dotenv file (the one given by -env-file, or ./.env when
// present) into the process environment without overriding variables that
// are already set, then overlays GOPHAUTH_* variables onto config.
// An explicitly named dotenv file that cannot be read panics, as does a
// malformed variable.
func parseEnv(config *Config) {
	envFile := flagx.EnvFile()
	explicit := envFile != ""
	if !explicit {
		envFile = defaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	c := &EnvConfig{}
	if err := env.Parse(c); err != nil {
		panic(err)
	}

	apply(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	apply(&config.MetricsAddr, c.MetricsAddr)
	apply(&config.DatabaseDSN, c.DatabaseDSN)
	apply(&config.SecretKey, c.SecretKey)
	apply(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	apply(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	apply(&config.HashWorkers, c.HashWorkers)
	apply(&config.HashMemoryKB, c.HashMemoryKB)
	apply(&config.HashIterations, c.HashIterations)
	apply(&config.HashThreads, c.HashThreads)
	apply(&config.LogLevel, c.LogLevel)
	apply(&config.LogFormat, c.LogFormat)
}

func apply[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
