// Package config loads server configuration from the environment.
package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            int `env:"PORT" envDefault:"8080"`
		ReadTimeout     int `env:"READ_TIMEOUT" envDefault:"15"`
		WriteTimeout    int `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int `env:"SHUTDOWN_TIMEOUT" envDefault:"30"`
	} `envPrefix:"SERVER_"`
	Database struct {
		// SQLite path; ":memory:" for an in-memory database.
		Path string `env:"PATH" envDefault:"timecard.db"`
	} `envPrefix:"DATABASE_"`
	CORS struct {
		AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:8080"`
	} `envPrefix:"CORS_"`
	Rates struct {
		BaseURL      string  `env:"BASE_URL" envDefault:"https://api.exchangerate-api.com/v4/latest/USD"`
		CacheTTL     int     `env:"CACHE_TTL" envDefault:"3600"` // seconds
		FallbackPHP  float64 `env:"FALLBACK_PHP" envDefault:"56.5"`
		FetchTimeout int     `env:"FETCH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RATES_"`
	Log struct {
		Level string `env:"LEVEL" envDefault:"info"`
	} `envPrefix:"LOG_"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// Surface only the first error to keep startup logs readable.
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}
