// Package config loads the client configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	ServerURL    string        `env:"SERVER_URL"`
	RedisURL     string        `env:"REDIS_URL"`
	CallbackAddr string        `env:"CALLBACK_ADDR" default:"127.0.0.1:8750"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" default:"10s"`
	LogLevel     string        `env:"LOG_LEVEL" default:"info"`
	LogFormat    string        `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"SERVER_URL": cfg.ServerURL,
		"REDIS_URL":  cfg.RedisURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if _, err := url.ParseRequestURI(cfg.ServerURL); err != nil {
		return fmt.Errorf("SERVER_URL must be a valid URL: %w", err)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	return nil
}
