// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config resolves the runtime configuration of the service from the environment.
// The configuration is loaded once at startup and then passed explicitly to every component
// that needs it.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// ProductionEnvironment is the NODE_ENV value that silences the startup debug lines.
	ProductionEnvironment = "production"
	// GlobalPrefix is the path segment prepended to every application route.
	GlobalPrefix = "api"

	productionLogLevel  = "INFO"
	developmentLogLevel = "DEBUG"
)

var (
	ErrEnvVariablesNotValid = errors.New("environment variables not valid")
)

// Config holds every value read from the environment.
type Config struct {
	LogLevel              string `env:"LOG_LEVEL"`
	DisableStartupMessage bool   `env:"DISABLE_STARTUP_MESSAGE" envDefault:"true"`
	Environment           string `env:"NODE_ENV" envDefault:"development"`

	ServerHost      string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort      int           `env:"SERVER_PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	CORSAllowedOrigin string `env:"ENDPOINT_URL_CORS"`

	RateLimitMax      int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitRedisURL string        `env:"RATE_LIMIT_REDIS_URL"`

	DocsUser               string `env:"API_DOCS_USER"`
	DocsPassword           string `env:"API_DOCS_PASSWORD"`
	DocsEnforceCredentials bool   `env:"API_DOCS_ENFORCE_CREDENTIALS" envDefault:"false"`
}

// Load parses the environment and validates the resulting configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, err.Error())
	}

	// outside production the startup lines logged at DEBUG are shown unless LOG_LEVEL says otherwise
	if cfg.LogLevel == "" {
		cfg.LogLevel = developmentLogLevel
		if cfg.IsProduction() {
			cfg.LogLevel = productionLogLevel
		}
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == ProductionEnvironment
}

// ListenAddress is the host:port pair the server binds to.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

// BaseURL is the url used to reach the server, replacing the wildcard host with the loopback one.
func (c *Config) BaseURL() string {
	host := c.ServerHost
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.ServerPort))
}

// DocsCredentialsSet reports whether both documentation credentials are configured.
func (c *Config) DocsCredentialsSet() bool {
	return c.DocsUser != "" && c.DocsPassword != ""
}

func validate(cfg *Config) error {
	envError := make([]string, 0)

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		envError = append(envError, "SERVER_PORT is out of valid range (1-65535)")
	}
	if cfg.RateLimitMax < 1 {
		envError = append(envError, "RATE_LIMIT_MAX must be a positive number")
	}
	if cfg.RateLimitWindow <= 0 {
		envError = append(envError, "RATE_LIMIT_WINDOW must be a positive duration")
	}
	if cfg.ShutdownTimeout <= 0 {
		envError = append(envError, "SHUTDOWN_TIMEOUT must be a positive duration")
	}
	if cfg.CORSAllowedOrigin != "" {
		if u, err := url.Parse(cfg.CORSAllowedOrigin); err != nil || u.Scheme == "" || u.Host == "" {
			envError = append(envError, "ENDPOINT_URL_CORS is not a valid origin")
		}
	}
	if cfg.DocsEnforceCredentials && !cfg.DocsCredentialsSet() {
		envError = append(envError, "API_DOCS_USER and API_DOCS_PASSWORD are required when API_DOCS_ENFORCE_CREDENTIALS is set")
	}

	if len(envError) > 0 {
		return fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, strings.Join(envError, ", "))
	}
	return nil
}
