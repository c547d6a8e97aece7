// Package config loads the application configuration once at startup.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/naka-gawa/contrib-tracker/internal/gateway"
)

// Environment variables bound to configuration keys.
const (
	EnvToken          = "GITHUB_TOKEN"
	EnvUsers          = "GITHUB_STATS_USERS"
	EnvGraphQLURL     = "GITHUB_STATS_GRAPHQL_URL"
	EnvRequestTimeout = "GITHUB_STATS_REQUEST_TIMEOUT"
)

// DefaultRequestTimeout bounds a single user fetch unless configured otherwise.
const DefaultRequestTimeout = 30 * time.Second

// Config is the process-wide configuration. It is built once and passed to constructors.
type Config struct {
	// Token is an optional GitHub credential. Empty means anonymous requests.
	Token string `mapstructure:"token"`
	// Users is the comma-separated seed list.
	Users          string        `mapstructure:"users"`
	GraphQLURL     string        `mapstructure:"graphql_url" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// Load reads the optional YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("token", "")
	v.SetDefault("users", "")
	v.SetDefault("graphql_url", gateway.DefaultEndpoint)
	v.SetDefault("request_timeout", DefaultRequestTimeout.String())

	bindings := map[string]string{
		"token":           EnvToken,
		"users":           EnvUsers,
		"graphql_url":     EnvGraphQLURL,
		"request_timeout": EnvRequestTimeout,
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
