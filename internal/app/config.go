package app

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

const defaultTokenTTLMinutes = 120

type Config struct {
	Server struct {
		Port           string   `toml:"port"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"server"`

	Auth struct {
		JWTSecret       string `toml:"jwt_secret"`
		TokenTTLMinutes int    `toml:"token_ttl_minutes"`

		// Optional redis-backed login throttle; disabled when URL is empty.
		RedisURL              string `toml:"redis_url"`
		MaxLoginAttempts      int    `toml:"max_login_attempts"`
		ThrottleWindowMinutes int    `toml:"throttle_window_minutes"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Export struct {
		Schedule string `toml:"schedule"`
		Dir      string `toml:"dir"`
	} `toml:"export"`
}

func (c *Config) TokenTTL() time.Duration {
	minutes := c.Auth.TokenTTLMinutes
	if minutes <= 0 {
		minutes = defaultTokenTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("server port is not specified in config, use a value like :3003")
	}
	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt_secret is not specified in config")
	}

	logger.Debug.Printf("Loaded config with token TTL %s", config.TokenTTL())

	return &config, nil
}
