package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is shared by both binaries; stage1 reads only the fields it needs.
type Config struct {
	ServerURL      string        `env:"DICEGAME_SERVER_URL" envDefault:"http://localhost:5000"`
	PollInterval   time.Duration `env:"DICEGAME_POLL_INTERVAL" envDefault:"2s"`
	RequestTimeout time.Duration `env:"DICEGAME_REQUEST_TIMEOUT" envDefault:"8s"`
	MessageTTL     time.Duration `env:"DICEGAME_MESSAGE_TTL" envDefault:"5s"`
	Locale         string        `env:"DICEGAME_LOCALE" envDefault:"en-US"`
	LogLevel       string        `env:"DICEGAME_LOG_LEVEL" envDefault:"warn"`
	LogFormat      string        `env:"DICEGAME_LOG_FORMAT" envDefault:"console"`
	ViewAddr       string        `env:"DICEGAME_VIEW_ADDR"`
	Seed           int64         `env:"DICEGAME_SEED"`
}

// LoadDotenv loads .env files into the environment without overriding
// variables that are already set. With no files it loads ./.env.
func LoadDotenv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Parse reads the configuration from the environment alone.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server url is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MessageTTL <= 0 {
		return fmt.Errorf("message ttl must be positive, got %s", c.MessageTTL)
	}
	return nil
}
