package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	API APIConfig
	App AppConfig
	Log LogConfig
}

type APIConfig struct {
	BaseURL string `env:"API_BASE_URL" env-default:"http://localhost:8000"`
	// Zero leaves the transport default in place
	Timeout time.Duration `env:"API_TIMEOUT" env-default:"0s"`
}

type AppConfig struct {
	// DataDir holds the database and log file. Empty means $XDG_DATA_HOME/taskdeck.
	DataDir   string `env:"DATA_DIR" env-default:""`
	StartPath string `env:"START_PATH" env-default:"/"`
}

type LogConfig struct {
	// File defaults to taskdeck.log inside the data directory
	File   string `env:"LOG_FILE" env-default:""`
	Level  string `env:"LOG_LEVEL" env-default:"INFO"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// Load reads an optional .env file, then the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := validateBaseURL(cfg.API.BaseURL); err != nil {
		return Config{}, fmt.Errorf("API_BASE_URL: %w", err)
	}
	if cfg.API.Timeout < 0 {
		return Config{}, fmt.Errorf("API_TIMEOUT must not be negative")
	}
	return cfg, nil
}

func validateBaseURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
