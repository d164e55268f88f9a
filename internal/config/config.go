package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

const DefaultEntryURL = "https://courselab.lnu.se/quiz/question/1"

type Config struct {
	Quiz struct {
		EntryURL     string `yaml:"entry_url" env:"QUIZ_ENTRY_URL"`
		DefaultLimit int    `yaml:"default_limit" env:"QUIZ_DEFAULT_LIMIT"`
		HTTPTimeout  string `yaml:"http_timeout" env:"QUIZ_HTTP_TIMEOUT"`
	} `yaml:"quiz"`
	Storage struct {
		Driver string `yaml:"driver" env:"STORAGE_DRIVER"`
		Path   string `yaml:"path" env:"STORAGE_PATH"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		Prefix   string `yaml:"prefix" env:"REDIS_PREFIX"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
		File  string `yaml:"file" env:"LOG_FILE"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	cfg := Config{}
	cfg.Quiz.EntryURL = DefaultEntryURL
	cfg.Quiz.DefaultLimit = 20
	cfg.Quiz.HTTPTimeout = "10s"
	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.Path = defaultStorePath()
	cfg.Redis.Prefix = "quiz-client"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of the defaults, then applies
// environment overrides. A missing file is tolerated unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Quiz.DefaultLimit <= 0 {
		cfg.Quiz.DefaultLimit = 20
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "quiz-client.db"
	}
	return filepath.Join(dir, "quiz-client", "store.db")
}
