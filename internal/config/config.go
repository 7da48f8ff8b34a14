// Package config loads client configuration from an optional YAML file,
// an optional .env file, and environment variables, in increasing order
// of precedence. Missing values fall back to defaults baked in here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings for the gateway and stores.
type Config struct {
	APIBaseURL string

	RequestTimeout time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	SessionFile string

	// DevServerPort is only used by cmd/devserver.
	DevServerPort string
}

type fileConfig struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`

	Reliability struct {
		RetryMaxAttempts int     `yaml:"retry_max_attempts"`
		RetryBaseDelay   string  `yaml:"retry_base_delay"`
		RetryMaxDelay    string  `yaml:"retry_max_delay"`
		RateLimitRPS     float64 `yaml:"rate_limit_rps"`
		RateLimitBurst   int     `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Session struct {
		File string `yaml:"file"`
	} `yaml:"session"`

	DevServer struct {
		Port string `yaml:"port"`
	} `yaml:"devserver"`
}

// Load reads configuration. The config file path comes from AGRITECH_CONFIG
// (default config/agritech.yaml relative to the working directory); a
// missing file is not an error.
func Load() (*Config, error) {
	// .env is a developer convenience; absence is the normal case.
	_ = godotenv.Load()

	var fc fileConfig
	path := os.Getenv("AGRITECH_CONFIG")
	if path == "" {
		path = filepath.Join("config", "agritech.yaml")
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	cfg.APIBaseURL = getenvDefault("AGRITECH_API_URL", fc.API.BaseURL)
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:5000"
	}

	cfg.RequestTimeout = parseDuration(getenvDefault("AGRITECH_API_TIMEOUT", fc.API.Timeout), 5*time.Second)

	cfg.RetryAttempts = fc.Reliability.RetryMaxAttempts
	if v := os.Getenv("AGRITECH_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetryAttempts = n
		}
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	cfg.RetryBaseDelay = parseDuration(fc.Reliability.RetryBaseDelay, 100*time.Millisecond)
	cfg.RetryMaxDelay = parseDuration(fc.Reliability.RetryMaxDelay, 2*time.Second)

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 10
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 20
	}

	cfg.SessionFile = getenvDefault("AGRITECH_SESSION_FILE", fc.Session.File)
	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SessionFile = filepath.Join(home, ".agritech", "session.json")
	}

	cfg.DevServerPort = getenvDefault("AGRITECH_DEVSERVER_PORT", fc.DevServer.Port)
	if cfg.DevServerPort == "" {
		cfg.DevServerPort = "5000"
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseDuration parses a duration string and returns defaultVal if the
// string is empty, unparseable, or non-positive.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
