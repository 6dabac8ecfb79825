// Package config loads the server configuration from an optional YAML file,
// a .env file and the process environment, in that order of precedence
// (environment wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	CV      CVConfig      `yaml:"cv"`
	Session SessionConfig `yaml:"session"`
	PDF     PDFConfig     `yaml:"pdf"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where shared templates live. CV documents always live
// in the session; RedisURL, when set, backs the session store.
type StorageConfig struct {
	DataDir          string `yaml:"data_dir"`
	TemplatesBackend string `yaml:"templates_backend"`
	SQLitePath       string `yaml:"sqlite_path"`
	DatabaseURL      string `yaml:"database_url"`
	RedisURL         string `yaml:"redis_url"`
}

type CVConfig struct {
	MaxItemsPerSection int    `yaml:"max_items_per_section"`
	Language           string `yaml:"language"`
	ExportPrefix       string `yaml:"export_prefix"`
	HTMLVerbatim       bool   `yaml:"html_verbatim"`
	MaxUploadBytes     int    `yaml:"max_upload_bytes"`
	TemplatesDir       string `yaml:"templates_dir"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	Expiration time.Duration `yaml:"expiration"`
}

type PDFConfig struct {
	ChromePath string        `yaml:"chrome_path"`
	Attempts   int           `yaml:"attempts"`
	Timeout    time.Duration `yaml:"timeout"`
	Backoff    time.Duration `yaml:"backoff"`
}

// Load builds the configuration. path may be empty, in which case only the
// environment and defaults are used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Debug = getEnvAsBool("DEBUG", cfg.Debug)
	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)

	cfg.Storage.DataDir = getEnv("CVTOOL_DATA_DIR", cfg.Storage.DataDir)
	cfg.Storage.TemplatesBackend = getEnv("TEMPLATES_BACKEND", cfg.Storage.TemplatesBackend)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.DatabaseURL = getEnv("DATABASE_URL", cfg.Storage.DatabaseURL)
	cfg.Storage.RedisURL = getEnv("REDIS_URL", cfg.Storage.RedisURL)

	cfg.CV.MaxItemsPerSection = getEnvAsInt("MAX_ITEMS_PER_SECTION", cfg.CV.MaxItemsPerSection)
	cfg.CV.Language = getEnv("CV_LANGUAGE", cfg.CV.Language)
	cfg.CV.ExportPrefix = getEnv("EXPORT_PREFIX", cfg.CV.ExportPrefix)
	cfg.CV.HTMLVerbatim = getEnvAsBool("HTML_VERBATIM", cfg.CV.HTMLVerbatim)
	cfg.CV.MaxUploadBytes = getEnvAsInt("MAX_FILE_SIZE", cfg.CV.MaxUploadBytes)
	cfg.CV.TemplatesDir = getEnv("CV_TEMPLATES_DIR", cfg.CV.TemplatesDir)

	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", cfg.Session.CookieName)
	cfg.Session.Expiration = getEnvAsDuration("SESSION_EXPIRATION", cfg.Session.Expiration)

	cfg.PDF.ChromePath = getEnv("CHROME_PATH", cfg.PDF.ChromePath)
	cfg.PDF.Attempts = getEnvAsInt("PDF_ATTEMPTS", cfg.PDF.Attempts)
	cfg.PDF.Timeout = getEnvAsDuration("PDF_TIMEOUT", cfg.PDF.Timeout)
	cfg.PDF.Backoff = getEnvAsDuration("PDF_BACKOFF", cfg.PDF.Backoff)
}

// Validate rejects values that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Storage.TemplatesBackend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("templates backend %q requires DATABASE_URL", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown templates backend %q", c.Storage.TemplatesBackend)
	}
	if c.CV.MaxItemsPerSection < 0 {
		return fmt.Errorf("max_items_per_section must be positive, got %d", c.CV.MaxItemsPerSection)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}
