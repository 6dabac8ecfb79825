package config

import (
	"path/filepath"
	"time"
)

const DefaultMaxItemsPerSection = 100

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.TemplatesBackend == "" {
		cfg.Storage.TemplatesBackend = BackendFile
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.DataDir, "cv.db")
	}
	if cfg.CV.MaxItemsPerSection == 0 {
		cfg.CV.MaxItemsPerSection = DefaultMaxItemsPerSection
	}
	if cfg.CV.Language == "" {
		cfg.CV.Language = "es"
	}
	if cfg.CV.ExportPrefix == "" {
		cfg.CV.ExportPrefix = "mi_cv"
	}
	if cfg.CV.MaxUploadBytes == 0 {
		cfg.CV.MaxUploadBytes = 10 << 20
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "cv_session"
	}
	if cfg.Session.Expiration == 0 {
		cfg.Session.Expiration = 24 * time.Hour
	}
	if cfg.PDF.Attempts == 0 {
		cfg.PDF.Attempts = 3
	}
	if cfg.PDF.Timeout == 0 {
		cfg.PDF.Timeout = 60 * time.Second
	}
	if cfg.PDF.Backoff == 0 {
		cfg.PDF.Backoff = time.Second
	}
}
