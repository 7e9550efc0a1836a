package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL   string `yaml:"base_url"`
		StreamURL string `yaml:"stream_url"`
		Timeout   string `yaml:"timeout"`
		Retries   int    `yaml:"retries"`
	} `yaml:"api"`
	Session struct {
		// Store is one of "disk", "redis" or "memory".
		Store   string `yaml:"store"`
		Path    string `yaml:"path"`
		Profile string `yaml:"profile"`
		TTL     string `yaml:"ttl"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
	UI struct {
		Language         string `yaml:"language"`
		FallbackLanguage string `yaml:"fallback_language"`
		SkeletonRows     int    `yaml:"skeleton_rows"`
		ToastTTL         string `yaml:"toast_ttl"`
	} `yaml:"ui"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{}
	cfg.API.BaseURL = "http://localhost:8080/api"
	cfg.API.Timeout = "15s"
	cfg.API.Retries = 2
	cfg.Session.Store = "disk"
	cfg.Session.Path = filepath.Join(stateDir(), "session.db")
	cfg.Session.Profile = "default"
	cfg.Session.TTL = "12h"
	cfg.Cache.TTL = "1m"
	cfg.Log.Level = "info"
	cfg.Log.File = filepath.Join(stateDir(), "expo-admin.log")
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3
	cfg.UI.Language = "en"
	cfg.UI.FallbackLanguage = "en"
	cfg.UI.SkeletonRows = 5
	cfg.UI.ToastTTL = "4s"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "expo-admin")
	}
	return ".expo-admin"
}
