package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pollfish/pollfish-bridge/internal/credentials"
)

const (
	appName    = "pollfish-sim"
	configFile = "config.json"
)

type Config struct {
	Addr         string `json:"addr"`
	Platform     string `json:"platform"`
	ReleaseMode  bool   `json:"release_mode"`
	QueryTimeout string `json:"query_timeout"`
	HistorySize  int    `json:"history_size"`
	OpenBrowser  bool   `json:"open_browser"`
	LogLevel     string `json:"log_level"`
	LogFormat    string `json:"log_format"`

	AndroidAPIKey string `json:"-"`
	IOSAPIKey     string `json:"-"`
	Signature     string `json:"-"`
}

func Default() Config {
	return Config{
		Addr:         "127.0.0.1:8787",
		Platform:     "android",
		QueryTimeout: "5s",
		HistorySize:  100,
		OpenBrowser:  false,
		LogLevel:     "debug",
		LogFormat:    "text",
	}
}

// Load reads the config from the user config directory.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(configDir, appName))
}

// LoadFrom reads dir/config.json, writing one with defaults when it does not
// exist, then applies environment overrides. API keys live in the keyring.
func LoadFrom(appDir string) (*Config, error) {
	path := filepath.Join(appDir, configFile)
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		if err := os.MkdirAll(appDir, 0700); err != nil {
			return nil, err
		}
		out, _ := json.MarshalIndent(cfg, "", "  ")
		_ = os.WriteFile(path, out, 0600)
		slog.Info("generated new config", "path", path)
	}

	if key, err := credentials.LoadAPIKey("android"); err == nil {
		cfg.AndroidAPIKey = key
	}
	if key, err := credentials.LoadAPIKey("ios"); err == nil {
		cfg.IOSAPIKey = key
	}
	if sig, err := credentials.LoadSignature(); err == nil {
		cfg.Signature = sig
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.QueryTimeoutDuration(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// QueryTimeoutDuration parses QueryTimeout.
func (c *Config) QueryTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.QueryTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid query_timeout %q: %w", c.QueryTimeout, err)
	}
	return d, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("POLLFISH_SIM_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("POLLFISH_PLATFORM"); v != "" {
		cfg.Platform = v
	}
	if v := os.Getenv("POLLFISH_QUERY_TIMEOUT"); v != "" {
		cfg.QueryTimeout = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("POLLFISH_RELEASE_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("POLLFISH_RELEASE_MODE: %w", err)
		}
		cfg.ReleaseMode = b
	}
	if v := os.Getenv("POLLFISH_OPEN_BROWSER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("POLLFISH_OPEN_BROWSER: %w", err)
		}
		cfg.OpenBrowser = b
	}

	if v := os.Getenv("POLLFISH_ANDROID_API_KEY"); v != "" {
		cfg.AndroidAPIKey = v
		if err := credentials.StoreAPIKey("android", v); err != nil {
			return err
		}
	}
	if v := os.Getenv("POLLFISH_IOS_API_KEY"); v != "" {
		cfg.IOSAPIKey = v
		if err := credentials.StoreAPIKey("ios", v); err != nil {
			return err
		}
	}
	if v := os.Getenv("POLLFISH_SIGNATURE"); v != "" {
		cfg.Signature = v
		if err := credentials.StoreSignature(v); err != nil {
			return err
		}
	}
	return nil
}
