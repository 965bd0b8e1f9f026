package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LoadWithFile loads configuration from the given file, applies environment
// overrides and fills unset fields with defaults. A missing file is not an
// error; the defaults plus environment are used instead.
func LoadWithFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			if os.IsNotExist(err) {
				log.WithField("path", path).Info("config file not found, using defaults")
			} else {
				return nil, err
			}
		} else {
			log.WithField("path", path).Info("configuration loaded")
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("failed to parse config file (tried YAML and JSON)")
			}
		}
	}
	return nil
}

// applyEnv overlays ANTIPROXY_* environment variables on top of the file
// configuration. Environment always wins.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ANTIPROXY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	if v := os.Getenv("ANTIPROXY_ENDPOINTS"); v != "" {
		var eps []string
		for _, ep := range strings.Split(v, ",") {
			if ep = strings.TrimSpace(ep); ep != "" {
				eps = append(eps, ep)
			}
		}
		if len(eps) > 0 {
			cfg.Endpoints = eps
		}
	}
	if v := os.Getenv("ANTIPROXY_MIN_REQUEST_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MinRequestIntervalMS = n
		}
	}
	if v := os.Getenv("ANTIPROXY_REQUEST_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeoutSec = n
		}
	}
	if v := os.Getenv("ANTIPROXY_PROXY_URL"); v != "" {
		cfg.ProxyURL = v
	}
	if v := os.Getenv("ANTIPROXY_DEBUG"); v != "" {
		cfg.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ANTIPROXY_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}
