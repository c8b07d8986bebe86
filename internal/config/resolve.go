package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvConfig         = "ARABAH_CONFIG"
	EnvBaseURL        = "ARABAH_BASE_URL"
	EnvLanguage       = "ARABAH_LANGUAGE"
	EnvSecretKey      = "ARABAH_SECRET_KEY"
	EnvPublishKey     = "ARABAH_PUBLISH_KEY"
	EnvCacheBackend   = "ARABAH_CACHE_BACKEND"
	EnvRedisURL       = "ARABAH_REDIS_URL"
	EnvCacheDir       = "ARABAH_CACHE_DIR"
	EnvKeyringBackend = "ARABAH_KEYRING_BACKEND"
)

// Overrides carries flag values. Nil fields were not given.
type Overrides struct {
	ConfigPath string
	EnvFile    string
	BaseURL    *string
	Language   *string
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Path returns the config file path: flag, then ARABAH_CONFIG, then default.
func (o Overrides) Path() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfig)); env != "" {
		return env
	}
	return DefaultPath()
}

// Resolve applies every layer and validates the result.
func Resolve(o Overrides) (*Config, error) {
	if err := LoadDotEnv(o.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := LoadOrDefault(o.Path())
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if o.BaseURL != nil {
		cfg.BaseURL = strings.TrimSpace(*o.BaseURL)
	}
	if o.Language != nil {
		cfg.Language = strings.TrimSpace(*o.Language)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.BaseURL, EnvBaseURL)
	set(&cfg.Language, EnvLanguage)
	set(&cfg.SecretKey, EnvSecretKey)
	set(&cfg.PublishKey, EnvPublishKey)
	set(&cfg.CacheBackend, EnvCacheBackend)
	set(&cfg.RedisURL, EnvRedisURL)
	set(&cfg.CacheDir, EnvCacheDir)
	set(&cfg.KeyringBackend, EnvKeyringBackend)
}
