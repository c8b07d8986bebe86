// Package config resolves CLI settings from, in increasing precedence:
// built-in defaults, the TOML config file, a .env file, ARABAH_* environment
// variables and command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sahilm/fuzzy"

	"github.com/arabah/arabah-cli/internal/validation"
)

const (
	appName        = "arabah"
	configFileName = "config.toml"

	DefaultBaseURL = "https://api.arabah.app/api/v1/"

	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the on-disk and resolved configuration.
type Config struct {
	BaseURL        string `toml:"base_url" json:"base_url"`
	Language       string `toml:"language" json:"language"`
	SecretKey      string `toml:"secret_key" json:"secret_key,omitempty"`
	PublishKey     string `toml:"publish_key" json:"publish_key,omitempty"`
	CacheBackend   string `toml:"cache_backend" json:"cache_backend"`
	RedisURL       string `toml:"redis_url" json:"redis_url,omitempty"`
	CacheDir       string `toml:"cache_dir" json:"cache_dir,omitempty"`
	KeyringBackend string `toml:"keyring_backend" json:"keyring_backend"`
}

// Keys lists every setting name accepted in the config file and by
// 'arabah config set'.
var Keys = []string{
	"base_url", "cache_backend", "cache_dir", "keyring_backend",
	"language", "publish_key", "redis_url", "secret_key",
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Language:       languageFromLocale(os.Getenv("LANG")),
		CacheBackend:   CacheFile,
		KeyringBackend: "auto",
	}
}

// DefaultPath returns "$XDG_CONFIG_HOME/arabah/config.toml" or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName, configFileName)
}

// Load reads and validates a config file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := checkUnknownKeys(md); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault returns the defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Save writes cfg to path, creating parent directories. The file holds
// API keys, so it is private to the user.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	buf.WriteString("# arabah CLI configuration\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Rename(tmp, path)
}

// Set updates one setting by its file key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "base_url":
		c.BaseURL = value
	case "language":
		c.Language = value
	case "secret_key":
		c.SecretKey = value
	case "publish_key":
		c.PublishKey = value
	case "cache_backend":
		c.CacheBackend = value
	case "redis_url":
		c.RedisURL = value
	case "cache_dir":
		c.CacheDir = value
	case "keyring_backend":
		c.KeyringBackend = value
	default:
		return unknownKeyError(key)
	}
	return c.Validate()
}

// Validate checks the settings that can be checked without I/O beyond DNS.
func (c *Config) Validate() error {
	var errs []error
	if err := validation.ValidateBaseURL(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	}
	switch c.Language {
	case "ar", "en":
	default:
		errs = append(errs, fmt.Errorf("language: must be \"ar\" or \"en\", got %q", c.Language))
	}
	switch c.CacheBackend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("redis_url: required when cache_backend is \"redis\""))
		}
	default:
		errs = append(errs, fmt.Errorf("cache_backend: must be file, redis or none, got %q", c.CacheBackend))
	}
	return errors.Join(errs...)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	r := *c
	if r.SecretKey != "" {
		r.SecretKey = "***"
	}
	if r.PublishKey != "" {
		r.PublishKey = "***"
	}
	return r
}

func checkUnknownKeys(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	var errs []error
	for _, key := range undecoded {
		errs = append(errs, unknownKeyError(key.String()))
	}
	return errors.Join(errs...)
}

func unknownKeyError(key string) error {
	matches := fuzzy.Find(key, Keys)
	if len(matches) > 0 {
		return fmt.Errorf("unknown config key %q, did you mean %q?", key, matches[0].Str)
	}
	return fmt.Errorf("unknown config key %q", key)
}

// languageFromLocale maps a POSIX locale like "ar_SA.UTF-8" to ar or en.
func languageFromLocale(locale string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "ar") {
		return "ar"
	}
	return "en"
}
