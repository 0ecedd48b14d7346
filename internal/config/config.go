// Package config loads CLI configuration from an optional file and the environment.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the config file.
const (
	EnvScript        = "PARLEY_SCRIPT"
	EnvStore         = "PARLEY_STORE"
	EnvStorePath     = "PARLEY_STORE_PATH"
	EnvRedisAddr     = "PARLEY_REDIS_ADDR"
	EnvEncryptionKey = "PARLEY_ENCRYPTION_KEY"
	EnvLogLevel      = "PARLEY_LOG_LEVEL"
	EnvMaxInputSize  = "PARLEY_MAX_INPUT_SIZE"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// DefaultFileNames are probed in the working directory when no file is given.
var DefaultFileNames = []string{"parley.yaml", "parley.yml", "parley.json", "parley.toml"}

// Config is the resolved CLI configuration.
type Config struct {
	// Script is a script file or Loam directory. Empty selects the built-in script.
	Script       string      `mapstructure:"script"`
	LogLevel     string      `mapstructure:"log_level"`
	MaxInputSize int         `mapstructure:"max_input_size"`
	Store        StoreConfig `mapstructure:"store"`
	HTTP         HTTPConfig  `mapstructure:"http"`

	// Source is the file the configuration was read from, if any.
	Source string `mapstructure:"-"`
}

// StoreConfig selects and tunes the session store.
type StoreConfig struct {
	Kind string `mapstructure:"kind"`
	// Path is the directory of the file store or the database of the sqlite store.
	Path      string        `mapstructure:"path"`
	RedisAddr string        `mapstructure:"redis_addr"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, sessions are sealed at rest.
	EncryptionKey string `mapstructure:"encryption_key"`
	// RedactPII masks e-mail addresses and phone numbers in the memory queue.
	RedactPII bool `mapstructure:"redact_pii"`
}

// HTTPConfig configures `parley serve`.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Kind:      StoreMemory,
			RedisAddr: "localhost:6379",
			LockTTL:   30 * time.Second,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// Load reads path (or the first default file found when path is empty),
// applies environment overrides and validates the result.
// A missing default file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = discover()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.decode(data, filepath.Ext(path)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Source = path
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func discover() string {
	for _, name := range DefaultFileNames {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

func (c *Config) decode(data []byte, ext string) error {
	raw := map[string]any{}

	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ApplyEnv overlays the PARLEY_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvScript); ok {
		c.Script = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Kind = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv(EnvEncryptionKey); v != "" {
		c.Store.EncryptionKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvMaxInputSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxInputSize, err)
		}
		c.MaxInputSize = n
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q (use memory, file, redis or sqlite)", c.Store.Kind))
	}
	if c.MaxInputSize < 0 {
		errs = append(errs, fmt.Errorf("max_input_size must not be negative"))
	}
	if c.Store.TTL < 0 || c.Store.LockTTL < 0 {
		errs = append(errs, fmt.Errorf("store ttl values must not be negative"))
	}
	if c.Store.EncryptionKey != "" {
		if _, err := c.Store.Key(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Key decodes the encryption key. It is nil when encryption is off.
func (s StoreConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key must be base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
