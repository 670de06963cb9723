package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Remote  RemoteConfig
	Storage StorageConfig
	Sync    SyncConfig
	Log     LogConfig
	Metrics MetricsConfig
}

type RemoteConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

type StorageConfig struct {
	DataDir string
	Secret  string
}

type SyncConfig struct {
	PushDebounce time.Duration
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Namespace string
}

// fileConfig mirrors the YAML layout. Pointer fields distinguish "absent"
// from an explicit zero.
type fileConfig struct {
	Remote struct {
		BaseURL        string        `yaml:"baseURL"`
		Timeout        time.Duration `yaml:"timeout"`
		RateLimitRPS   *float64      `yaml:"rateLimitRPS"`
		RateLimitBurst *int          `yaml:"rateLimitBurst"`
	} `yaml:"remote"`
	Storage struct {
		DataDir string `yaml:"dataDir"`
		Secret  string `yaml:"secret"`
	} `yaml:"storage"`
	Sync struct {
		PushDebounce *time.Duration `yaml:"pushDebounce"`
	} `yaml:"sync"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Metrics struct {
		Namespace string `yaml:"namespace"`
	} `yaml:"metrics"`
}

func Default() Config {
	return Config{
		Remote: RemoteConfig{
			BaseURL:        "http://127.0.0.1:8081",
			Timeout:        10 * time.Second,
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Sync: SyncConfig{
			PushDebounce: 300 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Namespace: "fakestore",
		},
	}
}

// LoadFromPath reads configPath, or the first readable default candidate when
// configPath is empty. A missing candidate is not an error; an explicit path
// that cannot be read or parsed is.
func LoadFromPath(configPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		parsed, err := readFile(configPath)
		if err != nil {
			return Config{}, err
		}
		Merge(&cfg, parsed)
		ApplyEnvOverrides(&cfg)
		return cfg, cfg.Validate()
	}

	for _, path := range []string{"configs/storectl.yaml", "storectl.yaml"} {
		parsed, err := readFile(path)
		if err != nil {
			continue
		}
		Merge(&cfg, parsed)
		break
	}
	ApplyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

func readFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}

func Merge(dst *Config, src fileConfig) {
	if src.Remote.BaseURL != "" {
		dst.Remote.BaseURL = src.Remote.BaseURL
	}
	if src.Remote.Timeout != 0 {
		dst.Remote.Timeout = src.Remote.Timeout
	}
	if src.Remote.RateLimitRPS != nil {
		dst.Remote.RateLimitRPS = *src.Remote.RateLimitRPS
	}
	if src.Remote.RateLimitBurst != nil {
		dst.Remote.RateLimitBurst = *src.Remote.RateLimitBurst
	}
	if src.Storage.DataDir != "" {
		dst.Storage.DataDir = src.Storage.DataDir
	}
	if src.Storage.Secret != "" {
		dst.Storage.Secret = src.Storage.Secret
	}
	if src.Sync.PushDebounce != nil {
		dst.Sync.PushDebounce = *src.Sync.PushDebounce
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Metrics.Namespace != "" {
		dst.Metrics.Namespace = src.Metrics.Namespace
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("FAKESTORE_BASE_URL")); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FAKESTORE_DATA_DIR")); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("FAKESTORE_SECRET")); v != "" {
		cfg.Storage.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv("FAKESTORE_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("FAKESTORE_RATE_LIMIT_RPS")); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Remote.RateLimitRPS = rps
		}
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil {
		return fmt.Errorf("remote.baseURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("remote.baseURL must use http or https")
	}
	if u.Host == "" {
		return errors.New("remote.baseURL must include a host")
	}
	if c.Remote.Timeout < 0 {
		return errors.New("remote.timeout must not be negative")
	}
	if c.Sync.PushDebounce < 0 {
		return errors.New("sync.pushDebounce must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// PersistenceEnabled reports whether session material can be written to disk.
func (c Config) PersistenceEnabled() bool {
	return strings.TrimSpace(c.Storage.DataDir) != "" && strings.TrimSpace(c.Storage.Secret) != ""
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not supported", raw)
	}
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ""
	}
	return filepath.Join(base, "fakestore")
}
