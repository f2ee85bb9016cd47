// Package config loads subview settings from ~/.subview/config.yaml, an
// optional project overlay, and SUBVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/subview/internal/batch"
	"github.com/rshade/subview/internal/pagination"
)

// Environment variables that override file settings.
const (
	EnvAPIURL       = "SUBVIEW_API_URL"
	EnvDirectoryURL = "SUBVIEW_DIRECTORY_URL"
	EnvAPIToken     = "SUBVIEW_API_TOKEN"
	EnvLogLevel     = "SUBVIEW_LOG_LEVEL"
	EnvPollInterval = "SUBVIEW_POLL_INTERVAL"
	EnvHome         = "SUBVIEW_HOME"
)

// Defaults.
const (
	DefaultAPIURL        = "http://localhost:8080/api/v1"
	DefaultTimeout       = 15 * time.Second
	DefaultPollInterval  = 10 * time.Second
	DefaultCacheCapacity = 128
	DefaultOutputFormat  = "table"
	DefaultVariant       = "unified"

	outputTypeFile = "file"
)

// Validation errors.
var (
	ErrInvalidBaseURL      = errors.New("api.base_url must be an absolute http(s) URL")
	ErrInvalidTimeout      = errors.New("api.timeout must be positive")
	ErrInvalidPollInterval = errors.New("session.poll_interval must be positive")
	ErrInvalidCapacity     = errors.New("cache.capacity must be positive")
	ErrInvalidVariant      = errors.New("session.variant must be profile or unified")
	ErrInvalidOutputFormat = errors.New("output.default_format must be table or json")
)

// Config is the full subview configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`

	configPath string
}

// APIConfig locates the subscription service and the user directory.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// DirectoryURL defaults to BaseURL when empty.
	DirectoryURL string        `yaml:"directory_url,omitempty"`
	Token        string        `yaml:"token,omitempty"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SessionConfig tunes detail-view sessions.
type SessionConfig struct {
	Variant            string        `yaml:"variant"`
	PageSize           int           `yaml:"page_size"`
	UsersPageSize      int           `yaml:"users_page_size"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	DirectoryBatchSize int           `yaml:"directory_batch_size"`
}

// CacheConfig sizes the shared billing-record store.
type CacheConfig struct {
	Capacity int `yaml:"capacity"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// OutputConfig controls how snapshots are printed.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Currency      string `yaml:"currency"`
}

// New returns a Config with defaults, the user config file merged in when it
// exists, and environment overrides applied.
func New() *Config {
	cfg := Default()
	if dir, err := GetConfigDir(); err == nil {
		cfg.configPath = filepath.Join(dir, "config.yaml")
		if _, statErr := os.Stat(cfg.configPath); statErr == nil {
			if loadErr := cfg.loadFile(cfg.configPath); loadErr != nil {
				Logger.Warn().
					Str("component", "config").
					Err(loadErr).
					Str("path", cfg.configPath).
					Msg("ignoring unreadable config file")
			}
		}
	}
	cfg.ApplyEnv()
	return cfg
}

// Default returns the built-in defaults without reading files or environment.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultAPIURL,
			Timeout: DefaultTimeout,
		},
		Session: SessionConfig{
			Variant:            DefaultVariant,
			PageSize:           pagination.DefaultPageSize,
			UsersPageSize:      pagination.DefaultUsersPageSize,
			PollInterval:       DefaultPollInterval,
			DirectoryBatchSize: batch.DefaultBatchSize,
		},
		Cache: CacheConfig{Capacity: DefaultCacheCapacity},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			DefaultFormat: DefaultOutputFormat,
			Currency:      "USD",
		},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.configPath = path
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies SUBVIEW_* overrides. Unparseable durations are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvDirectoryURL); v != "" {
		c.API.DirectoryURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Session.PollInterval = d
		} else if secs, convErr := strconv.Atoi(v); convErr == nil {
			c.Session.PollInterval = time.Duration(secs) * time.Second
		}
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	switch c.Session.Variant {
	case "profile", "unified":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidVariant, c.Session.Variant)
	}
	for _, size := range []int{c.Session.PageSize, c.Session.UsersPageSize} {
		st := pagination.NewState(size)
		if err = st.Validate(); err != nil {
			return fmt.Errorf("session: %w", err)
		}
	}
	if c.Session.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if _, err = batch.NewProcessor[string](c.Session.DirectoryBatchSize); err != nil {
		return fmt.Errorf("session.directory_batch_size: %w", err)
	}
	if c.Cache.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	switch c.Output.DefaultFormat {
	case "table", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.DefaultFormat)
	}
	return nil
}

// DirectoryBaseURL returns the directory service URL.
func (c *Config) DirectoryBaseURL() string {
	if c.API.DirectoryURL != "" {
		return c.API.DirectoryURL
	}
	return c.API.BaseURL
}

// Path returns the file the config was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.configPath
}

// Save writes the config as YAML to its path, creating the directory.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config has no file path")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the config as YAML to path. The token is never written.
func (c *Config) SaveTo(path string) error {
	out := *c
	out.API.Token = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
