// Package config handles the XDG configuration directory, file paths and
// layered settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "taskflow"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"

	// CacheFile is the SQLite task cache filename.
	CacheFile = "tasks.db"

	// SettingsFile is the optional TOML settings filename.
	SettingsFile = "config.toml"

	// EnvFile is the optional dotenv filename.
	EnvFile = ".env"
)

// Backend names.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Defaults.
const (
	DefaultAPIURL         = "http://localhost:5000"
	DefaultTimeoutSeconds = 5
)

// Environment variable names.
const (
	EnvAPIURL    = "TASKFLOW_API_URL"
	EnvBackend   = "TASKFLOW_BACKEND"
	EnvTimeout   = "TASKFLOW_TIMEOUT"
	EnvLogLevel  = "TASKFLOW_LOG_LEVEL"
	EnvLogFormat = "TASKFLOW_LOG_FORMAT"
	EnvCache     = "TASKFLOW_CACHE"
)

// Settings are the values read from config.toml, .env and the environment.
type Settings struct {
	APIURL         string `toml:"api_url"`
	Backend        string `toml:"backend"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	Cache          *bool  `toml:"cache"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings
}

// New creates a new Config with the default or specified config directory
// and loads settings in order: defaults, config.toml, .env, environment.
// If configDir is empty, uses XDG_CONFIG_HOME/taskflow or $HOME/.config/taskflow.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Settings: defaultSettings()}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	dotenv, err := cfg.readEnvFile()
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultSettings() Settings {
	cache := true
	return Settings{
		APIURL:         DefaultAPIURL,
		Backend:        BackendREST,
		TimeoutSeconds: DefaultTimeoutSeconds,
		LogLevel:       "warn",
		LogFormat:      "text",
		Cache:          &cache,
	}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadFile() error {
	path := c.SettingsPath()
	if _, err := toml.DecodeFile(path, &c.Settings); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// readEnvFile returns the pairs in .env without exporting them.
func (c *Config) readEnvFile() (map[string]string, error) {
	vals, err := godotenv.Read(c.EnvFilePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading %s: %w", c.EnvFilePath(), err)
	}
	return vals, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", EnvTimeout, v)
		}
		c.TimeoutSeconds = n
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := getenv(EnvCache); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvCache, v)
		}
		c.Cache = &b
	}
	return nil
}

func (c *Config) validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendREST, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return nil
}

// Timeout returns the per-request gateway timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheEnabled reports whether the offline task cache is used.
func (c *Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// CachePath returns the path to the task cache database.
func (c *Config) CachePath() string {
	return filepath.Join(c.Dir, CacheFile)
}

// SettingsPath returns the path to config.toml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// EnvFilePath returns the path to the dotenv file.
func (c *Config) EnvFilePath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}
