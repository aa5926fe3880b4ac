package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ratemyrecipe/internal/api"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Favorite backends.
const (
	FavoritesRemote = "remote"
	FavoritesLocal  = "local"
)

// Config holds ratemyrecipe configuration.
type Config struct {
	// Backend
	APIURL  string `yaml:"api_url"`
	Timeout string `yaml:"timeout"`
	Offline bool   `yaml:"offline"` // serve the cached snapshot, never call the backend

	// Storage
	DBPath    string `yaml:"db_path"`
	Favorites string `yaml:"favorites"` // remote | local
	LocalUser string `yaml:"local_user"`

	// Logging and metrics
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	MetricsAddr string `yaml:"metrics_addr"`

	// Dir is the directory holding config, credentials, prefs and the database.
	Dir string `yaml:"-"`
}

// DefaultDir returns ~/.ratemyrecipe.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ratemyrecipe"), nil
}

// DefaultConfig returns the built-in defaults rooted at dir.
func DefaultConfig(dir string) *Config {
	user := os.Getenv("USER")
	if user == "" {
		user = "local"
	}
	return &Config{
		APIURL:    api.DefaultBaseURL,
		Timeout:   "5s",
		DBPath:    filepath.Join(dir, "ratemyrecipe.db"),
		Favorites: FavoritesRemote,
		LocalUser: user,
		LogLevel:  "info",
		LogFile:   filepath.Join(dir, "ratemyrecipe.log"),
		Dir:       dir,
	}
}

// LoadDotEnv loads .env files into the environment. Variables that are
// already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", ".env.local"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists) and RATEMYRECIPE_* environment variables, in that order. dir is
// the config directory; an empty path means <dir>/config.yaml.
func Load(dir, path string) (*Config, error) {
	cfg := DefaultConfig(dir)
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("RATEMYRECIPE_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("RATEMYRECIPE_TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv("RATEMYRECIPE_OFFLINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RATEMYRECIPE_OFFLINE: %w", err)
		}
		c.Offline = b
	}
	if v := os.Getenv("RATEMYRECIPE_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("RATEMYRECIPE_FAVORITES"); v != "" {
		c.Favorites = v
	}
	if v := os.Getenv("RATEMYRECIPE_LOCAL_USER"); v != "" {
		c.LocalUser = v
	}
	if v := os.Getenv("RATEMYRECIPE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RATEMYRECIPE_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	return nil
}

// RequestTimeout returns the backend timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// LocalFavorites reports whether favorites are kept in the local database.
func (c *Config) LocalFavorites() bool {
	return c.Favorites == FavoritesLocal
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: want http(s)://host[:port]/path", c.APIURL)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	switch c.Favorites {
	case FavoritesRemote:
	case FavoritesLocal:
		if strings.TrimSpace(c.LocalUser) == "" {
			return errors.New("local favorites need a local_user")
		}
	default:
		return fmt.Errorf("invalid favorites backend %q (valid: %s, %s)", c.Favorites, FavoritesRemote, FavoritesLocal)
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	return nil
}
