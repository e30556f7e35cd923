// Package config loads the connection and logging settings of redis-attrs
// tools from a YAML or JSONC file.
//
// The file is optional. Values absent from it keep their defaults, and the
// REDIS_ATTRS_URL environment variable, when set, replaces the whole
// connection section.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-redis-attrs/pkg/activity"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvURL names the environment variable holding a redis:// URL.
const EnvURL = "REDIS_ATTRS_URL"

// Config is the tool configuration.
type Config struct {
	// Redis describes the connection.
	Redis RedisConfig `yaml:"redis" json:"redis"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log" json:"log"`

	// Filters selects the engine compiling filter expressions.
	Filters FilterConfig `yaml:"filters" json:"filters"`

	// Activity, when enabled, logs one audit line per attribute change.
	Activity activity.Config `yaml:"activity" json:"activity"`

	// Schema is the path of the model schema document, relative paths
	// resolved against the config file directory.
	Schema string `yaml:"schema" json:"schema"`
}

// RedisConfig describes a Redis connection. URL wins over the discrete
// fields when set.
type RedisConfig struct {
	URL         string        `yaml:"url" json:"url"`
	Addr        string        `yaml:"addr" json:"addr"`
	Username    string        `yaml:"username" json:"username"`
	Password    string        `yaml:"password" json:"password"`
	DB          int           `yaml:"db" json:"db"`
	DialTimeout time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Format is text or json.
	Format string `yaml:"format" json:"format"`
}

// FilterConfig selects the filter expression engine.
type FilterConfig struct {
	// Engine is expr (default), cel or js.
	Engine string `yaml:"engine" json:"engine"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DialTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Filters: FilterConfig{
			Engine: "expr",
		},
	}
}

// Load reads path, when not empty, over the defaults and applies the
// environment override.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data over the defaults. Files ending in .json or .jsonc are
// stripped of comments and trailing commas first.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data, name); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := c.decode(data, path); err != nil {
		return err
	}
	if c.Schema != "" && !filepath.IsAbs(c.Schema) {
		c.Schema = filepath.Join(filepath.Dir(path), c.Schema)
	}
	return nil
}

func (c *Config) decode(data []byte, name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	// JSON is valid YAML, so both formats share the yaml decoder and its
	// duration parsing.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", name, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if url, ok := lookup(EnvURL); ok && strings.TrimSpace(url) != "" {
		c.Redis = RedisConfig{URL: strings.TrimSpace(url), DialTimeout: c.Redis.DialTimeout}
	}
}

// Validate checks the values a client or logger cannot be built without.
func (c *Config) Validate() error {
	if c.Redis.URL == "" && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis url or addr is required")
	}
	if c.Redis.URL != "" {
		if _, err := redis.ParseURL(c.Redis.URL); err != nil {
			return fmt.Errorf("config: redis url: %w", err)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Filters.Engine {
	case "", "expr", "cel", "js":
	default:
		return fmt.Errorf("config: unknown filter engine %q", c.Filters.Engine)
	}
	return nil
}

// RedisOptions returns the go-redis client options.
func (c *Config) RedisOptions() (*redis.Options, error) {
	if c.Redis.URL != "" {
		opts, err := redis.ParseURL(c.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("config: redis url: %w", err)
		}
		if c.Redis.DialTimeout > 0 {
			opts.DialTimeout = c.Redis.DialTimeout
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:        c.Redis.Addr,
		Username:    c.Redis.Username,
		Password:    c.Redis.Password,
		DB:          c.Redis.DB,
		DialTimeout: c.Redis.DialTimeout,
	}, nil
}

// NewClient builds a client from the connection settings. The caller owns
// and closes it.
func (c *Config) NewClient() (*redis.Client, error) {
	opts, err := c.RedisOptions()
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", l.Level, err)
	}
	return level, nil
}

// NewLogger builds a slog logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("config: unknown log format %q", l.Format)
	}
}
