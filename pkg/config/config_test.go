package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(`
redis:
  addr: cache:6380
  db: 2
  dial_timeout: 2s
log:
  level: debug
filters:
  engine: cel
activity:
  enabled: true
  channel: catalog
`), "attrs.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Redis.Addr != "cache:6380" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Redis.DialTimeout != 2*time.Second {
		t.Fatalf("expected 2s dial timeout, got %s", cfg.Redis.DialTimeout)
	}
	if cfg.Filters.Engine != "cel" {
		t.Fatalf("expected cel engine, got %q", cfg.Filters.Engine)
	}
	if !cfg.Activity.Enabled || cfg.Activity.Channel != "catalog" {
		t.Fatalf("unexpected activity config %+v", cfg.Activity)
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v (%v)", level, err)
	}
	if cfg.Log.Format != "text" {
		t.Fatalf("expected default text format, got %q", cfg.Log.Format)
	}
}

func TestParseJSONC(t *testing.T) {
	cfg, err := Parse([]byte(`{
  // local development
  "redis": {
    "url": "redis://localhost:6379/3",
  },
  /* verbose */
  "log": {"level": "warn", "format": "json"},
}`), "attrs.jsonc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	opts, err := cfg.RedisOptions()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 3 {
		t.Fatalf("unexpected options addr=%s db=%d", opts.Addr, opts.DB)
	}
	if opts.DialTimeout != 5*time.Second {
		t.Fatalf("expected default dial timeout to carry over, got %s", opts.DialTimeout)
	}

	var buf bytes.Buffer
	logger, err := cfg.Log.NewLogger(&buf)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), `"msg":"kept"`) {
		t.Fatalf("unexpected log output %q", buf.String())
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Default()
	cfg.Redis.Addr = "ignored:1"
	cfg.Redis.Password = "secret"
	cfg.applyEnv(func(key string) (string, bool) {
		if key == EnvURL {
			return " redis://override:6390/1 ", true
		}
		return "", false
	})
	if cfg.Redis.URL != "redis://override:6390/1" {
		t.Fatalf("expected url override, got %q", cfg.Redis.URL)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.Password != "" {
		t.Fatalf("expected discrete fields to be dropped, got %+v", cfg.Redis)
	}
	opts, err := cfg.RedisOptions()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "override:6390" || opts.DB != 1 {
		t.Fatalf("unexpected options addr=%s db=%d", opts.Addr, opts.DB)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvURL, "redis://env-host:6379/0")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	client, err := cfg.NewClient()
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()
	if client.Options().Addr != "env-host:6379" {
		t.Fatalf("expected env host, got %s", client.Options().Addr)
	}
}

func TestLoadResolvesSchemaPath(t *testing.T) {
	t.Setenv(EnvURL, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "attrs.yaml")
	if err := os.WriteFile(path, []byte("schema: models.yaml\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Schema != filepath.Join(dir, "models.yaml") {
		t.Fatalf("expected schema next to config, got %q", cfg.Schema)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "missing address", mutate: func(c *Config) { c.Redis.Addr = "" }, want: "url or addr"},
		{name: "bad url", mutate: func(c *Config) { c.Redis.URL = "http://nope" }, want: "redis url"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, want: "log level"},
		{name: "bad engine", mutate: func(c *Config) { c.Filters.Engine = "lua" }, want: "filter engine"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
