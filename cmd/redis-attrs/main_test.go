package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-redis-attrs/pkg/config"
)

const testSchema = `
models:
  - name: Film
    attributes:
      title: string
      stars: {type: integer, default: 0}
      genres: {type: set, filter: "lower(trim(value))"}
      cast: hash
      views: counter
`

type harness struct {
	t      *testing.T
	server *miniredis.Miniredis
	schema string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvURL, "")
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(testSchema), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return &harness{t: t, server: miniredis.RunT(t), schema: path}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--url", "redis://" + h.server.Addr(), "--schema", h.schema}, args...)
	err := run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), err
}

func TestSetGetRoundTrip(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("set", "Film", "1", "title", "Inception"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := h.server.Get("film:1:title"); got != "Inception" {
		t.Fatalf("expected stored title, got %q", got)
	}
	out, err := h.run("get", "Film", "1", "title")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != `"Inception"` {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = h.run("get", "film", "1", "stars")
	if err != nil {
		t.Fatalf("get by prefix: %v", err)
	}
	if strings.TrimSpace(out) != "0" {
		t.Fatalf("expected default 0, got %q", out)
	}
}

func TestSetCollections(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("set", "Film", "1", "genres", " Action", "DRAMA "); err != nil {
		t.Fatalf("set genres: %v", err)
	}
	out, err := h.run("get", "Film", "1", "genres")
	if err != nil {
		t.Fatalf("get genres: %v", err)
	}
	var genres []string
	if err := json.Unmarshal([]byte(out), &genres); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if strings.Join(genres, ",") != "action,drama" {
		t.Fatalf("unexpected genres %v", genres)
	}

	if _, err := h.run("set", "Film", "1", "cast", "lead=DiCaprio"); err != nil {
		t.Fatalf("set cast: %v", err)
	}
	if got := h.server.HGet("film:1:cast", "lead"); got != "DiCaprio" {
		t.Fatalf("unexpected hash field %q", got)
	}
	if _, err := h.run("set", "Film", "1", "cast", "nope"); err == nil {
		t.Fatalf("expected pair error")
	}

	if _, err := h.run("set", "Film", "1", "views", "41"); err != nil {
		t.Fatalf("set views: %v", err)
	}
	out, _ = h.run("get", "Film", "1", "views")
	if strings.TrimSpace(out) != "41" {
		t.Fatalf("unexpected counter %q", out)
	}
}

func TestFetchInitAndDelete(t *testing.T) {
	h := newHarness(t)
	h.server.Set("film:7:title", "Heat")
	h.server.Set("film:7:stars", "4")

	out, err := h.run("fetch", "Film", "7")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if strings.Join(strings.Fields(out), "") != `{"title":"Heat","stars":4}` {
		t.Fatalf("unexpected fetch output %q", out)
	}

	if _, err := h.run("init", "Film", "7"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if h.server.Exists("film:7:title") {
		t.Fatalf("expected title without default to be deleted")
	}
	if got, _ := h.server.Get("film:7:stars"); got != "0" {
		t.Fatalf("expected stars reset to 0, got %q", got)
	}

	if _, err := h.run("del", "Film", "7", "stars"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if h.server.Exists("film:7:stars") {
		t.Fatalf("expected stars deleted")
	}
}

func TestDescribeAndKey(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("key", "Film", "9", "genres")
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if strings.TrimSpace(out) != `"film:9:genres"` {
		t.Fatalf("unexpected key %q", out)
	}

	out, err = h.run("describe", "Film")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	var fields []map[string]any
	if err := json.Unmarshal([]byte(out), &fields); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(fields) != 5 || fields[0]["name"] != "title" || fields[2]["filter"] != "lower(trim(value))" {
		t.Fatalf("unexpected descriptors %v", fields)
	}

	out, err = h.run("--format", "openapi", "describe", "Film")
	if err != nil {
		t.Fatalf("describe openapi: %v", err)
	}
	if !strings.Contains(out, `"x-key-prefix": "film"`) {
		t.Fatalf("unexpected openapi output %q", out)
	}
}

func TestErrors(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("get", "Film", "1", "rating"); err == nil || !strings.Contains(err.Error(), "rating") {
		t.Fatalf("expected unknown attribute error, got %v", err)
	}
	if _, err := h.run("get", "Show", "1", "title"); err == nil || !strings.Contains(err.Error(), "Show") {
		t.Fatalf("expected unknown model error, got %v", err)
	}
	if _, err := h.run("launch"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if _, err := h.run("set", "Film", "1", "stars", "many"); err == nil {
		t.Fatalf("expected coercion error")
	}

	var stderr bytes.Buffer
	err := run(context.Background(), []string{"--help"}, &bytes.Buffer{}, &stderr)
	if !errors.Is(err, pflag.ErrHelp) || !strings.Contains(stderr.String(), "Commands:") {
		t.Fatalf("expected help output, got %v %q", err, stderr.String())
	}
}

func TestActivityAuditLog(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(t.TempDir(), "attrs.yaml")
	cfgData := "activity:\n  enabled: true\n  channel: audit\nlog:\n  format: json\n"
	if err := os.WriteFile(cfgPath, []byte(cfgData), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	args := []string{"--config", cfgPath, "--url", "redis://" + h.server.Addr(), "--schema", h.schema,
		"set", "Film", "3", "title", "Heat"}
	if err := run(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(stderr.String(), `"msg":"attribute changed"`) ||
		!strings.Contains(stderr.String(), `"channel":"audit"`) ||
		!strings.Contains(stderr.String(), `"identity":"3"`) {
		t.Fatalf("expected an audit line, got %s", stderr.String())
	}
}
