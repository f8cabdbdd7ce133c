package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/modelmgr/core/backends"
	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.LoadPath != "" {
		t.Errorf("expected empty load path, got %q", s.LoadPath)
	}
	if len(s.Backends.Priority) != 1 || s.Backends.Priority[0].Type != string(backends.KindLocal) {
		t.Errorf("expected default LOCAL priority, got %+v", s.Backends.Priority)
	}
	if s.Log.Level != "info" || s.Log.Format != "json" {
		t.Errorf("unexpected log defaults %+v", s.Log)
	}
}

func TestLoadMergesFiles(t *testing.T) {
	t.Setenv(EnvConfigFiles, "")
	t.Setenv(EnvLoadPath, "")
	t.Setenv(EnvBackends, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")

	dir := t.TempDir()
	extra := writeFile(t, dir, "extra.yml", "log:\n  format: text\n")
	base := writeFile(t, dir, "base.yml", `load_path: /models
config_files:
  - `+extra+`
backends:
  priority:
    - type: catalog
      name: primary
      config:
        file: catalog.db
    - type: LOCAL
log:
  level: debug
`)

	s, err := Load(base)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.LoadPath != "/models" {
		t.Errorf("expected load path /models, got %q", s.LoadPath)
	}
	if len(s.Backends.Priority) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(s.Backends.Priority))
	}
	first := s.Backends.Priority[0]
	if first.Type != "catalog" || first.Name != "primary" || first.Config["file"] != "catalog.db" {
		t.Errorf("unexpected first backend %+v", first)
	}
	if s.Log.Level != "debug" {
		t.Errorf("expected level debug, got %q", s.Log.Level)
	}
	if s.Log.Format != "text" {
		t.Errorf("expected format text from config_files, got %q", s.Log.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yml", "backends: [\n")
	_, err := Load(path)
	var pe *apperrors.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T %v", err, err)
	}
	if pe.Path != path {
		t.Errorf("expected path %q, got %q", path, pe.Path)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLoadPath:  "/srv/models",
		EnvLogLevel:  "warn",
		EnvLogFormat: "text",
		EnvBackends:  "catalog, LOCAL,,",
	}
	s := Default()
	s.ApplyEnv(func(k string) string { return env[k] })

	if s.LoadPath != "/srv/models" {
		t.Errorf("expected load path from env, got %q", s.LoadPath)
	}
	if s.Log.Level != "warn" || s.Log.Format != "text" {
		t.Errorf("unexpected log settings %+v", s.Log)
	}
	got := s.Backends.Priority
	if len(got) != 2 || got[0].Type != "catalog" || got[1].Type != "LOCAL" {
		t.Errorf("unexpected priority %+v", got)
	}
}

func TestLoadEnvConfigFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yml", "load_path: /a\n")
	b := writeFile(t, dir, "b.yml", "load_path: /b\n")
	t.Setenv(EnvConfigFiles, a+","+b)
	t.Setenv(EnvLoadPath, "")
	t.Setenv(EnvBackends, "")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.LoadPath != "/b" {
		t.Errorf("expected last file to win, got %q", s.LoadPath)
	}
}

func TestBackendConfig(t *testing.T) {
	s := Default()
	c := s.BackendConfig()
	if err := c.Configure(); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	got := c.ConfiguredLoadBackends()
	if len(got) != 1 || got[0].Kind() != backends.KindLocal {
		t.Errorf("expected one LOCAL backend, got %v", got)
	}
}
