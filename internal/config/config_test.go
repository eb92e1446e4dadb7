package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todo/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if cfg.Dir != dir {
		t.Errorf("expected dir %s, got %s", dir, cfg.Dir)
	}
	want := config.DefaultSettings()
	if cfg.Settings != want {
		t.Errorf("expected defaults %+v, got %+v", want, cfg.Settings)
	}
	if cfg.StorageDSN() != dir {
		t.Errorf("file storage should default to the config dir, got %s", cfg.StorageDSN())
	}
}

func TestNew_SettingsFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `storage:
  backend: sqlite
  key: work
  write_timeout: 3s
default_category: Inbox
`
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(yaml), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s := cfg.Settings
	if s.Storage.Backend != "sqlite" || s.Storage.Key != "work" || s.DefaultCategory != "Inbox" {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.Storage.WriteTimeout != 3*time.Second {
		t.Errorf("expected 3s write timeout, got %s", s.Storage.WriteTimeout)
	}
	if cfg.StorageDSN() != filepath.Join(dir, "todo.db") {
		t.Errorf("sqlite should default into the config dir, got %s", cfg.StorageDSN())
	}
}

func TestNew_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("storage:\n  backend: sqlite\n"), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	t.Setenv("TODO_STORAGE_BACKEND", "postgres")
	t.Setenv("TODO_STORAGE_DSN", "postgres://localhost/todo")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cfg.Settings.Storage.Backend != "postgres" {
		t.Errorf("expected env backend, got %s", cfg.Settings.Storage.Backend)
	}
	if cfg.StorageDSN() != "postgres://localhost/todo" {
		t.Errorf("expected env dsn, got %s", cfg.StorageDSN())
	}
}

func TestNew_InvalidSettingsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("storage: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if _, err := config.New(dir); err == nil || !strings.Contains(err.Error(), "invalid config.yaml") {
		t.Errorf("expected invalid config.yaml error, got %v", err)
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if got := config.DefaultConfigDir(); got != filepath.Join(xdg, config.AppName) {
		t.Errorf("unexpected dir %s", got)
	}
}

func TestYAML(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	data, err := cfg.YAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	out := string(data)
	for _, want := range []string{"backend: file", "dsn: " + dir, "key: tasks", "write_timeout: 10s", "default_category: General"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}
}

func TestPaths(t *testing.T) {
	cfg := &config.Config{Dir: "/tmp/todo-test"}
	if cfg.OAuthClientPath() != "/tmp/todo-test/oauth_client.json" {
		t.Errorf("unexpected oauth path %s", cfg.OAuthClientPath())
	}
	if cfg.TokenPath() != "/tmp/todo-test/token.json" {
		t.Errorf("unexpected token path %s", cfg.TokenPath())
	}
	if cfg.SettingsPath() != "/tmp/todo-test/config.yaml" {
		t.Errorf("unexpected settings path %s", cfg.SettingsPath())
	}
}

func TestLogger_NilDiscards(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logger().Printf("dropped")
}
