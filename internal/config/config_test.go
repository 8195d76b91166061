package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgtweak/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, _, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("no config file should exist under a fresh home")
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 || cfg.Database.User != "postgres" {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
	if !cfg.Edit.Comment || !cfg.Edit.Report {
		t.Fatalf("unexpected edit defaults: %+v", cfg.Edit)
	}
	if cfg.Verify.Attempts != 30 || cfg.Verify.IntervalMS != 200 {
		t.Fatalf("unexpected verify defaults: %+v", cfg.Verify)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[database]
host = "db.internal"
port = 5433
user = "tuner"
name = "app"

[postgres]
conf_path = "/etc/postgresql/17/main/postgresql.conf"

[edit]
comment = false

[verify]
attempts = 5
interval_ms = 50

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Postgres.ConfPath != "/etc/postgresql/17/main/postgresql.conf" {
		t.Fatalf("unexpected conf path %q", cfg.Postgres.ConfPath)
	}
	if cfg.Edit.Comment {
		t.Fatal("comment = false was not honored")
	}
	if !cfg.Edit.Report {
		t.Fatal("unset report should keep its default")
	}
	if cfg.Verify.Attempts != 5 || cfg.Verify.IntervalMS != 50 {
		t.Fatalf("unexpected verify config: %+v", cfg.Verify)
	}
	// Logging values are normalized to lowercase.
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging values not normalized: %+v", cfg.Logging)
	}
}

func TestLoadExpandsConfPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[postgres]\nconf_path = \"~/pgdata/postgresql.conf\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := filepath.Join(home, "pgdata", "postgresql.conf")
	if cfg.Postgres.ConfPath != want {
		t.Fatalf("conf_path not expanded: got %q want %q", cfg.Postgres.ConfPath, want)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"port too low", func(c *config.Config) { c.Database.Port = 0 }, "database.port"},
		{"port too high", func(c *config.Config) { c.Database.Port = 70000 }, "database.port"},
		{"empty user", func(c *config.Config) { c.Database.User = "" }, "database.user"},
		{"zero attempts", func(c *config.Config) { c.Verify.Attempts = 0 }, "verify.attempts"},
		{"negative interval", func(c *config.Config) { c.Verify.IntervalMS = -1 }, "verify.interval_ms"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after writing")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config does not validate: %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/x/y.conf")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "x", "y.conf") {
		t.Fatalf("unexpected expansion %q", got)
	}
}
