package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.App.Env != EnvProduction {
		t.Fatalf("expected production env by default, got %s", cfg.App.Env)
	}
	if cfg.Pagination.DefaultPageSize != 20 || cfg.Pagination.MaxPageSize != 100 {
		t.Fatalf("unexpected pagination defaults: %+v", cfg.Pagination)
	}
	if !cfg.Security.RequireAuth {
		t.Fatalf("require_auth should default to true")
	}
	if cfg.File != path {
		t.Fatalf("unexpected config file: %s", cfg.File)
	}
}

func TestLoadFileSelectsEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
database:
  driver: mysql
  environments:
    development:
      host: dev-db
      name: pages_dev
    production:
      host: prod-db
      name: pages
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if !cfg.App.IsDevelopment() {
		t.Fatalf("expected development env, got %s", cfg.App.Env)
	}
	active := cfg.ActiveDatabase()
	if active.Host != "dev-db" || active.Name != "pages_dev" {
		t.Fatalf("unexpected active database: %+v", active)
	}
	if active.Charset != "utf8mb4" {
		t.Fatalf("charset default missing: %+v", active)
	}
}

func TestActiveDatabaseFallsBackToProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Env: "staging"},
		Database: DatabaseConfig{Environments: map[string]DatabaseParams{
			EnvProduction: {Host: "prod-db"},
		}},
	}
	if got := cfg.ActiveDatabase().Host; got != "prod-db" {
		t.Fatalf("expected production fallback, got %q", got)
	}
}

func TestSaveDatabaseWritesEveryEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("server:\n  port: \"7070\"\n"), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	params := DatabaseParams{Host: "db.internal", Port: 3307, Name: "pages", Username: "svc", Password: "s3cret", Charset: "utf8mb4"}
	if err := SaveDatabase(path, "mysql", params); err != nil {
		t.Fatalf("save database failed: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("reload config failed: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("unrelated keys must survive, got port %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Fatalf("unexpected driver: %s", cfg.Database.Driver)
	}
	for _, env := range []string{EnvDevelopment, EnvProduction} {
		got := cfg.Database.Environments[env]
		if got.Host != "db.internal" || got.Port != 3307 || got.Name != "pages" || got.Password != "s3cret" {
			t.Fatalf("env %s not written: %+v", env, got)
		}
	}
}

func TestSaveDatabaseCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh", "config.yml")
	if err := SaveDatabase(path, "", DatabaseParams{Name: "./pages.db"}, EnvProduction); err != nil {
		t.Fatalf("save database failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
}
