// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("environment = %s, want development", cfg.Environment)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("storage.backend = %s, want memory", cfg.Storage.Backend)
	}
	if cfg.Auth.SecretEnv != "TASKBOARD_AUTH_SECRET" {
		t.Errorf("auth.secret_env = %s", cfg.Auth.SecretEnv)
	}
	if time.Duration(cfg.Server.ShutdownTimeout) != 10*time.Second {
		t.Errorf("server.shutdown_timeout = %v", time.Duration(cfg.Server.ShutdownTimeout))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadWithoutConfigUsesDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:8080" {
		t.Errorf("server.address = %s", cfg.Server.Address)
	}
	if cfg.Storage.Path != "/home/tester/.local/share/taskboard/taskboard.db" {
		t.Errorf("storage.path = %s, want ${HOME} expanded", cfg.Storage.Path)
	}
}

func TestLoadFromEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, "taskboard.yaml", `
environment: staging
server:
  address: ":9090"
  shutdown_timeout: 3s
storage:
  backend: sqlite
  path: /var/lib/taskboard/tasks.db
  pool_size: 2
log:
  level: debug
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("environment = %s, want staging", cfg.Environment)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("server.address = %s", cfg.Server.Address)
	}
	if time.Duration(cfg.Server.ShutdownTimeout) != 3*time.Second {
		t.Errorf("shutdown_timeout = %v", time.Duration(cfg.Server.ShutdownTimeout))
	}
	if time.Duration(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("read_timeout default lost: %v", time.Duration(cfg.Server.ReadTimeout))
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.PoolSize != 2 {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Auth.SecretEnv != "TASKBOARD_AUTH_SECRET" {
		t.Errorf("auth.secret_env default lost: %s", cfg.Auth.SecretEnv)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	path := writeConfig(t, "taskboard.jsonc", `{
  // Comments and trailing commas are allowed.
  "environment": "development",
  "server": {"address": "0.0.0.0:8000", "write_timeout": "45s",},
  "auth": {"secret_env": "MY_SECRET", "bcrypt_cost": 12},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Address != "0.0.0.0:8000" {
		t.Errorf("server.address = %s", cfg.Server.Address)
	}
	if time.Duration(cfg.Server.WriteTimeout) != 45*time.Second {
		t.Errorf("write_timeout = %v", time.Duration(cfg.Server.WriteTimeout))
	}
	if cfg.Auth.SecretEnv != "MY_SECRET" || cfg.Auth.BcryptCost != 12 {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "taskboard.yaml", `
environment: production
server:
  address: "127.0.0.1:8080"
log:
  level: debug
development:
  server:
    address: "127.0.0.1:1111"
production:
  server:
    address: ":443"
  storage:
    backend: sqlite
    path: /srv/taskboard.db
  log:
    level: warn
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Address != ":443" {
		t.Errorf("server.address = %s, want production override", cfg.Server.Address)
	}
	if cfg.Storage.Path != "/srv/taskboard.db" || cfg.Storage.Backend != BackendSQLite {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %s, want warn", cfg.Log.Level)
	}
}

func TestProductionDefaultsToSQLite(t *testing.T) {
	path := writeConfig(t, "taskboard.yaml", "environment: production\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("storage.backend = %s, want sqlite", cfg.Storage.Backend)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("TASKBOARD_TEST_DIR", "/data")
	t.Setenv("TASKBOARD_TEST_UNSET", "")

	tests := []struct {
		input string
		want  string
	}{
		{"${TASKBOARD_TEST_DIR}/tasks.db", "/data/tasks.db"},
		{"${TASKBOARD_TEST_UNSET:-/fallback}/tasks.db", "/fallback/tasks.db"},
		{"${TASKBOARD_TEST_UNSET}/tasks.db", "/tasks.db"},
		{"/plain/path.db", "/plain/path.db"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			if got := expandVars(test.input); got != test.want {
				t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile of a missing file succeeded")
	}

	bad := writeConfig(t, "bad.yaml", "server:\n  shutdown_timeout: soon\n")
	_, err := LoadFile(bad)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("bad duration error = %v, want one naming line 2", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "invalid environment"},
		{"no address", func(c *Config) { c.Server.Address = "" }, "server.address"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"sqlite without path", func(c *Config) { c.Storage.Backend = BackendSQLite; c.Storage.Path = "" }, "storage.path"},
		{"no secret env", func(c *Config) { c.Auth.SecretEnv = "" }, "auth.secret_env"},
		{"bcrypt cost", func(c *Config) { c.Auth.BcryptCost = 3 }, "auth.bcrypt_cost"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, test.wantErr)
			}
		})
	}
}

func TestEnsureStorageDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.Path = filepath.Join(t.TempDir(), "nested", "dir", "taskboard.db")

	if err := cfg.EnsureStorageDir(); err != nil {
		t.Fatalf("EnsureStorageDir: %v", err)
	}
	info, err := os.Stat(filepath.Dir(cfg.Storage.Path))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("storage directory is not a directory")
	}
}
