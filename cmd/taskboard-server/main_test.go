// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/config"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/sessiontoken"
)

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestParseFlags(t *testing.T) {
	opts, flags, err := parseFlags([]string{"--listen", ":9999", "--storage=sqlite", "--db", "/tmp/x.db"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.listen != ":9999" || opts.storage != "sqlite" || opts.databasePath != "/tmp/x.db" {
		t.Errorf("options = %+v", opts)
	}
	if !flags.Changed("listen") || flags.Changed("config") {
		t.Error("Changed does not reflect the given flags")
	}

	if _, _, err := parseFlags([]string{"extra"}); err == nil {
		t.Error("positional argument accepted")
	}
	if _, _, err := parseFlags([]string{"--no-such-flag"}); err == nil {
		t.Error("unknown flag accepted")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	content := "server:\n  address: 127.0.0.1:7000\nstorage:\n  backend: memory\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		opts        options
		wantAddress string
		wantBackend string
		wantErr     string
	}{
		{"file only", options{configPath: path}, "127.0.0.1:7000", config.BackendMemory, ""},
		{"listen flag wins", options{configPath: path, listen: ":8181"}, ":8181", config.BackendMemory, ""},
		{"defaults", options{}, "127.0.0.1:8080", config.BackendMemory, ""},
		{"sqlite flags", options{storage: "sqlite", databasePath: "/tmp/t.db"}, "127.0.0.1:8080", config.BackendSQLite, ""},
		{"bad backend", options{storage: "postgres"}, "", "", "storage.backend"},
		{"missing file", options{configPath: filepath.Join(t.TempDir(), "absent.yaml")}, "", "", "absent.yaml"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := loadConfig(test.opts)
			if test.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), test.wantErr) {
					t.Fatalf("err = %v, want mention of %q", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig: %v", err)
			}
			if cfg.Server.Address != test.wantAddress || cfg.Storage.Backend != test.wantBackend {
				t.Errorf("address=%q backend=%q", cfg.Server.Address, cfg.Storage.Backend)
			}
		})
	}
}

func TestLoadSigningSecret(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("TASKBOARD_TEST_SECRET", "")
		os.Unsetenv("TASKBOARD_TEST_SECRET")
		secrets, closeSecret, err := loadSigningSecret("TASKBOARD_TEST_SECRET", discardLogger())
		if err != nil {
			t.Fatalf("loadSigningSecret: %v", err)
		}
		defer closeSecret()
		if _, err := secrets.Secret(); !errors.Is(err, sessiontoken.ErrMissingSecret) {
			t.Errorf("Secret() err = %v, want ErrMissingSecret", err)
		}
	})
	t.Run("present", func(t *testing.T) {
		t.Setenv("TASKBOARD_TEST_SECRET", "  signing secret  ")
		secrets, closeSecret, err := loadSigningSecret("TASKBOARD_TEST_SECRET", discardLogger())
		if err != nil {
			t.Fatalf("loadSigningSecret: %v", err)
		}
		defer closeSecret()
		value, err := secrets.Secret()
		if err != nil || string(value) != "signing secret" {
			t.Errorf("Secret() = %q, %v", value, err)
		}
		if _, stillSet := os.LookupEnv("TASKBOARD_TEST_SECRET"); stillSet {
			t.Error("secret left in the environment")
		}
	})
}

// TestServerStack registers and lists tasks through the same handler
// run() serves, on both backends.
func TestServerStack(t *testing.T) {
	for _, backendName := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(backendName, func(t *testing.T) {
			cfg := config.Default()
			cfg.Auth.BcryptCost = 4
			cfg.Storage.Backend = backendName
			cfg.Storage.Path = filepath.Join(t.TempDir(), "data", "taskboard.db")

			opened, err := openBackend(context.Background(), cfg, discardLogger())
			if err != nil {
				t.Fatalf("openBackend: %v", err)
			}
			t.Cleanup(func() { opened.close() })

			api, err := newAPI(cfg, opened, sessiontoken.StaticSecret([]byte("stack secret")), clock.Real(), discardLogger())
			if err != nil {
				t.Fatalf("newAPI: %v", err)
			}
			server := httptest.NewServer(api)
			t.Cleanup(server.Close)

			response, err := http.Post(server.URL+"/api/auth/register", "application/json",
				strings.NewReader(`{"email":"stack@example.com","password":"password"}`))
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			var auth schema.AuthResponse
			decodeBody(t, response, http.StatusOK, &auth)

			request, _ := http.NewRequest(http.MethodGet, server.URL+"/api/tasks", nil)
			request.Header.Set("Authorization", "Bearer "+auth.Session.AccessToken)
			response, err = http.DefaultClient.Do(request)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var list []schema.Task
			decodeBody(t, response, http.StatusOK, &list)
			if len(list) != 0 {
				t.Errorf("new account has tasks: %+v", list)
			}

			if backendName == config.BackendSQLite {
				if _, err := os.Stat(cfg.Storage.Path); err != nil {
					t.Errorf("database file not created: %v", err)
				}
			}
		})
	}
}

func decodeBody(t *testing.T, response *http.Response, wantStatus int, v any) {
	t.Helper()
	defer response.Body.Close()
	body, _ := io.ReadAll(response.Body)
	if response.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d (body %s)", response.StatusCode, wantStatus, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decoding %s: %v", body, err)
	}
}
