// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable [Load] reads the config path
// from.
const EnvVar = "TASKBOARD_CONFIG"

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Duration is a time.Duration written as a Go duration string ("10s")
// in config files.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the taskboard server configuration.
type Config struct {
	Environment Environment   `yaml:"environment"`
	Server      ServerConfig  `yaml:"server"`
	Storage     StorageConfig `yaml:"storage"`
	Auth        AuthConfig    `yaml:"auth"`
	Log         LogConfig     `yaml:"log"`

	// Per-environment overrides, applied after the base values.
	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the fields an environment section may replace.
// Zero values leave the base value in place.
type Overrides struct {
	Server  *ServerConfig  `yaml:"server,omitempty"`
	Storage *StorageConfig `yaml:"storage,omitempty"`
	Auth    *AuthConfig    `yaml:"auth,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string   `yaml:"address"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// Path is the SQLite database file. Ignored by the memory backend.
	Path string `yaml:"path"`

	// PoolSize is the number of SQLite connections; zero picks a
	// default from the CPU count.
	PoolSize int `yaml:"pool_size"`
}

// AuthConfig configures credentials.
type AuthConfig struct {
	// SecretEnv names the environment variable holding the token
	// signing secret.
	SecretEnv string `yaml:"secret_env"`

	// BcryptCost is the password hashing work factor.
	BcryptCost int `yaml:"bcrypt_cost"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Address:         "127.0.0.1:8080",
			ShutdownTimeout: Duration(10 * time.Second),
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			Path:    "${HOME}/.local/share/taskboard/taskboard.db",
		},
		Auth: AuthConfig{
			SecretEnv:  "TASKBOARD_AUTH_SECRET",
			BcryptCost: 10,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the file named by TASKBOARD_CONFIG, or returns the
// defaults when it is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// Standard JSON is valid YAML, so one decoder serves both.
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production keeps data across restarts unless told otherwise.
		if overrides == nil {
			overrides = &Overrides{Storage: &StorageConfig{Backend: BackendSQLite}}
		}
	}
	if overrides == nil {
		return
	}

	if server := overrides.Server; server != nil {
		setString(&c.Server.Address, server.Address)
		setDuration(&c.Server.ShutdownTimeout, server.ShutdownTimeout)
		setDuration(&c.Server.ReadTimeout, server.ReadTimeout)
		setDuration(&c.Server.WriteTimeout, server.WriteTimeout)
	}
	if storage := overrides.Storage; storage != nil {
		setString(&c.Storage.Backend, storage.Backend)
		setString(&c.Storage.Path, storage.Path)
		if storage.PoolSize != 0 {
			c.Storage.PoolSize = storage.PoolSize
		}
	}
	if auth := overrides.Auth; auth != nil {
		setString(&c.Auth.SecretEnv, auth.SecretEnv)
		if auth.BcryptCost != 0 {
			c.Auth.BcryptCost = auth.BcryptCost
		}
	}
	if log := overrides.Log; log != nil {
		setString(&c.Log.Level, log.Level)
	}
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setDuration(target *Duration, value Duration) {
	if value != 0 {
		*target = value
	}
}

func (c *Config) expandVariables() {
	c.Storage.Path = expandVars(c.Storage.Path)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q", BackendMemory, BackendSQLite, c.Storage.Backend))
	}
	if c.Storage.PoolSize < 0 {
		errs = append(errs, errors.New("storage.pool_size must not be negative"))
	}
	if c.Auth.SecretEnv == "" {
		errs = append(errs, errors.New("auth.secret_env is required"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// EnsureStorageDir creates the parent directory of the SQLite database.
func (c *Config) EnsureStorageDir() error {
	if c.Storage.Backend != BackendSQLite {
		return nil
	}
	directory := filepath.Dir(c.Storage.Path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	return nil
}
