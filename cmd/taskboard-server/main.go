// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command taskboard-server serves the Taskboard HTTP API.
//
// Configuration comes from --config or TASKBOARD_CONFIG (YAML or
// JSONC), falling back to built-in defaults. The token signing secret
// is read once from the environment variable named by auth.secret_env
// and never from the config file. Without it the server still starts,
// but register, login and every authenticated route answer 500.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/taskboard/lib/accounts"
	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/config"
	"github.com/bureau-foundation/taskboard/lib/secret"
	"github.com/bureau-foundation/taskboard/lib/service"
	"github.com/bureau-foundation/taskboard/lib/sessiontoken"
	"github.com/bureau-foundation/taskboard/lib/store"
	"github.com/bureau-foundation/taskboard/lib/store/memstore"
	"github.com/bureau-foundation/taskboard/lib/store/sqlstore"
	"github.com/bureau-foundation/taskboard/lib/taskapi"
	"github.com/bureau-foundation/taskboard/lib/tasks"
	"github.com/bureau-foundation/taskboard/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	listen       string
	storage      string
	databasePath string
	showVersion  bool
}

func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var opts options
	flags := pflag.NewFlagSet("taskboard-server", pflag.ContinueOnError)
	flags.StringVar(&opts.configPath, "config", "", "config file (YAML or JSONC); defaults to $"+config.EnvVar)
	flags.StringVar(&opts.listen, "listen", "", "listen address, overriding server.address")
	flags.StringVar(&opts.storage, "storage", "", "storage backend (memory or sqlite), overriding storage.backend")
	flags.StringVar(&opts.databasePath, "db", "", "SQLite database path, overriding storage.path")
	flags.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		return options{}, nil, err
	}
	if flags.NArg() > 0 {
		return options{}, nil, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	return opts, flags, nil
}

// loadConfig reads the config and applies command-line overrides.
func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.listen != "" {
		cfg.Server.Address = opts.listen
	}
	if opts.storage != "" {
		cfg.Storage.Backend = opts.storage
	}
	if opts.databasePath != "" {
		cfg.Storage.Path = opts.databasePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(args []string) error {
	opts, _, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Printf("taskboard-server %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	level, err := service.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := service.NewLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	secrets, closeSecret, err := loadSigningSecret(cfg.Auth.SecretEnv, logger)
	if err != nil {
		return err
	}
	defer closeSecret()

	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.close(); err != nil {
			logger.Error("closing storage", "error", err)
		}
	}()

	api, err := newAPI(cfg, backend, secrets, clock.Real(), logger)
	if err != nil {
		return err
	}

	server := service.NewHTTPServer(service.HTTPServerConfig{
		Address:         cfg.Server.Address,
		Handler:         api,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout),
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeout),
		Logger:          logger,
	})

	logger.Info("taskboard server starting",
		"version", version.Short(),
		"environment", cfg.Environment,
		"address", cfg.Server.Address,
		"storage", cfg.Storage.Backend,
	)
	return server.Serve(ctx)
}

// loadSigningSecret moves the signing secret out of the environment
// into a locked buffer. A missing secret is a warning: the server runs
// and reports the configuration error per request.
func loadSigningSecret(name string, logger *slog.Logger) (sessiontoken.SecretSource, func(), error) {
	buffer, err := secret.FromEnv(name)
	if errors.Is(err, secret.ErrNotSet) {
		logger.Warn("token signing secret not set; authentication will fail", "variable", name)
		return sessiontoken.MissingSecret(), func() {}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading signing secret: %w", err)
	}
	closeBuffer := func() {
		if err := buffer.Close(); err != nil {
			logger.Error("releasing signing secret", "error", err)
		}
	}
	return sessiontoken.StaticSecret(buffer.Bytes()), closeBuffer, nil
}

// backend is an opened pair of repositories.
type backend struct {
	users store.UserRepository
	tasks store.TaskRepository
	close func() error
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if err := cfg.EnsureStorageDir(); err != nil {
			return backend{}, err
		}
		opened, err := sqlstore.Open(ctx, sqlstore.Config{
			Path:     cfg.Storage.Path,
			PoolSize: cfg.Storage.PoolSize,
			Logger:   logger,
		})
		if err != nil {
			return backend{}, err
		}
		logger.Info("sqlite storage opened", "path", cfg.Storage.Path)
		return backend{users: opened.Users(), tasks: opened.Tasks(), close: opened.Close}, nil
	case config.BackendMemory:
		if cfg.Environment == config.Production {
			logger.Warn("memory storage in production loses all data on restart")
		}
		memory := memstore.New()
		return backend{users: memory.Users(), tasks: memory.Tasks(), close: func() error { return nil }}, nil
	default:
		return backend{}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newAPI(cfg *config.Config, repositories backend, secrets sessiontoken.SecretSource, clk clock.Clock, logger *slog.Logger) (*taskapi.API, error) {
	directory, err := accounts.NewDirectory(accounts.Config{
		Users:  repositories.users,
		Clock:  clk,
		Cost:   cfg.Auth.BcryptCost,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	taskService, err := tasks.NewService(tasks.Config{
		Tasks:  repositories.tasks,
		Clock:  clk,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return taskapi.New(taskapi.Config{
		Directory:  directory,
		Tasks:      taskService,
		Authority:  sessiontoken.NewAuthority(secrets, clk),
		SecretName: cfg.Auth.SecretEnv,
		Logger:     logger,
	})
}
