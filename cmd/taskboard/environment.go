// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/taskclient"
)

const (
	// ServerEnv overrides the default server URL.
	ServerEnv = "TASKBOARD_SERVER"

	defaultServer = "http://127.0.0.1:8080"
)

// environment is everything a command touches outside its own
// arguments. Tests substitute buffers and an in-memory token store.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// terminal reports whether stdin is an interactive terminal, and
	// readTerminal reads a line from it with echo disabled.
	terminal     func() bool
	readTerminal func() ([]byte, error)

	getenv func(string) string
	tokens taskclient.TokenStore

	// newLogger builds the command logger at the requested level.
	newLogger func(slog.Level) *slog.Logger
}

func systemEnvironment() *environment {
	stdinFD := int(os.Stdin.Fd())
	return &environment{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		terminal:     func() bool { return term.IsTerminal(stdinFD) },
		readTerminal: func() ([]byte, error) { return term.ReadPassword(stdinFD) },
		getenv:       os.Getenv,
		tokens:       taskclient.NewFileTokenStore(taskclient.DefaultTokenPath()),
		newLogger:    cli.NewCommandLogger,
	}
}

// connectionParams is embedded by every command that talks to the
// server.
type connectionParams struct {
	Server  string `flag:"server,s" desc:"server URL (default: $TASKBOARD_SERVER, then the server of the saved session, then http://127.0.0.1:8080)"`
	Verbose bool   `flag:"verbose,v" desc:"log requests and session handling to stderr"`
}

// serverURL resolves the server in precedence order: flag,
// environment, saved session, built-in default.
func (e *environment) serverURL(params connectionParams) string {
	if params.Server != "" {
		return params.Server
	}
	if fromEnv := e.getenv(ServerEnv); fromEnv != "" {
		return fromEnv
	}
	if session, err := e.tokens.Load(); err == nil && session.Server != "" {
		return session.Server
	}
	return defaultServer
}

func (e *environment) logger(params connectionParams) *slog.Logger {
	level := slog.LevelWarn
	if params.Verbose {
		level = slog.LevelDebug
	}
	return e.newLogger(level)
}

// connect builds a client bound to the saved session.
func (e *environment) connect(params connectionParams) (*taskclient.Client, *slog.Logger, error) {
	logger := e.logger(params)
	server := e.serverURL(params)
	client, err := taskclient.New(server, taskclient.Options{
		Tokens: e.tokens,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, cli.Validation("%v", err)
	}
	logger.Debug("using server", "url", server)
	return client, logger, nil
}

// requireSession returns an auth error when nobody is logged in, so
// commands fail before sending an unauthenticated request.
func requireSession(client *taskclient.Client) (taskclient.Session, error) {
	session, ok := client.Session()
	if !ok {
		return taskclient.Session{}, cli.Auth("not logged in (run 'taskboard login <email>')")
	}
	return session, nil
}

// commandContext is canceled by SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// apiFailure classifies a client error into a categorized command
// error prefixed with action.
func apiFailure(action string, err error) error {
	var apiError *taskclient.APIError
	if errors.As(err, &apiError) {
		switch {
		case taskclient.IsUnauthorized(err):
			return cli.Auth("%s: %s (run 'taskboard login <email>')", action, apiError.Message)
		case taskclient.IsNotFound(err):
			return cli.NotFound("%s: %s", action, apiError.Message)
		case apiError.StatusCode < 500:
			return cli.Validation("%s: %s", action, apiError.Message)
		default:
			return cli.Internal("%s: %s", action, apiError.Message)
		}
	}
	var urlError *url.Error
	if errors.As(err, &urlError) || errors.Is(err, context.DeadlineExceeded) {
		return cli.Transient("%s: %w", action, err)
	}
	return cli.Internal("%s: %w", action, err)
}
