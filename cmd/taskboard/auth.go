// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/taskclient"
)

type credentialParams struct {
	connectionParams
	PasswordFile string `flag:"password-file" desc:"read the password from this file, or from stdin if - (default: prompt)"`
}

func registerCommand(env *environment) *cli.Command {
	var params credentialParams
	return &cli.Command{
		Name:    "register",
		Summary: "Create an account and log in",
		Description: `Create an account on the server and save the session locally.

Passwords must be at least 8 characters. Without --password-file the
password is prompted for on the terminal.`,
		Usage: "taskboard register <email> [flags]",
		Examples: []cli.Example{
			{Description: "Register against a local server", Command: "taskboard register ada@example.com"},
			{Description: "Register non-interactively", Command: "taskboard register ada@example.com --password-file ~/.taskboard-password"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("register", &params) },
		Run: func(args []string) error {
			return env.authenticate(args, params, "register", (*taskclient.Client).Register)
		},
	}
}

func loginCommand(env *environment) *cli.Command {
	var params credentialParams
	return &cli.Command{
		Name:    "login",
		Summary: "Log in and save the session",
		Description: `Log in to the server and save the session locally.

The session file defaults to $XDG_CONFIG_HOME/taskboard/session.json
(override with $TASKBOARD_TOKEN_FILE) and is written with mode 0600.
Sessions last one hour.`,
		Usage: "taskboard login <email> [flags]",
		Examples: []cli.Example{
			{Description: "Log in interactively", Command: "taskboard login ada@example.com"},
			{Description: "Log in to another server", Command: "taskboard login ada@example.com --server https://tasks.example.com"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("login", &params) },
		Run: func(args []string) error {
			return env.authenticate(args, params, "login", (*taskclient.Client).Login)
		},
	}
}

type authenticateCall func(*taskclient.Client, context.Context, string, string) (schema.AuthResponse, error)

func (e *environment) authenticate(args []string, params credentialParams, action string, call authenticateCall) error {
	if len(args) < 1 {
		return cli.Validation("email is required\n\nUsage: taskboard %s <email> [flags]", action)
	}
	if len(args) > 1 {
		return cli.Validation("unexpected argument: %s", args[1])
	}
	email := args[0]

	client, logger, err := e.connect(params.connectionParams)
	if err != nil {
		return err
	}
	password, err := e.readPassword(params.PasswordFile)
	if err != nil {
		return err
	}
	defer password.Close()

	ctx, cancel := commandContext()
	defer cancel()

	response, err := call(client, ctx, email, string(password.Bytes()))
	if err != nil {
		return apiFailure(action, err)
	}
	logger.Debug("session saved", "user_id", response.User.ID)

	fmt.Fprintf(e.stderr, "Logged in as %s\n", response.User.Email)
	if fileStore, ok := e.tokens.(*taskclient.FileTokenStore); ok {
		fmt.Fprintf(e.stderr, "Session saved to %s\n", fileStore.Path())
	}
	return nil
}

func logoutCommand(env *environment) *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "logout",
		Summary: "Forget the saved session",
		Description: `Remove the saved session. The server is notified, but the local
session is removed even if it cannot be reached.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("logout", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			client, _, err := env.connect(params)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext()
			defer cancel()
			if err := client.Logout(ctx); err != nil {
				return cli.Internal("removing session: %w", err)
			}
			fmt.Fprintln(env.stderr, "Logged out")
			return nil
		},
	}
}

type whoamiParams struct {
	connectionParams
	cli.JSONOutput
}

func whoamiCommand(env *environment) *cli.Command {
	var params whoamiParams
	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the logged-in account",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("whoami", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			client, _, err := env.connect(params.connectionParams)
			if err != nil {
				return err
			}
			if _, err := requireSession(client); err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()
			info, err := client.Me(ctx)
			if err != nil {
				return apiFailure("whoami", err)
			}
			if done, err := params.EmitJSON(env.stdout, info); done {
				return err
			}

			writer := tabwriter.NewWriter(env.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "Email:\t%s\n", info.Email)
			fmt.Fprintf(writer, "ID:\t%s\n", info.ID)
			if info.Name != "" {
				fmt.Fprintf(writer, "Name:\t%s\n", info.Name)
			}
			fmt.Fprintf(writer, "Member since:\t%s\n", info.CreatedAt.Local().Format("2006-01-02"))
			fmt.Fprintf(writer, "Server:\t%s\n", env.serverURL(params.connectionParams))
			return writer.Flush()
		},
	}
}
