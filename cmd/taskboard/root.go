// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/version"
)

func rootCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    "taskboard",
		Summary: "Personal task tracker",
		Description: `Manage your tasks on a taskboard server.

Log in once with "taskboard login"; the session is saved locally
(mode 0600) and reused by every other command until it expires or you
run "taskboard logout". Run "taskboard tui" for the interactive board.`,
		HelpOutput: env.stderr,
		Subcommands: []*cli.Command{
			registerCommand(env),
			loginCommand(env),
			logoutCommand(env),
			whoamiCommand(env),
			listCommand(env),
			addCommand(env),
			showCommand(env),
			editCommand(env),
			toggleCommand(env),
			deleteCommand(env),
			tuiCommand(env),
			versionCommand(env),
		},
	}
}

func versionCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			fmt.Fprintln(env.stdout, "taskboard "+version.Full())
			return nil
		},
	}
}
