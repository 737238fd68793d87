// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/clientstate"
	"github.com/bureau-foundation/taskboard/lib/taskui"
)

func tuiCommand(env *environment) *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "tui",
		Summary: "Open the interactive task board",
		Description: `Open a full-screen board of your tasks.

Keys: j/k move, space toggles, a adds, e edits the title, d deletes,
/ filters by fuzzy match, r reloads, q quits.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("tui", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			client, logger, err := env.connect(params)
			if err != nil {
				return err
			}
			if _, err := requireSession(client); err != nil {
				return err
			}
			ctx, cancel := commandContext()
			defer cancel()
			if err := taskui.Run(ctx, clientstate.New(client, logger)); err != nil {
				return cli.Internal("task board: %w", err)
			}
			return nil
		},
	}
}
