// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command taskboard is the terminal client for a taskboard server:
// account commands, one-shot task commands, and an interactive board.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

func run(args []string) error {
	return rootCommand(systemEnvironment()).Execute(args)
}
