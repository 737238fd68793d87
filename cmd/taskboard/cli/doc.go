// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the taskboard
// CLI: a tree of [Command] values dispatched by name, per-command
// pflag sets bound from tagged parameter structs ([FlagsFromParams]),
// typed errors that map to exit codes ([ToolError], [ExitCode]), and
// --json output helpers ([JSONOutput]).
//
// Unknown commands and flags are answered with the closest known name
// by edit distance, so "taskboard lsit" suggests "list".
package cli
