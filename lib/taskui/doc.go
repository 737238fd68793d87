// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskui is the interactive terminal view of a user's tasks.
// It is a bubbletea model over a [clientstate.Store]: the list renders
// from store snapshots, and every keystroke that changes a task becomes
// an asynchronous command whose completion triggers a re-render.
//
// Keys: j/k or arrows move, space toggles, a adds, e edits the title,
// d deletes (with confirmation), r reloads, / filters, q quits. The
// filter is fzf-style fuzzy matching over title and description, with
// matched title characters highlighted.
package taskui
