// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"
)

// ConfigHome sets XDG_CONFIG_HOME to a new temporary directory and
// returns it. The previous value is restored when the test ends.
// Tests using it cannot call t.Parallel.
func ConfigHome(t *testing.T) string {
	t.Helper()
	directory := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", directory)
	return directory
}
