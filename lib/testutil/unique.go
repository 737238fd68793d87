// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns "prefix-N" where N increases monotonically across
// the test binary.
//
//	title := testutil.UniqueID("task") // "task-1", "task-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}

// UniqueEmail returns an address whose local part is UniqueID(prefix).
func UniqueEmail(prefix string) string {
	return UniqueID(prefix) + "@example.com"
}
