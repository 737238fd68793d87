// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the session-token signing secret in memory that
// the garbage collector never sees.
//
// A Buffer is backed by an anonymous mmap region that is locked into
// RAM (no swap) and excluded from core dumps. Close zeroes, unlocks,
// and unmaps it. The server reads the secret once from its environment
// variable with FromEnv, which also scrubs the variable from the
// process environment so child processes and /proc/self/environ
// readers cannot recover it.
package secret
