// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"time"
)

// Fataler is the part of testing.TB the channel helpers need.
type Fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive returns the next value from ch, failing the test if
// none arrives within timeout or ch is closed first. waitingFor names
// the event in the failure message.
//
//	err := testutil.RequireReceive(t, serveDone, 5*time.Second, "server shutdown")
func RequireReceive[T any](t Fataler, ch <-chan T, timeout time.Duration, waitingFor string) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("%s: channel closed without a value", waitingFor)
		}
		return value
	case <-timer.C:
		t.Fatalf("%s: nothing received after %v", waitingFor, timeout)
	}
	var zero T
	return zero
}

// RequireClosed fails the test unless ch is closed (or delivers a
// value) within timeout.
//
//	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
func RequireClosed(t Fataler, ch <-chan struct{}, timeout time.Duration, waitingFor string) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
	case <-timer.C:
		t.Fatalf("%s: channel still open after %v", waitingFor, timeout)
	}
}
