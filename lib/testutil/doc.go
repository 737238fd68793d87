// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for taskboard
// packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests never block forever on a channel. They are the only
// place in the test suite that uses wall-clock timeouts.
//
// [UniqueID] and [UniqueEmail] return identifiers that never repeat
// within a test binary.
//
// [ConfigHome] points XDG_CONFIG_HOME at a fresh temporary directory
// for the duration of a test.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
