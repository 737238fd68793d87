// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service holds the process scaffolding shared by taskboard
// binaries: a TCP HTTP server with graceful shutdown and the standard
// structured logger.
//
// Binaries compose these pieces in their own main function. The
// package provides building blocks, not a runtime.
package service
