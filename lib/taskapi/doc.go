// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskapi is the taskboard HTTP API.
//
// Auth routes live under /api/auth and task routes under /api/tasks.
// Every task route requires an "Authorization: Bearer <token>" header
// carrying a session token from register or login. Request and
// response bodies are JSON; failures are {"error": "<message>"} with
// a status from this mapping:
//
//   - 400: invalid input, malformed body, email already registered
//   - 401: missing, malformed, invalid, or expired token; bad login
//   - 404: unknown user, or a task that is absent or owned by another
//     user (the two cases are indistinguishable)
//   - 413: request body over 64 KiB
//   - 500: signing secret not configured, or any unexpected failure
//
// The handler also serves GET /healthz and Prometheus metrics at
// GET /metrics. Responses are gzip-compressed when the client accepts
// it.
package taskapi
