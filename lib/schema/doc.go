// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines Taskboard's records and HTTP wire types: the
// [User] and [Task] records held by repositories, the request and
// response bodies exchanged by lib/taskapi and lib/taskclient, and the
// field limits every layer validates against.
//
// [ValidationError] is the single error type for rejected input. It
// names the offending field so handlers can report it and clients can
// highlight it.
//
// This package depends on no other Taskboard packages.
package schema
