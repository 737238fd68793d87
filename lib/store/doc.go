// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package store defines the repository interfaces behind Taskboard's
// user directory and task store.
//
// Handlers and services never touch storage directly; they hold a
// [UserRepository] and a [TaskRepository]. Two backends implement
// both:
//
//   - memstore: process-local maps guarded by a mutex. Each Store is
//     an explicit object, so tests get a fresh one and nothing leaks
//     between them.
//   - sqlstore: SQLite through lib/sqlitepool, for deployments that
//     need tasks to survive a restart.
//
// The conformance suite in storetest runs the same behavioral checks
// against every backend.
//
// # Ownership
//
// Every task operation takes the owner ID alongside the task ID and
// matches on both. A task owned by someone else is indistinguishable
// from one that does not exist: both yield [ErrNotFound].
//
// # Atomicity
//
// [UserRepository.Insert] checks email uniqueness and inserts in one
// step. [TaskRepository.Update] runs its mutate callback inside the
// backend's per-record critical section, so read-modify-write cycles
// such as toggling never interleave; concurrent writers to one task
// are last-write-wins.
package store
