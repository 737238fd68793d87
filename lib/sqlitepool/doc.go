// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens a fixed-size pool of SQLite connections for
// the taskboard's durable storage backend.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool and applies one set
// of pragmas to every connection:
//
//   - journal_mode=WAL so listings never wait behind a write.
//   - synchronous=NORMAL. Commits survive a process crash; an OS crash
//     may lose the most recent transactions.
//   - busy_timeout=5000 so concurrent writers queue instead of failing
//     with SQLITE_BUSY.
//   - foreign_keys=OFF. Owner scoping is enforced by the queries that
//     read and write tasks, not by the schema.
//   - temp_store=MEMORY.
//
// Callers [Pool.Take] a connection, run statements, and [Pool.Put] it
// back, or use [Pool.With] which does both. Connections are not safe
// for concurrent use.
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:      "/var/lib/taskboard/taskboard.db",
//	    Logger:    logger,
//	    OnConnect: createSchema,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
package sqlitepool
