// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlstore is the durable repository backend, a single SQLite
// database opened through lib/sqlitepool.
//
// Timestamps are stored as Unix nanoseconds in UTC. Task listing order
// uses the seq column, an AUTOINCREMENT counter, as the insertion
// tiebreaker.
package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/sqlitepool"
	"github.com/bureau-foundation/taskboard/lib/store"
)

const schemaScript = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash BLOB NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	owner_id    TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS tasks_owner_created
	ON tasks (owner_id, created_at DESC, seq DESC);
`

const taskColumns = `id, owner_id, title, description, completed, created_at, updated_at`

// Config holds the parameters for [Open].
type Config struct {
	Path     string
	PoolSize int
	Logger   *slog.Logger
}

// Store owns the connection pool shared by both repositories.
type Store struct {
	pool  *sqlitepool.Pool
	users *Users
	tasks *Tasks
}

var (
	_ store.UserRepository = (*Users)(nil)
	_ store.TaskRepository = (*Tasks)(nil)
)

// Open opens or creates the database at cfg.Path and ensures the
// schema exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Logger:   cfg.Logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schemaScript, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: %w", err)
	}

	// Take one connection now so a broken database fails at startup
	// rather than on the first request.
	if err := pool.With(ctx, func(*sqlite.Conn) error { return nil }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlstore: initializing %s: %w", cfg.Path, err)
	}

	return &Store{
		pool:  pool,
		users: &Users{pool: pool},
		tasks: &Tasks{pool: pool},
	}, nil
}

// Users returns the user repository.
func (s *Store) Users() *Users { return s.users }

// Tasks returns the task repository.
func (s *Store) Tasks() *Tasks { return s.tasks }

// Close closes the pool.
func (s *Store) Close() error { return s.pool.Close() }

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	code := sqlite.ErrCode(err)
	return code == sqlite.ResultConstraintUnique || code == sqlite.ResultConstraintPrimaryKey
}

// Users implements store.UserRepository.
type Users struct {
	pool *sqlitepool.Pool
}

func (u *Users) Insert(ctx context.Context, user schema.User) error {
	return u.pool.With(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				user.ID, user.Email, user.PasswordHash,
				toNanos(user.CreatedAt), toNanos(user.UpdatedAt),
			}})
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return fmt.Errorf("sqlstore: inserting user: %w", err)
		}
		// Distinguish which constraint fired.
		if _, findErr := findUser(conn, "email", user.Email); findErr == nil {
			return fmt.Errorf("%w: %s", store.ErrDuplicateEmail, user.Email)
		}
		return fmt.Errorf("%w: user %s", store.ErrDuplicateID, user.ID)
	})
}

func (u *Users) FindByEmail(ctx context.Context, email string) (schema.User, error) {
	var user schema.User
	err := u.pool.With(ctx, func(conn *sqlite.Conn) error {
		var err error
		user, err = findUser(conn, "email", email)
		return err
	})
	return user, err
}

func (u *Users) FindByID(ctx context.Context, id string) (schema.User, error) {
	var user schema.User
	err := u.pool.With(ctx, func(conn *sqlite.Conn) error {
		var err error
		user, err = findUser(conn, "id", id)
		return err
	})
	return user, err
}

// findUser looks a user up by one of the two unique columns. column is
// never caller-supplied.
func findUser(conn *sqlite.Conn, column, value string) (schema.User, error) {
	var (
		user  schema.User
		found bool
	)
	err := sqlitex.Execute(conn,
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE `+column+` = ?`,
		&sqlitex.ExecOptions{
			Args: []any{value},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				hash := make([]byte, stmt.ColumnLen(2))
				stmt.ColumnBytes(2, hash)
				user = schema.User{
					ID:           stmt.ColumnText(0),
					Email:        stmt.ColumnText(1),
					PasswordHash: hash,
					CreatedAt:    fromNanos(stmt.ColumnInt64(3)),
					UpdatedAt:    fromNanos(stmt.ColumnInt64(4)),
				}
				return nil
			},
		})
	if err != nil {
		return schema.User{}, fmt.Errorf("sqlstore: finding user by %s: %w", column, err)
	}
	if !found {
		return schema.User{}, store.ErrNotFound
	}
	return user, nil
}

// Tasks implements store.TaskRepository.
type Tasks struct {
	pool *sqlitepool.Pool
}

func scanTask(stmt *sqlite.Stmt) schema.Task {
	return schema.Task{
		ID:          stmt.ColumnText(0),
		OwnerID:     stmt.ColumnText(1),
		Title:       stmt.ColumnText(2),
		Description: stmt.ColumnText(3),
		Completed:   stmt.ColumnInt64(4) != 0,
		CreatedAt:   fromNanos(stmt.ColumnInt64(5)),
		UpdatedAt:   fromNanos(stmt.ColumnInt64(6)),
	}
}

func (t *Tasks) List(ctx context.Context, ownerID string, options store.ListOptions) ([]schema.Task, error) {
	limit := int64(-1)
	if options.Limit > 0 {
		limit = int64(options.Limit)
	}
	offset := int64(max(options.Skip, 0))

	tasks := make([]schema.Task, 0)
	err := t.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT `+taskColumns+` FROM tasks WHERE owner_id = ?
			 ORDER BY created_at DESC, seq DESC LIMIT ? OFFSET ?`,
			&sqlitex.ExecOptions{
				Args: []any{ownerID, limit, offset},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					tasks = append(tasks, scanTask(stmt))
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing tasks: %w", err)
	}
	return tasks, nil
}

func (t *Tasks) Get(ctx context.Context, ownerID, taskID string) (schema.Task, error) {
	var task schema.Task
	err := t.pool.With(ctx, func(conn *sqlite.Conn) error {
		var err error
		task, err = getTask(conn, ownerID, taskID)
		return err
	})
	return task, err
}

func getTask(conn *sqlite.Conn, ownerID, taskID string) (schema.Task, error) {
	var (
		task  schema.Task
		found bool
	)
	err := sqlitex.Execute(conn,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{taskID, ownerID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				task = scanTask(stmt)
				return nil
			},
		})
	if err != nil {
		return schema.Task{}, fmt.Errorf("sqlstore: reading task: %w", err)
	}
	if !found {
		return schema.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (t *Tasks) Insert(ctx context.Context, task schema.Task) error {
	return t.pool.With(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				task.ID, task.OwnerID, task.Title, task.Description,
				boolToInt(task.Completed), toNanos(task.CreatedAt), toNanos(task.UpdatedAt),
			}})
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: task %s", store.ErrDuplicateID, task.ID)
		}
		if err != nil {
			return fmt.Errorf("sqlstore: inserting task: %w", err)
		}
		return nil
	})
}

func (t *Tasks) Update(ctx context.Context, ownerID, taskID string, mutate func(*schema.Task) error) (schema.Task, error) {
	var updated schema.Task
	err := t.pool.With(ctx, func(conn *sqlite.Conn) (err error) {
		endTransaction, err := sqlitex.ImmediateTransaction(conn)
		if err != nil {
			return fmt.Errorf("sqlstore: begin transaction: %w", err)
		}
		defer endTransaction(&err)

		task, err := getTask(conn, ownerID, taskID)
		if err != nil {
			return err
		}
		if err := mutate(&task); err != nil {
			return err
		}
		task.ID, task.OwnerID = taskID, ownerID

		err = sqlitex.Execute(conn,
			`UPDATE tasks SET title = ?, description = ?, completed = ?, created_at = ?, updated_at = ?
			 WHERE id = ? AND owner_id = ?`,
			&sqlitex.ExecOptions{Args: []any{
				task.Title, task.Description, boolToInt(task.Completed),
				toNanos(task.CreatedAt), toNanos(task.UpdatedAt),
				taskID, ownerID,
			}})
		if err != nil {
			return fmt.Errorf("sqlstore: updating task: %w", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return schema.Task{}, err
	}
	return updated, nil
}

func (t *Tasks) Delete(ctx context.Context, ownerID, taskID string) (schema.Task, error) {
	var deleted schema.Task
	err := t.pool.With(ctx, func(conn *sqlite.Conn) (err error) {
		endTransaction, err := sqlitex.ImmediateTransaction(conn)
		if err != nil {
			return fmt.Errorf("sqlstore: begin transaction: %w", err)
		}
		defer endTransaction(&err)

		task, err := getTask(conn, ownerID, taskID)
		if err != nil {
			return err
		}
		err = sqlitex.Execute(conn, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`,
			&sqlitex.ExecOptions{Args: []any{taskID, ownerID}})
		if err != nil {
			return fmt.Errorf("sqlstore: deleting task: %w", err)
		}
		deleted = task
		return nil
	})
	if err != nil {
		return schema.Task{}, err
	}
	return deleted, nil
}
