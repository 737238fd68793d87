// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"

	"github.com/bureau-foundation/taskboard/lib/schema"
)

var (
	// ErrNotFound is returned when no record matches. For tasks this
	// includes records owned by a different user.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateEmail is returned by UserRepository.Insert when the
	// email is already registered.
	ErrDuplicateEmail = errors.New("store: email already registered")

	// ErrDuplicateID is returned when an insert reuses a record ID.
	ErrDuplicateID = errors.New("store: duplicate ID")
)

// UserRepository stores accounts. Users are never updated or deleted.
type UserRepository interface {
	// Insert adds user, failing with ErrDuplicateEmail if the email
	// is taken. The check and the insert are one atomic step.
	Insert(ctx context.Context, user schema.User) error

	FindByEmail(ctx context.Context, email string) (schema.User, error)
	FindByID(ctx context.Context, id string) (schema.User, error)
}

// ListOptions pages through a task listing. A zero Limit means no
// limit.
type ListOptions struct {
	Skip  int
	Limit int
}

// TaskRepository stores tasks. Every method is scoped to ownerID.
type TaskRepository interface {
	// List returns the owner's tasks newest first by CreatedAt, ties
	// broken by most recent insertion.
	List(ctx context.Context, ownerID string, options ListOptions) ([]schema.Task, error)

	Get(ctx context.Context, ownerID, taskID string) (schema.Task, error)

	// Insert stores a new task. task.OwnerID must be set.
	Insert(ctx context.Context, task schema.Task) error

	// Update loads the task, passes it to mutate, and stores the
	// result atomically. If mutate returns an error nothing is
	// written and that error is returned. ID and OwnerID changes made
	// by mutate are ignored.
	Update(ctx context.Context, ownerID, taskID string, mutate func(*schema.Task) error) (schema.Task, error)

	// Delete removes the task and returns it as it was.
	Delete(ctx context.Context, ownerID, taskID string) (schema.Task, error)
}
