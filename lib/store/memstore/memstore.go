// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package memstore is the in-process repository backend. Records live
// in memory for the lifetime of the Store and are lost on exit.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/store"
)

// Store holds users and tasks. Construct one per process, or one per
// test.
type Store struct {
	users *Users
	tasks *Tasks
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users: &Users{
			byID:    make(map[string]schema.User),
			byEmail: make(map[string]string),
		},
		tasks: &Tasks{
			byID: make(map[string]*taskEntry),
		},
	}
}

// Users returns the user repository.
func (s *Store) Users() *Users { return s.users }

// Tasks returns the task repository.
func (s *Store) Tasks() *Tasks { return s.tasks }

var (
	_ store.UserRepository = (*Users)(nil)
	_ store.TaskRepository = (*Tasks)(nil)
)

// Users implements store.UserRepository.
type Users struct {
	mu      sync.RWMutex
	byID    map[string]schema.User
	byEmail map[string]string
}

// Insert adds user unless the email or ID is taken.
func (u *Users) Insert(ctx context.Context, user schema.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.byEmail[user.Email]; exists {
		return store.ErrDuplicateEmail
	}
	if _, exists := u.byID[user.ID]; exists {
		return fmt.Errorf("%w: user %s", store.ErrDuplicateID, user.ID)
	}
	user.PasswordHash = slices.Clone(user.PasswordHash)
	u.byID[user.ID] = user
	u.byEmail[user.Email] = user.ID
	return nil
}

// FindByEmail returns the user registered under email, matched
// exactly.
func (u *Users) FindByEmail(ctx context.Context, email string) (schema.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	id, ok := u.byEmail[email]
	if !ok {
		return schema.User{}, store.ErrNotFound
	}
	return u.byID[id], nil
}

// FindByID returns the user with the given ID.
func (u *Users) FindByID(ctx context.Context, id string) (schema.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	user, ok := u.byID[id]
	if !ok {
		return schema.User{}, store.ErrNotFound
	}
	return user, nil
}

// Tasks implements store.TaskRepository.
type Tasks struct {
	mu       sync.RWMutex
	byID     map[string]*taskEntry
	sequence uint64
}

// taskEntry pairs a task with its insertion sequence number, which
// breaks CreatedAt ties in listings.
type taskEntry struct {
	task     schema.Task
	sequence uint64
}

// List returns the owner's tasks newest first.
func (t *Tasks) List(ctx context.Context, ownerID string, options store.ListOptions) ([]schema.Task, error) {
	t.mu.RLock()
	entries := make([]*taskEntry, 0)
	for _, entry := range t.byID {
		if entry.task.OwnerID == ownerID {
			entries = append(entries, entry)
		}
	}
	t.mu.RUnlock()

	slices.SortFunc(entries, func(a, b *taskEntry) int {
		if c := b.task.CreatedAt.Compare(a.task.CreatedAt); c != 0 {
			return c
		}
		if a.sequence > b.sequence {
			return -1
		}
		return 1
	})

	if options.Skip > 0 {
		if options.Skip >= len(entries) {
			return []schema.Task{}, nil
		}
		entries = entries[options.Skip:]
	}
	if options.Limit > 0 && options.Limit < len(entries) {
		entries = entries[:options.Limit]
	}

	tasks := make([]schema.Task, len(entries))
	for index, entry := range entries {
		tasks[index] = entry.task
	}
	return tasks, nil
}

// Get returns the task if ownerID owns it.
func (t *Tasks) Get(ctx context.Context, ownerID, taskID string) (schema.Task, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.owned(ownerID, taskID)
	if !ok {
		return schema.Task{}, store.ErrNotFound
	}
	return entry.task, nil
}

// Insert stores a new task.
func (t *Tasks) Insert(ctx context.Context, task schema.Task) error {
	if task.OwnerID == "" {
		return fmt.Errorf("memstore: task %s has no owner", task.ID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.byID[task.ID]; exists {
		return fmt.Errorf("%w: task %s", store.ErrDuplicateID, task.ID)
	}
	t.sequence++
	t.byID[task.ID] = &taskEntry{task: task, sequence: t.sequence}
	return nil
}

// Update applies mutate to the task under the write lock.
func (t *Tasks) Update(ctx context.Context, ownerID, taskID string, mutate func(*schema.Task) error) (schema.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.owned(ownerID, taskID)
	if !ok {
		return schema.Task{}, store.ErrNotFound
	}

	updated := entry.task
	if err := mutate(&updated); err != nil {
		return schema.Task{}, err
	}
	updated.ID = entry.task.ID
	updated.OwnerID = entry.task.OwnerID
	entry.task = updated
	return updated, nil
}

// Delete removes the task and returns its last state.
func (t *Tasks) Delete(ctx context.Context, ownerID, taskID string) (schema.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.owned(ownerID, taskID)
	if !ok {
		return schema.Task{}, store.ErrNotFound
	}
	delete(t.byID, taskID)
	return entry.task, nil
}

// owned looks up a task by ID and owner. Callers hold t.mu.
func (t *Tasks) owned(ownerID, taskID string) (*taskEntry, bool) {
	entry, ok := t.byID[taskID]
	if !ok || entry.task.OwnerID != ownerID {
		return nil, false
	}
	return entry, true
}
