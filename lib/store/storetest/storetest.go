// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package storetest is a conformance suite for store backends. A
// backend's test calls [Run] with a factory returning fresh, empty
// repositories.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/store"
)

// Factory returns empty repositories for one subtest.
type Factory func(t *testing.T) (store.UserRepository, store.TaskRepository)

var epoch = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

// Run executes every conformance check against the backend.
func Run(t *testing.T, factory Factory) {
	t.Run("user_insert_and_find", func(t *testing.T) { testUserInsertAndFind(t, factory) })
	t.Run("user_duplicate_email", func(t *testing.T) { testUserDuplicateEmail(t, factory) })
	t.Run("user_email_case_sensitive", func(t *testing.T) { testUserEmailCaseSensitive(t, factory) })
	t.Run("user_concurrent_registration", func(t *testing.T) { testUserConcurrentRegistration(t, factory) })
	t.Run("task_insert_and_get", func(t *testing.T) { testTaskInsertAndGet(t, factory) })
	t.Run("task_owner_scoping", func(t *testing.T) { testTaskOwnerScoping(t, factory) })
	t.Run("task_list_order", func(t *testing.T) { testTaskListOrder(t, factory) })
	t.Run("task_list_paging", func(t *testing.T) { testTaskListPaging(t, factory) })
	t.Run("task_update", func(t *testing.T) { testTaskUpdate(t, factory) })
	t.Run("task_update_error_aborts", func(t *testing.T) { testTaskUpdateErrorAborts(t, factory) })
	t.Run("task_delete", func(t *testing.T) { testTaskDelete(t, factory) })
	t.Run("task_concurrent_toggle", func(t *testing.T) { testTaskConcurrentToggle(t, factory) })
}

func newUser(id, email string) schema.User {
	return schema.User{
		ID:           id,
		Email:        email,
		PasswordHash: []byte("$2a$04$hash-for-" + id),
		CreatedAt:    epoch,
		UpdatedAt:    epoch,
	}
}

func newTask(id, ownerID string, createdAt time.Time) schema.Task {
	return schema.Task{
		ID:          id,
		Title:       "task " + id,
		Description: "description of " + id,
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func mustInsertTask(t *testing.T, tasks store.TaskRepository, task schema.Task) {
	t.Helper()
	if err := tasks.Insert(context.Background(), task); err != nil {
		t.Fatalf("Insert(%s): %v", task.ID, err)
	}
}

func assertTaskEqual(t *testing.T, got, want schema.Task) {
	t.Helper()
	if got.ID != want.ID || got.Title != want.Title || got.Description != want.Description ||
		got.Completed != want.Completed || got.OwnerID != want.OwnerID ||
		!got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("task mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func testUserInsertAndFind(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)

	user := newUser("u1", "ada@example.com")
	if err := users.Insert(ctx, user); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	byEmail, err := users.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.ID != "u1" || string(byEmail.PasswordHash) != string(user.PasswordHash) {
		t.Errorf("FindByEmail = %+v, want %+v", byEmail, user)
	}
	if !byEmail.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v", byEmail.CreatedAt, epoch)
	}

	byID, err := users.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Email != "ada@example.com" {
		t.Errorf("FindByID email = %q", byID.Email)
	}

	if _, err := users.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindByEmail(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := users.FindByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindByID(unknown) error = %v, want ErrNotFound", err)
	}
}

func testUserDuplicateEmail(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)

	if err := users.Insert(ctx, newUser("u1", "ada@example.com")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := users.Insert(ctx, newUser("u2", "ada@example.com"))
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("second Insert error = %v, want ErrDuplicateEmail", err)
	}
	if _, err := users.FindByID(ctx, "u2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rejected user was stored: FindByID error = %v", err)
	}
}

func testUserEmailCaseSensitive(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)

	if err := users.Insert(ctx, newUser("u1", "ada@example.com")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := users.Insert(ctx, newUser("u2", "Ada@example.com")); err != nil {
		t.Fatalf("Insert with different case: %v", err)
	}
	found, err := users.FindByEmail(ctx, "Ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.ID != "u2" {
		t.Errorf("FindByEmail(Ada@) = %s, want u2", found.ID)
	}
}

func testUserConcurrentRegistration(t *testing.T, factory Factory) {
	ctx := context.Background()
	users, _ := factory(t)

	const attempts = 16
	var (
		waitGroup sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for index := range attempts {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			err := users.Insert(ctx, newUser(fmt.Sprintf("u%d", index), "race@example.com"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if !errors.Is(err, store.ErrDuplicateEmail) {
				failures = append(failures, err)
			}
		}()
	}
	waitGroup.Wait()

	for _, err := range failures {
		t.Errorf("unexpected Insert error: %v", err)
	}
	if succeeded != 1 {
		t.Fatalf("%d concurrent inserts of one email succeeded, want exactly 1", succeeded)
	}
}

func testTaskInsertAndGet(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	task := newTask("t1", "owner-a", epoch)
	mustInsertTask(t, tasks, task)

	got, err := tasks.Get(ctx, "owner-a", "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertTaskEqual(t, got, task)

	if err := tasks.Insert(ctx, task); !errors.Is(err, store.ErrDuplicateID) {
		t.Errorf("duplicate Insert error = %v, want ErrDuplicateID", err)
	}
	if _, err := tasks.Get(ctx, "owner-a", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func testTaskOwnerScoping(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	task := newTask("t1", "owner-a", epoch)
	mustInsertTask(t, tasks, task)

	if _, err := tasks.Get(ctx, "owner-b", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-owner Get error = %v, want ErrNotFound", err)
	}
	_, err := tasks.Update(ctx, "owner-b", "t1", func(task *schema.Task) error {
		task.Title = "hijacked"
		return nil
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-owner Update error = %v, want ErrNotFound", err)
	}
	if _, err := tasks.Delete(ctx, "owner-b", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-owner Delete error = %v, want ErrNotFound", err)
	}
	listed, err := tasks.List(ctx, "owner-b", store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("owner-b sees %d tasks, want 0", len(listed))
	}

	got, err := tasks.Get(ctx, "owner-a", "t1")
	if err != nil {
		t.Fatalf("owner Get after cross-owner attempts: %v", err)
	}
	assertTaskEqual(t, got, task)
}

func testTaskListOrder(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	mustInsertTask(t, tasks, newTask("oldest", "owner", epoch))
	mustInsertTask(t, tasks, newTask("newest", "owner", epoch.Add(2*time.Minute)))
	mustInsertTask(t, tasks, newTask("tie-first", "owner", epoch.Add(time.Minute)))
	mustInsertTask(t, tasks, newTask("tie-second", "owner", epoch.Add(time.Minute)))
	mustInsertTask(t, tasks, newTask("other", "someone-else", epoch.Add(time.Hour)))

	listed, err := tasks.List(ctx, "owner", store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"newest", "tie-second", "tie-first", "oldest"}
	if len(listed) != len(want) {
		t.Fatalf("List returned %d tasks, want %d", len(listed), len(want))
	}
	for index, id := range want {
		if listed[index].ID != id {
			t.Errorf("List[%d] = %s, want %s", index, listed[index].ID, id)
		}
	}
}

func testTaskListPaging(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	for index := range 5 {
		mustInsertTask(t, tasks, newTask(fmt.Sprintf("t%d", index), "owner", epoch.Add(time.Duration(index)*time.Second)))
	}

	page, err := tasks.List(ctx, "owner", store.ListOptions{Skip: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].ID != "t3" || page[1].ID != "t2" {
		t.Errorf("page = %v, want [t3 t2]", taskIDs(page))
	}

	past, err := tasks.List(ctx, "owner", store.ListOptions{Skip: 10})
	if err != nil {
		t.Fatalf("List past end: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("List past end = %v, want empty", taskIDs(past))
	}
}

func taskIDs(tasks []schema.Task) []string {
	ids := make([]string, len(tasks))
	for index, task := range tasks {
		ids[index] = task.ID
	}
	return ids
}

func testTaskUpdate(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	mustInsertTask(t, tasks, newTask("t1", "owner", epoch))

	later := epoch.Add(time.Minute)
	updated, err := tasks.Update(ctx, "owner", "t1", func(task *schema.Task) error {
		task.Completed = true
		task.Title = "renamed"
		task.UpdatedAt = later
		task.ID = "ignored"
		task.OwnerID = "ignored"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != "t1" || updated.OwnerID != "owner" {
		t.Errorf("Update changed identity: %+v", updated)
	}

	got, err := tasks.Get(ctx, "owner", "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertTaskEqual(t, got, updated)
	if !got.Completed || got.Title != "renamed" || !got.UpdatedAt.Equal(later) {
		t.Errorf("stored task = %+v", got)
	}
	if !got.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt changed to %v", got.CreatedAt)
	}
}

func testTaskUpdateErrorAborts(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	original := newTask("t1", "owner", epoch)
	mustInsertTask(t, tasks, original)

	sentinel := errors.New("rejected")
	_, err := tasks.Update(ctx, "owner", "t1", func(task *schema.Task) error {
		task.Title = "should not persist"
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Update error = %v, want sentinel", err)
	}

	got, err := tasks.Get(ctx, "owner", "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertTaskEqual(t, got, original)
}

func testTaskDelete(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	original := newTask("t1", "owner", epoch)
	original.Completed = true
	mustInsertTask(t, tasks, original)

	deleted, err := tasks.Delete(ctx, "owner", "t1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertTaskEqual(t, deleted, original)

	if _, err := tasks.Get(ctx, "owner", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if _, err := tasks.Delete(ctx, "owner", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func testTaskConcurrentToggle(t *testing.T, factory Factory) {
	ctx := context.Background()
	_, tasks := factory(t)

	mustInsertTask(t, tasks, newTask("t1", "owner", epoch))

	// An even number of atomic toggles must land back on false.
	const toggles = 20
	var waitGroup sync.WaitGroup
	errs := make(chan error, toggles)
	for range toggles {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, err := tasks.Update(ctx, "owner", "t1", func(task *schema.Task) error {
				task.Completed = !task.Completed
				return nil
			})
			errs <- err
		}()
	}
	waitGroup.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	got, err := tasks.Get(ctx, "owner", "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Completed {
		t.Error("after an even number of toggles Completed = true, want false")
	}
}
