// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clientstate is the client-side model of a Taskboard session:
// who is logged in, their tasks, whether a load is running, and the
// last error to show. A [Store] turns user actions into API calls
// through a [Remote] and reconciles the results into its [State].
//
// Remote calls run without the store lock held, so a slow request does
// not block [Store.Snapshot]. Each task admits one mutation at a time;
// a second one fails fast with [ErrBusy].
package clientstate

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/taskclient"
)

// ErrBusy is returned when a mutation targets a task that already has
// a request in flight. No request is sent.
var ErrBusy = errors.New("clientstate: task has a request in flight")

// Remote is the subset of *taskclient.Client the store drives.
type Remote interface {
	Session() (taskclient.Session, bool)
	Register(ctx context.Context, email, password string) (schema.AuthResponse, error)
	Login(ctx context.Context, email, password string) (schema.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (schema.UserInfo, error)
	ListTasks(ctx context.Context, options taskclient.ListOptions) ([]schema.Task, error)
	CreateTask(ctx context.Context, request schema.NewTask) (schema.Task, error)
	UpdateTask(ctx context.Context, id string, patch schema.TaskPatch) (schema.Task, error)
	ToggleTask(ctx context.Context, id string) (schema.Task, error)
	DeleteTask(ctx context.Context, id string) (schema.Task, error)
}

// User is the logged-in account as the client knows it.
type User struct {
	ID    string
	Email string
	Name  string
}

// State is a point-in-time view of the store.
type State struct {
	User     *User
	Tasks    []schema.Task
	Loading  bool
	Error    string
	LoggedIn bool
}

// Store is safe for concurrent use.
type Store struct {
	remote Remote
	logger *slog.Logger

	mu    sync.Mutex
	state State
	// generation advances on every login and reset. A response that
	// started under an older generation is dropped.
	generation uint64
	inFlight   map[string]struct{}
}

// New returns a store in the loading state. Call [Store.Load] to
// resolve it.
func New(remote Remote, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		remote:   remote,
		logger:   logger,
		state:    State{Loading: true, Tasks: []schema.Task{}},
		inFlight: make(map[string]struct{}),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state
	snapshot.Tasks = slices.Clone(s.state.Tasks)
	if s.state.User != nil {
		user := *s.state.User
		snapshot.User = &user
	}
	return snapshot
}

// Busy reports whether id has a mutation in flight.
func (s *Store) Busy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[id]
	return busy
}

// Load restores a previous session: with a stored token it fetches the
// profile and then the task list. Without one, or on failure, the store
// ends logged out, unless a login or logout completed in the meantime.
// Loading is false when Load returns.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	generation := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state.Loading = false
		s.mu.Unlock()
	}()

	if _, ok := s.remote.Session(); !ok {
		s.mu.Lock()
		if s.generation == generation {
			s.resetLocked()
		}
		s.mu.Unlock()
		return nil
	}

	if err := s.loadUser(ctx, generation); err != nil {
		s.mu.Lock()
		superseded := s.generation != generation
		if !superseded {
			s.resetLocked()
			if !taskclient.IsUnauthorized(err) {
				s.state.Error = "Failed to load user data"
			}
		}
		s.mu.Unlock()
		if superseded {
			// A login or logout finished while the restore was in flight
			// and owns the state now.
			s.logger.Debug("stale session restore failed", "error", err)
			return nil
		}
		s.logger.Info("restoring session failed", "error", err)
		return err
	}
	return nil
}

// loadUser fetches the profile and task list and installs both if
// nothing has reset the store in the meantime.
func (s *Store) loadUser(ctx context.Context, generation uint64) error {
	info, err := s.remote.Me(ctx)
	if err != nil {
		return err
	}
	list, err := s.remote.ListTasks(ctx, taskclient.ListOptions{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return nil
	}
	s.state.User = &User{ID: info.ID, Email: info.Email, Name: info.Name}
	s.state.Tasks = list
	s.state.LoggedIn = true
	return nil
}

// Login authenticates and then loads the user's data.
func (s *Store) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, s.remote.Login, email, password, "Login failed")
}

// Register creates the account and leaves the store logged in as it.
func (s *Store) Register(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, s.remote.Register, email, password, "Registration failed")
}

type authenticateFunc func(ctx context.Context, email, password string) (schema.AuthResponse, error)

func (s *Store) authenticate(ctx context.Context, call authenticateFunc, email, password, fallback string) error {
	s.clearError()
	response, err := call(ctx, email, password)
	if err != nil {
		return s.fail(err, fallback)
	}

	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.state.User = &User{ID: response.User.ID, Email: response.User.Email}
	s.state.Tasks = []schema.Task{}
	s.state.LoggedIn = true
	s.mu.Unlock()

	if err := s.loadUser(ctx, generation); err != nil {
		return s.fail(err, "Failed to load user data")
	}
	return nil
}

// Logout notifies the server, best effort, and clears local state.
func (s *Store) Logout(ctx context.Context) {
	if err := s.remote.Logout(ctx); err != nil {
		s.logger.Warn("clearing stored session failed", "error", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.state.Error = ""
}

// AddTask creates a task and puts it at the head of the list, where the
// server's newest-first ordering would place it.
func (s *Store) AddTask(ctx context.Context, request schema.NewTask) (schema.Task, error) {
	s.clearError()
	generation := s.currentGeneration()
	task, err := s.remote.CreateTask(ctx, request)
	if err != nil {
		return schema.Task{}, s.fail(err, "Failed to create task")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == generation {
		s.state.Tasks = slices.Insert(s.state.Tasks, 0, task)
	}
	return task, nil
}

// ToggleTask flips the task's completed flag.
func (s *Store) ToggleTask(ctx context.Context, id string) (schema.Task, error) {
	return s.mutate(ctx, id, "Failed to update task", func(ctx context.Context) (schema.Task, error) {
		return s.remote.ToggleTask(ctx, id)
	}, s.replaceLocked)
}

// UpdateTask applies patch to the task.
func (s *Store) UpdateTask(ctx context.Context, id string, patch schema.TaskPatch) (schema.Task, error) {
	return s.mutate(ctx, id, "Failed to update task", func(ctx context.Context) (schema.Task, error) {
		return s.remote.UpdateTask(ctx, id, patch)
	}, s.replaceLocked)
}

// DeleteTask removes the task and returns it as it was.
func (s *Store) DeleteTask(ctx context.Context, id string) (schema.Task, error) {
	return s.mutate(ctx, id, "Failed to delete task", func(ctx context.Context) (schema.Task, error) {
		return s.remote.DeleteTask(ctx, id)
	}, s.removeLocked)
}

// mutate runs one guarded request against task id and hands the result
// to reconcile under the lock.
func (s *Store) mutate(
	ctx context.Context,
	id string,
	fallback string,
	call func(context.Context) (schema.Task, error),
	reconcile func(schema.Task),
) (schema.Task, error) {
	s.mu.Lock()
	if _, busy := s.inFlight[id]; busy {
		s.mu.Unlock()
		return schema.Task{}, ErrBusy
	}
	s.inFlight[id] = struct{}{}
	s.state.Error = ""
	generation := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, id)
		s.mu.Unlock()
	}()

	task, err := call(ctx)
	if err != nil {
		return schema.Task{}, s.fail(err, fallback)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == generation {
		reconcile(task)
	}
	return task, nil
}

func (s *Store) replaceLocked(task schema.Task) {
	for i := range s.state.Tasks {
		if s.state.Tasks[i].ID == task.ID {
			s.state.Tasks[i] = task
			return
		}
	}
}

func (s *Store) removeLocked(task schema.Task) {
	s.state.Tasks = slices.DeleteFunc(s.state.Tasks, func(existing schema.Task) bool {
		return existing.ID == task.ID
	})
}

// fail records err as the visible error and returns it. A 401 also
// logs the store out.
func (s *Store) fail(err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if taskclient.IsUnauthorized(err) {
		s.resetLocked()
	}
	s.state.Error = errorMessage(err, fallback)
	return err
}

func errorMessage(err error, fallback string) string {
	var apiError *taskclient.APIError
	if errors.As(err, &apiError) && apiError.Message != "" {
		return apiError.Message
	}
	return fallback
}

func (s *Store) clearError() {
	s.mu.Lock()
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *Store) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Store) resetLocked() {
	s.generation++
	s.state.User = nil
	s.state.Tasks = []schema.Task{}
	s.state.LoggedIn = false
}
