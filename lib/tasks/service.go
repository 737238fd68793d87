// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tasks implements owner-scoped task operations on top of a
// [store.TaskRepository]. Every method takes the authenticated owner's
// ID; a task owned by someone else is indistinguishable from one that
// does not exist.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/store"
)

// Listing bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page selects a window of a listing. A zero Limit means DefaultLimit.
type Page struct {
	Skip  int
	Limit int
}

// Validate rejects negative offsets and limits above MaxLimit.
func (p Page) Validate() error {
	if p.Skip < 0 {
		return &schema.ValidationError{Field: "skip", Message: "skip must not be negative"}
	}
	if p.Limit < 0 || p.Limit > MaxLimit {
		return &schema.ValidationError{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", MaxLimit)}
	}
	return nil
}

// Config holds the dependencies of a [Service].
type Config struct {
	Tasks  store.TaskRepository
	Clock  clock.Clock
	Logger *slog.Logger
}

// Service is safe for concurrent use.
type Service struct {
	tasks  store.TaskRepository
	clock  clock.Clock
	logger *slog.Logger
}

// NewService returns a Service over cfg.Tasks.
func NewService(cfg Config) (*Service, error) {
	if cfg.Tasks == nil {
		return nil, fmt.Errorf("tasks: Tasks is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{tasks: cfg.Tasks, clock: clk, logger: logger}, nil
}

// List returns the owner's tasks newest first.
func (s *Service) List(ctx context.Context, ownerID string, page Page) ([]schema.Task, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	limit := page.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	return s.tasks.List(ctx, ownerID, store.ListOptions{Skip: page.Skip, Limit: limit})
}

// Get returns one task, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, ownerID, taskID string) (schema.Task, error) {
	return s.tasks.Get(ctx, ownerID, taskID)
}

// Create validates request and stores a new incomplete task.
func (s *Service) Create(ctx context.Context, ownerID string, request schema.NewTask) (schema.Task, error) {
	normalized, err := request.Normalize()
	if err != nil {
		return schema.Task{}, err
	}

	now := s.now()
	task := schema.Task{
		ID:          uuid.NewString(),
		Title:       normalized.Title,
		Description: normalized.Description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return schema.Task{}, err
	}
	s.logger.Debug("task created", "task_id", task.ID, "owner_id", ownerID)
	return task, nil
}

// Update applies the supplied fields of patch. The patch is validated
// before storage is touched.
func (s *Service) Update(ctx context.Context, ownerID, taskID string, patch schema.TaskPatch) (schema.Task, error) {
	normalized, err := patch.Normalize()
	if err != nil {
		return schema.Task{}, err
	}
	return s.mutate(ctx, ownerID, taskID, normalized.Apply)
}

// Toggle flips the completion flag.
func (s *Service) Toggle(ctx context.Context, ownerID, taskID string) (schema.Task, error) {
	return s.mutate(ctx, ownerID, taskID, func(task *schema.Task) {
		task.Completed = !task.Completed
	})
}

// Delete removes the task and returns it as it was.
func (s *Service) Delete(ctx context.Context, ownerID, taskID string) (schema.Task, error) {
	task, err := s.tasks.Delete(ctx, ownerID, taskID)
	if err != nil {
		return schema.Task{}, err
	}
	s.logger.Debug("task deleted", "task_id", taskID, "owner_id", ownerID)
	return task, nil
}

func (s *Service) mutate(ctx context.Context, ownerID, taskID string, change func(*schema.Task)) (schema.Task, error) {
	now := s.now()
	return s.tasks.Update(ctx, ownerID, taskID, func(task *schema.Task) error {
		change(task)
		task.UpdatedAt = nextUpdatedAt(task.UpdatedAt, now)
		return nil
	})
}

// nextUpdatedAt returns now, or previous plus one microsecond when the
// clock has not moved past previous.
func nextUpdatedAt(previous, now time.Time) time.Time {
	if now.After(previous) {
		return now
	}
	return previous.Add(time.Microsecond)
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}
