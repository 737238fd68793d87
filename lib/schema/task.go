// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits, in Unicode code points after trimming.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	OwnerID     string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTask is the body of a create request.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TaskPatch is the body of an update request. Nil fields are left
// unchanged.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// DeleteResponse is returned by the delete endpoint. Task is the
// record as it was immediately before removal.
type DeleteResponse struct {
	Message string `json:"message"`
	Task    Task   `json:"task"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// NormalizeTitle trims title and checks it holds 1..200 characters.
func NormalizeTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", &ValidationError{Field: "title", Message: "Title must be a non-empty string"}
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", &ValidationError{Field: "title", Message: "Title must not exceed 200 characters"}
	}
	return trimmed, nil
}

// NormalizeDescription trims description and checks it holds at most
// 1000 characters. An empty description is valid.
func NormalizeDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	if utf8.RuneCountInString(trimmed) > MaxDescriptionLength {
		return "", &ValidationError{Field: "description", Message: "Description must not exceed 1000 characters"}
	}
	return trimmed, nil
}

// Normalize validates a create request and returns its trimmed form.
func (n NewTask) Normalize() (NewTask, error) {
	title, err := NormalizeTitle(n.Title)
	if err != nil {
		return NewTask{}, err
	}
	description, err := NormalizeDescription(n.Description)
	if err != nil {
		return NewTask{}, err
	}
	return NewTask{Title: title, Description: description}, nil
}

// Normalize validates the supplied fields of a patch and returns a
// copy with trimmed values.
func (p TaskPatch) Normalize() (TaskPatch, error) {
	normalized := TaskPatch{Completed: p.Completed}
	if p.Title != nil {
		title, err := NormalizeTitle(*p.Title)
		if err != nil {
			return TaskPatch{}, err
		}
		normalized.Title = &title
	}
	if p.Description != nil {
		description, err := NormalizeDescription(*p.Description)
		if err != nil {
			return TaskPatch{}, err
		}
		normalized.Description = &description
	}
	return normalized, nil
}

// Apply writes the patch's supplied fields onto task.
func (p TaskPatch) Apply(task *Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
}
