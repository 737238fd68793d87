// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies command errors. Each category has its own
// exit code so scripts can branch without parsing messages.
type ErrorCategory string

const (
	// CategoryValidation: bad arguments or flags. Exit code 2.
	CategoryValidation ErrorCategory = "validation"

	// CategoryAuth: not logged in, or the session expired. Exit code 3.
	CategoryAuth ErrorCategory = "auth"

	// CategoryNotFound: the task does not exist or is not yours. Exit code 4.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient: the server could not be reached. Exit code 5.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else. Exit code 1.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. It wraps the
// underlying error so errors.Is and errors.As still see the chain.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// ExitCode maps the category to a process exit code.
func (e *ToolError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryAuth:
		return 3
	case CategoryNotFound:
		return 4
	case CategoryTransient:
		return 5
	default:
		return 1
	}
}

func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

func Auth(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryAuth, Err: fmt.Errorf(format, args...)}
}

func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// ExitCode returns the exit code for err: 0 for nil, the code of any
// ExitCode() implementation in the chain, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
