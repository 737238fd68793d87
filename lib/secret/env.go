// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// ErrNotSet is returned by FromEnv when the variable is unset or blank.
var ErrNotSet = errors.New("secret: environment variable not set")

// FromEnv moves the value of the named environment variable into a
// Buffer and unsets the variable. Surrounding whitespace is trimmed.
func FromEnv(name string) (*Buffer, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotSet, name)
	}
	if err := os.Unsetenv(name); err != nil {
		return nil, fmt.Errorf("secret: unsetting %s: %w", name, err)
	}

	data := []byte(value)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotSet, name)
	}

	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
