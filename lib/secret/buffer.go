// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer holds one secret (a signing key or a typed password) in an
// anonymous mapping that is locked into RAM and excluded from core
// dumps. Bytes panics after Close. A Buffer formats and logs as a
// redacted placeholder.
type Buffer struct {
	mu     sync.Mutex
	region []byte
	closed bool
}

// New returns a zero-filled Buffer of size bytes.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}
	region, err := lockedRegion(size)
	if err != nil {
		return nil, err
	}
	return &Buffer{region: region}, nil
}

// NewFromBytes moves source into a new Buffer. source is zeroed
// whether or not the call succeeds.
func NewFromBytes(source []byte) (*Buffer, error) {
	defer Zero(source)
	if len(source) == 0 {
		return nil, errors.New("secret: cannot create buffer from empty source")
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.region, source)
	return buffer, nil
}

func lockedRegion(size int) ([]byte, error) {
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}
	if err := unix.Mlock(region); err != nil {
		_ = unix.Munmap(region)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		_ = releaseRegion(region)
		return nil, fmt.Errorf("secret: madvise: %w", err)
	}
	return region, nil
}

func releaseRegion(region []byte) error {
	Zero(region)
	return errors.Join(unix.Munlock(region), unix.Munmap(region))
}

// Bytes returns the secret. The slice aliases the locked region and
// must not outlive Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.region
}

// Len is zero after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.region)
}

// Close zeroes and unmaps the region. Calling it again is a no-op.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	region := b.region
	b.region = nil
	if err := releaseRegion(region); err != nil {
		return fmt.Errorf("secret: releasing buffer: %w", err)
	}
	return nil
}

// String never includes the secret.
func (b *Buffer) String() string {
	return fmt.Sprintf("secret.Buffer(%d bytes, redacted)", b.Len())
}

// LogValue keeps the secret out of structured logs.
func (b *Buffer) LogValue() slog.Value {
	return slog.StringValue(b.String())
}

// Zero overwrites data with zeros.
func Zero(data []byte) {
	clear(data)
}
