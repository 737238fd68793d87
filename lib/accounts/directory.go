// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package accounts registers users and checks their passwords. Storage
// is delegated to a [store.UserRepository]; this package owns
// validation, bcrypt hashing, and ID assignment.
package accounts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/bcrypt"

	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/store"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown
// email and for a wrong password alike.
var ErrInvalidCredentials = errors.New("accounts: incorrect email or password")

// DefaultCost is the bcrypt work factor used when Config.Cost is zero.
const DefaultCost = bcrypt.DefaultCost

// Config holds the dependencies of a [Directory].
type Config struct {
	Users store.UserRepository

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Cost is the bcrypt work factor. Tests use bcrypt.MinCost.
	Cost int

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Directory is safe for concurrent use.
type Directory struct {
	users  store.UserRepository
	clock  clock.Clock
	cost   int
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewDirectory returns a Directory over cfg.Users.
func NewDirectory(cfg Config) (*Directory, error) {
	if cfg.Users == nil {
		return nil, fmt.Errorf("accounts: Users is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	cost := cfg.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("accounts: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Directory{users: cfg.Users, clock: clk, cost: cost, logger: logger}, nil
}

// Register validates the credentials, hashes the password, and stores
// a new user. A taken email fails with store.ErrDuplicateEmail.
func (d *Directory) Register(ctx context.Context, email, password string) (schema.User, error) {
	if err := schema.ValidateCredentials(schema.Credentials{Email: email, Password: password}); err != nil {
		return schema.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword(prehash(password), d.cost)
	if err != nil {
		return schema.User{}, fmt.Errorf("accounts: hashing password: %w", err)
	}

	now := d.clock.Now().UTC()
	user := schema.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := d.users.Insert(ctx, user); err != nil {
		return schema.User{}, err
	}

	d.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the user whose email and password match. An
// over-long password is a ValidationError, not a credential failure.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (schema.User, error) {
	if utf8.RuneCountInString(password) > schema.MaxPasswordLength {
		return schema.User{}, schema.ValidatePassword(password)
	}
	if email == "" || password == "" {
		return schema.User{}, ErrInvalidCredentials
	}

	user, err := d.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// Match the cost of a real comparison.
		bcrypt.CompareHashAndPassword(d.dummy(), prehash(password))
		return schema.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return schema.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, prehash(password)); err != nil {
		return schema.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Lookup returns the user with id, or store.ErrNotFound.
func (d *Directory) Lookup(ctx context.Context, id string) (schema.User, error) {
	return d.users.FindByID(ctx, id)
}

func (d *Directory) dummy() []byte {
	d.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword(prehash("taskboard timing equalizer"), d.cost)
		if err != nil {
			d.logger.Error("generating dummy bcrypt hash", "error", err)
			return
		}
		d.dummyHash = hash
	})
	return d.dummyHash
}

// prehash maps a password of up to 72 characters (up to 288 bytes of
// UTF-8) onto 44 bytes, inside bcrypt's 72-byte input limit, so no
// part of a long multibyte password is ignored.
func prehash(password string) []byte {
	digest := blake3.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(digest[:]))
}
