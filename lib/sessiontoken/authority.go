// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessiontoken

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/taskboard/lib/clock"
)

// SecretSource supplies the signing secret. It is consulted on every
// Issue and Verify so that a deployment without a secret fails each
// request with ErrMissingSecret instead of failing once at startup.
type SecretSource interface {
	Secret() ([]byte, error)
}

// SecretFunc adapts a function to SecretSource.
type SecretFunc func() ([]byte, error)

// Secret calls f.
func (f SecretFunc) Secret() ([]byte, error) { return f() }

// StaticSecret returns a SecretSource that always yields secret. An
// empty secret behaves as missing.
func StaticSecret(secret []byte) SecretSource {
	return SecretFunc(func() ([]byte, error) {
		if len(secret) == 0 {
			return nil, ErrMissingSecret
		}
		return secret, nil
	})
}

// MissingSecret returns a SecretSource that always fails with
// ErrMissingSecret.
func MissingSecret() SecretSource {
	return SecretFunc(func() ([]byte, error) { return nil, ErrMissingSecret })
}

// Authority issues and verifies tokens with one secret and clock.
type Authority struct {
	secrets SecretSource
	clock   clock.Clock
}

// NewAuthority creates an Authority.
func NewAuthority(secrets SecretSource, clk clock.Clock) *Authority {
	return &Authority{secrets: secrets, clock: clk}
}

// Issue mints a token for userID expiring TTL from now.
func (a *Authority) Issue(userID string) (string, Claims, error) {
	secret, err := a.secret()
	if err != nil {
		return "", Claims{}, err
	}
	id, err := newTokenID()
	if err != nil {
		return "", Claims{}, err
	}

	now := a.clock.Now()
	claims := Claims{
		Subject:   userID,
		ID:        id,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(TTL).Unix(),
	}
	token, err := Mint(secret, claims)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// Verify checks token against the current secret and time.
func (a *Authority) Verify(token string) (Claims, error) {
	secret, err := a.secret()
	if err != nil {
		return Claims{}, err
	}
	return VerifyAt(secret, token, a.clock.Now())
}

// CheckSecret reports ErrMissingSecret if the secret source currently
// yields no secret.
func (a *Authority) CheckSecret() error {
	_, err := a.secret()
	return err
}

func (a *Authority) secret() ([]byte, error) {
	secret, err := a.secrets.Secret()
	if errors.Is(err, ErrMissingSecret) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingSecret, err)
	}
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	return secret, nil
}
