// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessiontoken

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/taskboard/lib/codec"
)

// TTL is the lifetime of every issued token.
const TTL = time.Hour

// macSize is the length of the BLAKE3 MAC appended to the claims.
const macSize = 32

// keyContext is the BLAKE3 key derivation context. Changing it
// invalidates every outstanding token.
const keyContext = "taskboard 2026-01-01 session token MAC v1"

// encoding is strict so each token has exactly one string form.
var encoding = base64.RawURLEncoding.Strict()

// Claims is the CBOR payload of a session token.
type Claims struct {
	// Subject is the user ID the token was issued to.
	Subject string `cbor:"1,keyasint"`

	// ID is a random hex identifier unique to this token.
	ID string `cbor:"2,keyasint"`

	// IssuedAt and ExpiresAt are Unix timestamps in seconds.
	IssuedAt  int64 `cbor:"3,keyasint"`
	ExpiresAt int64 `cbor:"4,keyasint"`
}

// Expiry returns ExpiresAt as a time.Time.
func (c Claims) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// Errors returned by Mint, Verify, and the Authority methods.
var (
	ErrMissingSecret = errors.New("sessiontoken: signing secret is not configured")
	ErrInvalidToken  = errors.New("sessiontoken: invalid token")
	ErrTokenExpired  = errors.New("sessiontoken: token has expired")
)

// Mint encodes claims and appends the MAC, returning the
// base64url-encoded token.
func Mint(secret []byte, claims Claims) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}

	payload, err := codec.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("sessiontoken: encoding claims: %w", err)
	}

	mac, err := computeMAC(secret, payload)
	if err != nil {
		return "", err
	}

	raw := make([]byte, 0, len(payload)+macSize)
	raw = append(raw, payload...)
	raw = append(raw, mac...)
	return encoding.EncodeToString(raw), nil
}

// VerifyAt checks the token's MAC, decodes its claims, and rejects it
// if now is at or past the expiry.
func VerifyAt(secret []byte, token string, now time.Time) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, ErrMissingSecret
	}

	raw, err := encoding.DecodeString(token)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: not base64url", ErrInvalidToken)
	}
	if len(raw) <= macSize {
		return Claims{}, fmt.Errorf("%w: too short", ErrInvalidToken)
	}

	splitPoint := len(raw) - macSize
	payload := raw[:splitPoint]
	mac := raw[splitPoint:]

	expected, err := computeMAC(secret, payload)
	if err != nil {
		return Claims{}, err
	}
	if subtle.ConstantTimeCompare(mac, expected) != 1 {
		return Claims{}, fmt.Errorf("%w: MAC mismatch", ErrInvalidToken)
	}

	var claims Claims
	if err := codec.Unmarshal(payload, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: decoding claims: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if now.Unix() >= claims.ExpiresAt {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

func computeMAC(secret, payload []byte) ([]byte, error) {
	var key [32]byte
	blake3.DeriveKey(keyContext, secret, key[:])
	defer clear(key[:])

	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		return nil, fmt.Errorf("sessiontoken: keyed hasher: %w", err)
	}
	hasher.Write(payload)
	return hasher.Sum(nil), nil
}

func newTokenID() (string, error) {
	var id [16]byte
	if _, err := rand.Read(id[:]); err != nil {
		return "", fmt.Errorf("sessiontoken: generating token ID: %w", err)
	}
	return hex.EncodeToString(id[:]), nil
}
