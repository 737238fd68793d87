// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sessiontoken issues and verifies the bearer tokens that
// authenticate Taskboard API callers.
//
// A token proves that the server issued it for a particular user and
// that it has not expired. Verification is stateless: the server keeps
// no session table, so a token stays valid until its expiry.
//
// # Wire format
//
// The raw token is CBOR-encoded [Claims] followed by a 32-byte BLAKE3
// keyed MAC over those bytes:
//
//	[CBOR claims bytes] [32-byte BLAKE3 MAC]
//
// The raw bytes travel base64url-encoded without padding in the
// Authorization header. The split point is always len(raw) - 32. The
// MAC key is derived from the deployment's shared secret with BLAKE3's
// key derivation mode under a fixed context string, so the secret can
// be any length and is never used as a key directly.
//
// # Failure classes
//
// [ErrMissingSecret] means the deployment is misconfigured and is a
// server error. [ErrInvalidToken] and [ErrTokenExpired] are caller
// errors; the HTTP layer reports both with the same message so an
// attacker learns nothing from the distinction.
package sessiontoken
