// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Anything that stamps records or checks expiry (session tokens, task
// timestamps) takes a Clock instead of calling time.Now directly.
// Production wires Real(); tests wire Fake() and move time explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	authority := sessiontoken.NewAuthority(secret, c)
//	c.Advance(time.Hour) // every token minted above is now expired
package clock
