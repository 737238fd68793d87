// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Taskboard's standard CBOR encoding
// configuration.
//
// Taskboard speaks JSON on its HTTP API. CBOR is used only for compact
// internal payloads where byte-for-byte stability matters, today the
// claims inside session tokens: the MAC covers the encoded bytes, so
// the same claims must always encode identically.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// decoder rejects duplicate map keys, so a forged payload cannot carry
// two subjects and rely on decoder precedence.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types that are only ever CBOR use `cbor` struct tags with integer
// keys (`cbor:"1,keyasint"`). Never put both `cbor` and `json` tags on
// one field.
package codec
