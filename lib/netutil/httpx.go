// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds JSON bodies read from HTTP peers.
//
// Client side, [ReadResponse], [DecodeResponse], and [ErrorBody] cap
// response reads at MaxResponseSize. Server side, [DecodeRequest]
// caps request bodies at a caller-supplied limit and distinguishes an
// oversized body from malformed JSON.
package netutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxResponseSize bounds response body reads: 8 MiB. A full page of
// tasks is a few hundred kilobytes at most.
const MaxResponseSize int64 = 8 << 20

// ErrBodyTooLarge is returned by DecodeRequest when the body exceeds
// its limit.
var ErrBodyTooLarge = errors.New("request body too large")

// ErrEmptyBody is returned by DecodeRequest for a zero-length body.
var ErrEmptyBody = errors.New("request body is empty")

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a response body (up to MaxResponseSize bytes)
// and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody reads an error response body for diagnostics. Read errors
// are ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}

// DecodeRequest JSON-decodes at most limit bytes of the request body
// into v. Unknown fields are ignored. Trailing data after the first
// JSON value is an error.
func DecodeRequest(writer http.ResponseWriter, request *http.Request, limit int64, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, limit))
	if err := decoder.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			return ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		default:
			return fmt.Errorf("decoding request body: %w", err)
		}
	}
	if decoder.More() {
		return fmt.Errorf("decoding request body: unexpected data after JSON value")
	}
	return nil
}
