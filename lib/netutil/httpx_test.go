// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	t.Run("normal body", func(t *testing.T) {
		data, err := ReadResponse(bytes.NewReader([]byte(`{"status":"ok"}`)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"status":"ok"}` {
			t.Fatalf("got %q, want %q", data, `{"status":"ok"}`)
		}
	})

	t.Run("read error propagates", func(t *testing.T) {
		if _, err := ReadResponse(&failReader{}); err == nil {
			t.Fatal("expected error from failing reader")
		}
	})
}

func TestDecodeResponse(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		var result struct {
			Title     string `json:"title"`
			Completed bool   `json:"completed"`
		}
		body := bytes.NewReader([]byte(`{"title":"buy milk","completed":true}`))
		if err := DecodeResponse(body, &result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Title != "buy milk" || !result.Completed {
			t.Fatalf("decoded %+v", result)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		if err := DecodeResponse(bytes.NewReader([]byte(`not json`)), &struct{}{}); err == nil {
			t.Fatal("expected error for invalid JSON")
		}
	})
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(bytes.NewReader([]byte(`{"error":"Task not found or access denied"}`))); got != `{"error":"Task not found or access denied"}` {
		t.Fatalf("got %q", got)
	}
	if got := ErrorBody(&failReader{}); got != "" {
		t.Fatalf("expected empty from failing reader, got %q", got)
	}
}

func TestDecodeRequest(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	tests := []struct {
		name    string
		body    string
		limit   int64
		want    string
		wantErr error
		anyErr  bool
	}{
		{name: "valid", body: `{"title":"a"}`, limit: 64, want: "a"},
		{name: "unknown fields ignored", body: `{"title":"a","extra":1}`, limit: 64, want: "a"},
		{name: "empty", body: ``, limit: 64, wantErr: ErrEmptyBody},
		{name: "too large", body: `{"title":"` + strings.Repeat("x", 100) + `"}`, limit: 32, wantErr: ErrBodyTooLarge},
		{name: "malformed", body: `{"title":`, limit: 64, anyErr: true},
		{name: "trailing data", body: `{"title":"a"} {"title":"b"}`, limit: 64, anyErr: true},
		{name: "wrong type", body: `{"title":5}`, limit: 64, anyErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := httptest.NewRequest("POST", "/api/tasks", strings.NewReader(test.body))
			recorder := httptest.NewRecorder()

			var got payload
			err := DecodeRequest(recorder, request, test.limit, &got)
			switch {
			case test.wantErr != nil:
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("error = %v, want %v", err, test.wantErr)
				}
			case test.anyErr:
				if err == nil {
					t.Fatal("expected error")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Title != test.want {
					t.Errorf("title = %q, want %q", got.Title, test.want)
				}
			}
		})
	}
}

type failReader struct{}

func (*failReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("simulated read failure")
}
