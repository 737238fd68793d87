// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecoverPanicsWritesInternalError(t *testing.T) {
	var logs bytes.Buffer
	api := &API{logger: slog.New(slog.NewJSONHandler(&logs, nil))}

	handler := api.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/tasks", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), messageInternal) {
		t.Errorf("body = %s", recorder.Body.String())
	}
	if !strings.Contains(logs.String(), "handler panic") {
		t.Errorf("panic not logged: %s", logs.String())
	}
}

func TestObserveLogsRoutePattern(t *testing.T) {
	var logs bytes.Buffer
	api := &API{
		logger:  slog.New(slog.NewJSONHandler(&logs, nil)),
		metrics: newMetrics(prometheus.NewRegistry()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/tasks/{id}", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusTeapot)
	})
	recorder := httptest.NewRecorder()
	api.observe(mux).ServeHTTP(recorder, httptest.NewRequest("DELETE", "/api/tasks/abc123", nil))

	output := logs.String()
	if !strings.Contains(output, `"route":"DELETE /api/tasks/{id}"`) {
		t.Errorf("log missing route pattern: %s", output)
	}
	if !strings.Contains(output, `"status":418`) {
		t.Errorf("log missing status: %s", output)
	}
	if strings.Contains(output, "abc123") {
		t.Errorf("log contains raw task ID: %s", output)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"bearer abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, test := range tests {
		request := httptest.NewRequest("GET", "/", nil)
		if test.header != "" {
			request.Header.Set("Authorization", test.header)
		}
		token, ok := bearerToken(request)
		if token != test.token || ok != test.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", test.header, token, ok, test.token, test.ok)
		}
	}
}
