// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bureau-foundation/taskboard/lib/accounts"
	"github.com/bureau-foundation/taskboard/lib/sessiontoken"
	"github.com/bureau-foundation/taskboard/lib/tasks"
)

// MaxRequestBody caps every JSON request body.
const MaxRequestBody = 64 << 10

// DefaultSecretName is named in the 500 response when no signing
// secret is configured.
const DefaultSecretName = "TASKBOARD_AUTH_SECRET"

// Config holds the dependencies of the API.
type Config struct {
	Directory *accounts.Directory
	Tasks     *tasks.Service
	Authority *sessiontoken.Authority

	// SecretName is the environment variable the signing secret is
	// read from. Defaults to DefaultSecretName.
	SecretName string

	// Registry receives the request metrics and is served at
	// /metrics. A fresh registry with Go runtime collectors is
	// created when nil.
	Registry *prometheus.Registry

	// Logger is required.
	Logger *slog.Logger
}

// API serves the taskboard routes. It is an http.Handler.
type API struct {
	directory  *accounts.Directory
	tasks      *tasks.Service
	authority  *sessiontoken.Authority
	secretName string
	logger     *slog.Logger
	metrics    *metrics
	handler    http.Handler
}

// New builds the API and its middleware chain.
func New(cfg Config) (*API, error) {
	if cfg.Directory == nil || cfg.Tasks == nil || cfg.Authority == nil {
		return nil, fmt.Errorf("taskapi: Directory, Tasks, and Authority are required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("taskapi: Logger is required")
	}

	secretName := cfg.SecretName
	if secretName == "" {
		secretName = DefaultSecretName
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	api := &API{
		directory:  cfg.Directory,
		tasks:      cfg.Tasks,
		authority:  cfg.Authority,
		secretName: secretName,
		logger:     cfg.Logger,
		metrics:    newMetrics(registry),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", api.handleRegister)
	mux.HandleFunc("POST /api/auth/login", api.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", api.handleLogout)
	mux.HandleFunc("GET /api/auth/me", api.requireUser(api.handleMe))
	mux.HandleFunc("GET /api/auth/user-id", api.handleUserID)

	mux.HandleFunc("GET /api/tasks", api.requireUser(api.handleListTasks))
	mux.HandleFunc("POST /api/tasks", api.requireUser(api.handleCreateTask))
	mux.HandleFunc("GET /api/tasks/{id}", api.requireUser(api.handleGetTask))
	mux.HandleFunc("PUT /api/tasks/{id}", api.requireUser(api.handleUpdateTask))
	mux.HandleFunc("PATCH /api/tasks/{id}/complete", api.requireUser(api.handleToggleTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", api.requireUser(api.handleDeleteTask))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	var handler http.Handler = jsonFallback(mux)
	handler = gzhttp.GzipHandler(handler)
	handler = securityHeaders(handler)
	handler = api.recoverPanics(handler)
	handler = api.observe(handler)
	api.handler = handler

	return api, nil
}

func (a *API) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	a.handler.ServeHTTP(writer, request)
}

func handleHealth(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonFallback serves mux, answering unmatched requests with a JSON
// body instead of the mux's plain-text one: 405 with the Allow header
// when the path exists under another method, 404 otherwise.
func jsonFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		handler, pattern := mux.Handler(request)
		if pattern != "" {
			mux.ServeHTTP(writer, request)
			return
		}
		fallback := &fallbackRecorder{header: http.Header{}}
		handler.ServeHTTP(fallback, request)
		if fallback.status == http.StatusMethodNotAllowed {
			writer.Header().Set("Allow", fallback.header.Get("Allow"))
			writeError(writer, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeError(writer, http.StatusNotFound, "Not found")
	})
}

// fallbackRecorder keeps the status and headers of the mux's own
// fallback response and drops its body.
type fallbackRecorder struct {
	header http.Header
	status int
}

func (r *fallbackRecorder) Header() http.Header { return r.header }

func (r *fallbackRecorder) Write(data []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return len(data), nil
}

func (r *fallbackRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}
