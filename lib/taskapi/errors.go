// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bureau-foundation/taskboard/lib/accounts"
	"github.com/bureau-foundation/taskboard/lib/netutil"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/sessiontoken"
	"github.com/bureau-foundation/taskboard/lib/store"
)

// Client-visible messages.
const (
	messageMissingAuthorization = "Missing or invalid authorization header"
	messageInvalidToken         = "Invalid or expired token"
	messageUserNotFound         = "User not found"
	messageTaskNotFound         = "Task not found or access denied"
	messageEmailTaken           = "Email already registered"
	messageBadCredentials       = "Incorrect email or password"
	messageInvalidBody          = "Invalid request body"
	messageBodyTooLarge         = "Request body too large"
	messageInternal             = "Internal server error"
)

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(value); err != nil {
		slog.Debug("writing response body failed", "error", err)
	}
}

func writeError(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, schema.ErrorResponse{Error: message})
}

// writeDecodeError reports a request body that could not be decoded.
func writeDecodeError(writer http.ResponseWriter, err error) {
	if errors.Is(err, netutil.ErrBodyTooLarge) {
		writeError(writer, http.StatusRequestEntityTooLarge, messageBodyTooLarge)
		return
	}
	writeError(writer, http.StatusBadRequest, messageInvalidBody)
}

// fail maps err onto a status and message. notFound is the message for
// store.ErrNotFound, which differs between user and task lookups.
// Unrecognized errors are logged and reported as a generic 500.
func (a *API) fail(writer http.ResponseWriter, request *http.Request, err error, notFound string) {
	var validation *schema.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(writer, http.StatusBadRequest, validation.Message)
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(writer, http.StatusBadRequest, messageEmailTaken)
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeError(writer, http.StatusUnauthorized, messageBadCredentials)
	case errors.Is(err, sessiontoken.ErrMissingSecret):
		a.logger.Error("signing secret unavailable", "secret_env", a.secretName, "error", err)
		writeError(writer, http.StatusInternalServerError, "Server configuration error: Missing "+a.secretName)
	case errors.Is(err, sessiontoken.ErrInvalidToken), errors.Is(err, sessiontoken.ErrTokenExpired):
		writeError(writer, http.StatusUnauthorized, messageInvalidToken)
	case errors.Is(err, store.ErrNotFound):
		writeError(writer, http.StatusNotFound, notFound)
	default:
		a.logger.Error("request failed",
			"method", request.Method,
			"path", request.URL.Path,
			"error", err,
		)
		writeError(writer, http.StatusInternalServerError, messageInternal)
	}
}
