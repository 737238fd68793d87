// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/bureau-foundation/taskboard/lib/netutil"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/sessiontoken"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-sensitively.
func bearerToken(request *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(request.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// verify checks the request's bearer token and returns its claims. On
// failure the response has been written and ok is false.
func (a *API) verify(writer http.ResponseWriter, request *http.Request) (sessiontoken.Claims, bool) {
	token, ok := bearerToken(request)
	if !ok {
		writeError(writer, http.StatusUnauthorized, messageMissingAuthorization)
		return sessiontoken.Claims{}, false
	}
	claims, err := a.authority.Verify(token)
	if err != nil {
		a.fail(writer, request, err, messageInvalidToken)
		return sessiontoken.Claims{}, false
	}
	return claims, true
}

type userKey struct{}

// requireUser verifies the token, resolves the caller in the
// directory, and passes the user to next through the request context.
func (a *API) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		claims, ok := a.verify(writer, request)
		if !ok {
			return
		}
		user, err := a.directory.Lookup(request.Context(), claims.Subject)
		if err != nil {
			a.fail(writer, request, err, messageUserNotFound)
			return
		}
		ctx := context.WithValue(request.Context(), userKey{}, user)
		next(writer, request.WithContext(ctx))
	}
}

func currentUser(request *http.Request) schema.User {
	user, _ := request.Context().Value(userKey{}).(schema.User)
	return user
}

func (a *API) issueSession(writer http.ResponseWriter, request *http.Request, user schema.User) {
	token, _, err := a.authority.Issue(user.ID)
	if err != nil {
		a.fail(writer, request, err, messageUserNotFound)
		return
	}
	writeJSON(writer, http.StatusOK, schema.AuthResponse{
		User: schema.UserRef{ID: user.ID, Email: user.Email},
		Session: schema.Session{
			AccessToken: token,
			ExpiresAt:   int64(sessiontoken.TTL.Seconds()),
		},
	})
}

func (a *API) handleRegister(writer http.ResponseWriter, request *http.Request) {
	var credentials schema.Credentials
	if err := netutil.DecodeRequest(writer, request, MaxRequestBody, &credentials); err != nil {
		writeDecodeError(writer, err)
		return
	}
	// Check the secret before creating an account that could not be
	// issued a token.
	if err := a.authority.CheckSecret(); err != nil {
		a.fail(writer, request, err, "")
		return
	}
	user, err := a.directory.Register(request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		a.fail(writer, request, err, messageUserNotFound)
		return
	}
	a.issueSession(writer, request, user)
}

func (a *API) handleLogin(writer http.ResponseWriter, request *http.Request) {
	var credentials schema.Credentials
	if err := netutil.DecodeRequest(writer, request, MaxRequestBody, &credentials); err != nil {
		writeDecodeError(writer, err)
		return
	}
	user, err := a.directory.Authenticate(request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		a.fail(writer, request, err, messageBadCredentials)
		return
	}
	a.issueSession(writer, request, user)
}

// handleLogout acknowledges a logout. Tokens are stateless; the client
// discards its copy.
func (a *API) handleLogout(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, schema.MessageResponse{Message: "Logged out successfully"})
}

func (a *API) handleMe(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, schema.NewUserInfo(currentUser(request)))
}

// handleUserID reports the token's subject without a directory lookup.
func (a *API) handleUserID(writer http.ResponseWriter, request *http.Request) {
	claims, ok := a.verify(writer, request)
	if !ok {
		return
	}
	writeJSON(writer, http.StatusOK, schema.UserIDResponse{UserID: claims.Subject})
}
