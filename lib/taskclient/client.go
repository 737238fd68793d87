// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskclient is the HTTP client for the taskboard API. It owns
// the caller's session: the token from register or login is kept in a
// [TokenStore], attached to every request, and discarded as soon as
// the server answers 401.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/taskboard/lib/netutil"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/version"
)

// DefaultTimeout bounds each request when Options.HTTPClient is nil.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	// Message is the server's error text, or the raw body when the
	// response was not the usual {"error": ...} shape.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("taskboard: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == status
}

// Options configures a Client. The zero value is usable: an in-memory
// token store and a 30 second timeout.
type Options struct {
	HTTPClient *http.Client
	Tokens     TokenStore

	// OnUnauthorized runs after a 401 has cleared the stored token.
	OnUnauthorized func()

	Logger *slog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenStore
	onUnauthorized func()
	logger         *slog.Logger
}

// New returns a client for the server at baseURL.
func New(baseURL string, options Options) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("taskclient: parsing server URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("taskclient: server URL %q must be http or https", baseURL)
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	tokens := options.Tokens
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:        parsed,
		http:           httpClient,
		tokens:         tokens,
		onUnauthorized: options.OnUnauthorized,
		logger:         logger,
	}, nil
}

// Session returns the stored session, if any.
func (c *Client) Session() (Session, bool) {
	session, err := c.tokens.Load()
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			c.logger.Warn("loading session failed", "error", err)
		}
		return Session{}, false
	}
	return session, true
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (schema.AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

// Login stores the token on success.
func (c *Client) Login(ctx context.Context, email, password string) (schema.AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (schema.AuthResponse, error) {
	var response schema.AuthResponse
	credentials := schema.Credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, path, nil, credentials, &response); err != nil {
		return schema.AuthResponse{}, err
	}
	err := c.tokens.Save(Session{
		AccessToken: response.Session.AccessToken,
		UserID:      response.User.ID,
		Email:       response.User.Email,
		Server:      c.baseURL.String(),
	})
	if err != nil {
		return schema.AuthResponse{}, fmt.Errorf("taskclient: saving session: %w", err)
	}
	return response, nil
}

// Logout notifies the server and clears the stored token. A failed
// notification is logged, not returned.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil); err != nil {
		c.logger.Debug("logout notification failed", "error", err)
	}
	return c.tokens.Clear()
}

// Me returns the caller's profile.
func (c *Client) Me(ctx context.Context) (schema.UserInfo, error) {
	var info schema.UserInfo
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &info)
	return info, err
}

// UserID returns the subject of the stored token as the server sees it.
func (c *Client) UserID(ctx context.Context) (string, error) {
	var response schema.UserIDResponse
	err := c.do(ctx, http.MethodGet, "/api/auth/user-id", nil, nil, &response)
	return response.UserID, err
}

// ListOptions pages a task listing. Zero fields are omitted and the
// server defaults apply.
type ListOptions struct {
	Skip  int
	Limit int
}

// ListTasks returns the caller's tasks newest first.
func (c *Client) ListTasks(ctx context.Context, options ListOptions) ([]schema.Task, error) {
	query := url.Values{}
	if options.Skip > 0 {
		query.Set("skip", strconv.Itoa(options.Skip))
	}
	if options.Limit > 0 {
		query.Set("limit", strconv.Itoa(options.Limit))
	}
	list := []schema.Task{}
	err := c.do(ctx, http.MethodGet, "/api/tasks", query, nil, &list)
	return list, err
}

func (c *Client) CreateTask(ctx context.Context, request schema.NewTask) (schema.Task, error) {
	var task schema.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", nil, request, &task)
	return task, err
}

func (c *Client) GetTask(ctx context.Context, id string) (schema.Task, error) {
	var task schema.Task
	err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &task)
	return task, err
}

// UpdateTask changes the fields set in patch.
func (c *Client) UpdateTask(ctx context.Context, id string, patch schema.TaskPatch) (schema.Task, error) {
	var task schema.Task
	err := c.do(ctx, http.MethodPut, taskPath(id), nil, patch, &task)
	return task, err
}

// ToggleTask flips the task's completed flag.
func (c *Client) ToggleTask(ctx context.Context, id string) (schema.Task, error) {
	var task schema.Task
	err := c.do(ctx, http.MethodPatch, taskPath(id)+"/complete", nil, nil, &task)
	return task, err
}

// DeleteTask removes the task and returns it as it was.
func (c *Client) DeleteTask(ctx context.Context, id string) (schema.Task, error) {
	var response schema.DeleteResponse
	err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, &response)
	return response.Task, err
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// do sends one request. A 401 clears the token store and fires the
// OnUnauthorized hook before the APIError is returned.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("taskclient: encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("taskclient: building request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if session, ok := c.Session(); ok {
		request.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("taskclient: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		apiError := &APIError{StatusCode: response.StatusCode, Message: errorMessage(response.Body)}
		if response.StatusCode == http.StatusUnauthorized {
			c.expireSession()
		}
		return apiError
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, netutil.MaxResponseSize))
		return nil
	}
	if err := netutil.DecodeResponse(response.Body, out); err != nil {
		return fmt.Errorf("taskclient: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func errorMessage(body io.Reader) string {
	raw := netutil.ErrorBody(body)
	var decoded schema.ErrorResponse
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil && decoded.Error != "" {
		return decoded.Error
	}
	return strings.TrimSpace(raw)
}

func (c *Client) expireSession() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn("clearing session after 401 failed", "error", err)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
