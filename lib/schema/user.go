// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxPasswordLength is the longest accepted password, in characters.
const MaxPasswordLength = 72

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName derives a name from the email's local part; accounts
// carry no name field.
func (u User) DisplayName() string {
	localPart, _, _ := strings.Cut(u.Email, "@")
	if localPart == "" {
		return "User"
	}
	return localPart
}

// Credentials is the body of register and login requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserRef identifies a user in auth responses.
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session carries an issued access token. ExpiresAt is the token
// lifetime in seconds, not a timestamp.
type Session struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User    UserRef `json:"user"`
	Session Session `json:"session"`
}

// UserInfo is the whoami payload.
type UserInfo struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewUserInfo builds the whoami payload for u.
func NewUserInfo(u User) UserInfo {
	return UserInfo{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: true,
		Name:          u.DisplayName(),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserIDResponse is returned by the token introspection endpoint.
type UserIDResponse struct {
	UserID string `json:"user_id"`
}

// ValidateCredentials checks the shape of a registration or login
// request. Emails are compared exactly as given; no case folding.
func ValidateCredentials(credentials Credentials) error {
	if strings.TrimSpace(credentials.Email) == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !strings.Contains(credentials.Email, "@") {
		return &ValidationError{Field: "email", Message: "Email must be a valid address"}
	}
	return ValidatePassword(credentials.Password)
}

// ValidatePassword enforces the 1..72 character password length.
func ValidatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	if utf8.RuneCountInString(password) > MaxPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must not exceed 72 characters"}
	}
	return nil
}
