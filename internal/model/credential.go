package model

import (
	"strings"
	"time"
)

// Credential is the persisted OAuth2 token set of one user.
// Expiry is always an absolute UTC instant.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string // empty when the provider never issued one
	Scope        []string
	TokenType    string
	Expiry       time.Time
	IDToken      string
	UpdatedAt    time.Time
}

// HasRefreshToken reports whether a refresh token is on record.
func (c Credential) HasRefreshToken() bool {
	return strings.TrimSpace(c.RefreshToken) != ""
}

// ScopeString renders Scope in the space-delimited OAuth2 wire form.
func (c Credential) ScopeString() string {
	return strings.Join(c.Scope, " ")
}

// ParseScope splits a space-delimited OAuth2 scope string.
func ParseScope(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
