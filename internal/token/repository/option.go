package repository

import (
	"strings"
	"time"

	"calendar-integration/internal/model"
)

// UpsertOptions holds the full record to write.
type UpsertOptions struct {
	Credential model.Credential
}

// Validate checks the fields every backend relies on.
func (o UpsertOptions) Validate() error {
	if strings.TrimSpace(o.Credential.UserID) == "" {
		return ErrInvalidOptions
	}
	return nil
}

// UpdatePartialOptions lists the fields to overwrite. Nil fields are left untouched,
// so a refresh that returned no new refresh token simply leaves RefreshToken nil.
type UpdatePartialOptions struct {
	UserID       string
	AccessToken  *string
	RefreshToken *string
	Scope        []string
	TokenType    *string
	Expiry       *time.Time
	IDToken      *string
}

// Validate rejects a missing user id or an update with nothing to write.
func (o UpdatePartialOptions) Validate() error {
	if strings.TrimSpace(o.UserID) == "" || o.IsEmpty() {
		return ErrInvalidOptions
	}
	return nil
}

// IsEmpty reports whether no field is set.
func (o UpdatePartialOptions) IsEmpty() bool {
	return o.AccessToken == nil && o.RefreshToken == nil && o.Scope == nil &&
		o.TokenType == nil && o.Expiry == nil && o.IDToken == nil
}

// Apply copies the set fields onto c and stamps UpdatedAt.
func (o UpdatePartialOptions) Apply(c *model.Credential, now time.Time) {
	if o.AccessToken != nil {
		c.AccessToken = *o.AccessToken
	}
	if o.RefreshToken != nil {
		c.RefreshToken = *o.RefreshToken
	}
	if o.Scope != nil {
		c.Scope = append([]string(nil), o.Scope...)
	}
	if o.TokenType != nil {
		c.TokenType = *o.TokenType
	}
	if o.Expiry != nil {
		c.Expiry = o.Expiry.UTC()
	}
	if o.IDToken != nil {
		c.IDToken = *o.IDToken
	}
	c.UpdatedAt = now.UTC()
}
