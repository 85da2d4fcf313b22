package oauth

import (
	"context"

	"calendar-integration/internal/model"

	"golang.org/x/oauth2"
)

// Manager drives the per-user credential lifecycle:
// Unauthorized -> Authorized -> Refreshing -> Authorized | RefreshFailed.
//
//go:generate mockery --name Manager
type Manager interface {
	// BuildConsentURL is deterministic for a given state and scope list. Empty scopes use the configured defaults.
	BuildConsentURL(state string, scopes []string) string
	// ExchangeCode trades a single-use authorization code for tokens. Nothing is persisted.
	ExchangeCode(ctx context.Context, code string) (Tokens, error)
	// EnsureFresh returns cred unchanged while its access token outlives the refresh margin,
	// otherwise refreshes it and persists the merged result.
	EnsureFresh(ctx context.Context, cred model.Credential) (model.Credential, error)
	// Refresh unconditionally refreshes cred and persists the merged result.
	Refresh(ctx context.Context, cred model.Credential) (model.Credential, error)
}

// Provider is the OAuth2 capability of a calendar provider.
type Provider interface {
	AuthCodeURL(state string, scopes []string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}
