package oauth

import "errors"

var (
	// ErrInvalidGrant means the authorization code was reused, expired or never issued.
	ErrInvalidGrant = errors.New("authorization code rejected")
	// ErrExchangeFailed covers exchange failures other than a rejected code.
	ErrExchangeFailed = errors.New("authorization code exchange failed")
	// ErrRefreshTokenMissing means the user must re-consent; there is nothing to refresh with.
	ErrRefreshTokenMissing = errors.New("no refresh token on record")
	// ErrRefreshRejected means the provider refused the refresh token, usually because access was revoked.
	ErrRefreshRejected = errors.New("refresh token rejected")
	// ErrRefreshFailed covers transient refresh failures. It is not retried.
	ErrRefreshFailed = errors.New("token refresh failed")
)
