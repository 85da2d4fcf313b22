package oauth

import (
	"time"

	"calendar-integration/internal/model"

	"golang.org/x/oauth2"
)

// DefaultRefreshMargin is how long before expiry an access token is already treated as stale.
const DefaultRefreshMargin = 5 * time.Minute

// Config configures the session manager.
type Config struct {
	// RefreshMargin defaults to DefaultRefreshMargin.
	RefreshMargin time.Duration
	// Scopes requested when BuildConsentURL is called without any.
	Scopes []string
	// Policy defaults to DefaultConsentPolicy when zero.
	Policy ConsentPolicy
	// Now defaults to time.Now.
	Now func() time.Time
}

// Tokens is the token set returned by a code exchange or a refresh.
type Tokens struct {
	AccessToken string
	// RefreshToken is empty when the provider did not issue one.
	RefreshToken string
	Scope        []string
	TokenType    string
	Expiry       time.Time
	IDToken      string
}

// Credential turns an exchange result into the record stored for userID.
func (t Tokens) Credential(userID string, now time.Time) model.Credential {
	return model.Credential{
		UserID:       userID,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Scope:        append([]string(nil), t.Scope...),
		TokenType:    t.TokenType,
		Expiry:       t.Expiry.UTC(),
		IDToken:      t.IDToken,
		UpdatedAt:    now.UTC(),
	}
}

// ConsentPolicy controls the consent URL parameters.
//
// With both fields set, every consent round trip asks for offline access and
// forces the consent screen, so the provider issues a refresh token even to
// users who granted access before. Turning either off can leave a user with
// no refresh token once the first access token expires.
type ConsentPolicy struct {
	AccessTypeOffline bool
	ForceConsent      bool
}

// DefaultConsentPolicy requests offline access and forces re-consent.
var DefaultConsentPolicy = ConsentPolicy{AccessTypeOffline: true, ForceConsent: true}

// Options returns the oauth2 parameters for p.
func (p ConsentPolicy) Options() []oauth2.AuthCodeOption {
	var opts []oauth2.AuthCodeOption
	if p.AccessTypeOffline {
		opts = append(opts, oauth2.AccessTypeOffline)
	}
	if p.ForceConsent {
		opts = append(opts, oauth2.ApprovalForce)
	}
	return opts
}

// MergeRefreshed applies a refresh result to old.
//
// The access token and expiry always come from fresh. The refresh token is
// replaced only when fresh carries one; otherwise old's is kept, since some
// providers never reissue it. Scope, token type and id token follow the same
// keep-if-absent rule.
func MergeRefreshed(old model.Credential, fresh Tokens, now time.Time) model.Credential {
	merged := old
	merged.AccessToken = fresh.AccessToken
	merged.Expiry = fresh.Expiry.UTC()
	if fresh.RefreshToken != "" {
		merged.RefreshToken = fresh.RefreshToken
	}
	if len(fresh.Scope) > 0 {
		merged.Scope = append([]string(nil), fresh.Scope...)
	}
	if fresh.TokenType != "" {
		merged.TokenType = fresh.TokenType
	}
	if fresh.IDToken != "" {
		merged.IDToken = fresh.IDToken
	}
	merged.UpdatedAt = now.UTC()
	return merged
}
