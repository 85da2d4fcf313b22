package gcalendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultScopes are requested when the caller does not name any.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// OAuthConfig configures OAuthProvider.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Endpoint defaults to google.Endpoint.
	Endpoint oauth2.Endpoint
	// HTTPClient is used for token requests; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// OAuthProvider performs the provider side of the OAuth2 authorization-code flow.
type OAuthProvider struct {
	cfg        oauth2.Config
	httpClient *http.Client
}

// NewOAuthProvider validates cfg and returns a provider.
func NewOAuthProvider(cfg OAuthConfig) (*OAuthProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("gcalendar: client id and secret are required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("gcalendar: redirect url is required")
	}

	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &OAuthProvider{
		cfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       append([]string(nil), scopes...),
			Endpoint:     endpoint,
		},
		httpClient: cfg.HTTPClient,
	}, nil
}

// Scopes returns the configured default scopes.
func (p *OAuthProvider) Scopes() []string {
	return append([]string(nil), p.cfg.Scopes...)
}

// AuthCodeURL builds the consent URL. Empty scopes fall back to the configured ones.
func (p *OAuthProvider) AuthCodeURL(state string, scopes []string, opts ...oauth2.AuthCodeOption) string {
	cfg := p.cfg
	if len(scopes) > 0 {
		cfg.Scopes = scopes
	}
	return cfg.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for a token set.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.cfg.Exchange(p.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("gcalendar: exchange code: %w", err)
	}
	return tok, nil
}

// Refresh redeems refreshToken for a new access token. If the provider does not
// rotate the refresh token, the returned token carries the one passed in.
func (p *OAuthProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, errors.New("gcalendar: refresh token is required")
	}
	tok, err := p.cfg.TokenSource(p.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("gcalendar: refresh token: %w", err)
	}
	return tok, nil
}

func (p *OAuthProvider) withClient(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// TokenString reads a string field from the token response that oauth2.Token
// does not model directly, such as "id_token" or "scope".
func TokenString(tok *oauth2.Token, field string) string {
	if tok == nil {
		return ""
	}
	v, _ := tok.Extra(field).(string)
	return v
}
