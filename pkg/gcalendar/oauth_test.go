package gcalendar_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"calendar-integration/pkg/gcalendar"
	"calendar-integration/pkg/gcalendar/gcaltest"

	"golang.org/x/oauth2"
)

func newFakeProvider(t *testing.T, srv *gcaltest.Server) *gcalendar.OAuthProvider {
	t.Helper()
	p, err := gcalendar.NewOAuthProvider(gcalendar.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/v1/calendar/oauth/callback",
		Endpoint:     srv.Endpoint(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestOAuthProvider(t *testing.T) {
	t.Run("Config validation", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  gcalendar.OAuthConfig
		}{
			{"missing client id", gcalendar.OAuthConfig{ClientSecret: "s", RedirectURL: "http://x"}},
			{"missing secret", gcalendar.OAuthConfig{ClientID: "c", RedirectURL: "http://x"}},
			{"missing redirect", gcalendar.OAuthConfig{ClientID: "c", ClientSecret: "s"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := gcalendar.NewOAuthProvider(tt.cfg); err == nil {
					t.Errorf("expected validation error")
				}
			})
		}
	})

	t.Run("Default scopes", func(t *testing.T) {
		p, err := gcalendar.NewOAuthProvider(gcalendar.OAuthConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := p.Scopes(); len(got) != len(gcalendar.DefaultScopes) {
			t.Errorf("expected default scopes, got %v", got)
		}
	})

	t.Run("AuthCodeURL carries offline consent parameters", func(t *testing.T) {
		srv := gcaltest.NewServer()
		defer srv.Close()
		p := newFakeProvider(t, srv)

		raw := p.AuthCodeURL("state-1", []string{"scope-a", "scope-b"}, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("unparseable url: %v", err)
		}
		q := u.Query()
		checks := map[string]string{
			"state":         "state-1",
			"scope":         "scope-a scope-b",
			"access_type":   "offline",
			"prompt":        "consent",
			"client_id":     "client-id",
			"response_type": "code",
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("%s: expected %q, got %q", k, want, got)
			}
		}
	})

	t.Run("Exchange is single use", func(t *testing.T) {
		srv := gcaltest.NewServer()
		defer srv.Close()
		srv.AddCode("auth-code-1", gcaltest.Grant{RefreshToken: "r1", Scope: "scope-a scope-b", IDToken: "id-1"})
		p := newFakeProvider(t, srv)

		tok, err := p.Exchange(context.Background(), "auth-code-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.AccessToken == "" || tok.RefreshToken != "r1" || tok.Expiry.IsZero() {
			t.Errorf("unexpected token: %+v", tok)
		}
		if got := gcalendar.TokenString(tok, "scope"); got != "scope-a scope-b" {
			t.Errorf("unexpected scope: %q", got)
		}
		if got := gcalendar.TokenString(tok, "id_token"); got != "id-1" {
			t.Errorf("unexpected id token: %q", got)
		}

		_, err = p.Exchange(context.Background(), "auth-code-1")
		var re *oauth2.RetrieveError
		if !errors.As(err, &re) || re.ErrorCode != "invalid_grant" {
			t.Fatalf("expected invalid_grant on reuse, got %v", err)
		}
	})

	t.Run("Refresh keeps refresh token when not rotated", func(t *testing.T) {
		srv := gcaltest.NewServer()
		defer srv.Close()
		srv.AddRefreshToken(gcaltest.Grant{RefreshToken: "r1"})
		p := newFakeProvider(t, srv)

		tok, err := p.Refresh(context.Background(), "r1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.AccessToken == "" || tok.RefreshToken != "r1" {
			t.Errorf("unexpected token: %+v", tok)
		}
		if srv.RefreshCalls() != 1 {
			t.Errorf("expected 1 refresh call, got %d", srv.RefreshCalls())
		}
	})

	t.Run("Refresh rejected after revocation", func(t *testing.T) {
		srv := gcaltest.NewServer()
		defer srv.Close()
		srv.AddRefreshToken(gcaltest.Grant{RefreshToken: "r1"})
		srv.RevokeRefreshToken("r1")
		p := newFakeProvider(t, srv)

		_, err := p.Refresh(context.Background(), "r1")
		var re *oauth2.RetrieveError
		if !errors.As(err, &re) || re.ErrorCode != "invalid_grant" {
			t.Fatalf("expected invalid_grant, got %v", err)
		}
	})

	t.Run("Refresh requires a token", func(t *testing.T) {
		p, _ := gcalendar.NewOAuthProvider(gcalendar.OAuthConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x"})
		if _, err := p.Refresh(context.Background(), ""); err == nil {
			t.Errorf("expected error")
		}
	})

	t.Run("TokenString on nil token", func(t *testing.T) {
		if got := gcalendar.TokenString(nil, "scope"); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
