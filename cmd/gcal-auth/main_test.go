package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	calendarUC "calendar-integration/internal/calendar/usecase"
	"calendar-integration/internal/oauth"
	oauthUC "calendar-integration/internal/oauth/usecase"
	"calendar-integration/internal/token/repository"
	"calendar-integration/internal/token/repository/memory"
	"calendar-integration/pkg/datemath"
	"calendar-integration/pkg/gcalendar"
	"calendar-integration/pkg/gcalendar/gcaltest"
	"calendar-integration/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunConsent(t *testing.T) {
	srv := gcaltest.NewServer()
	defer srv.Close()
	repo := memory.New()

	provider, err := gcalendar.NewOAuthProvider(gcalendar.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/v1/calendar/oauth/callback",
		Endpoint:     srv.Endpoint(),
	})
	require.NoError(t, err)
	normalizer, err := datemath.NewNormalizer(0)
	require.NoError(t, err)

	l := log.NewNop()
	session := oauthUC.New(l, provider, repo, oauth.Config{})
	adapter := calendarUC.New(l, normalizer, repo, session,
		gcalendar.ClientFactory{Endpoint: srv.CalendarEndpoint()}, calendarUC.Config{})

	t.Run("stores credential for pasted code", func(t *testing.T) {
		srv.AddCode("code-1", gcaltest.Grant{RefreshToken: "refresh-1", Scope: "https://www.googleapis.com/auth/calendar"})
		var out bytes.Buffer

		err := runConsent(context.Background(), adapter, "alice", nil, strings.NewReader(" code-1 \n"), &out)
		require.NoError(t, err)

		assert.Contains(t, out.String(), "access_type=offline")
		assert.Contains(t, out.String(), "Stored credential for alice")
		assert.NotContains(t, out.String(), "refresh-1")

		cred, err := repo.Find(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "refresh-1", cred.RefreshToken)
	})

	t.Run("warns when no refresh token is issued", func(t *testing.T) {
		srv.AddCode("code-2", gcaltest.Grant{})
		var out bytes.Buffer

		require.NoError(t, runConsent(context.Background(), adapter, "bob", nil, strings.NewReader("code-2"), &out))
		assert.Contains(t, out.String(), "no refresh token")
	})

	t.Run("empty code", func(t *testing.T) {
		var out bytes.Buffer
		err := runConsent(context.Background(), adapter, "carol", nil, strings.NewReader("\n"), &out)
		require.Error(t, err)
		_, findErr := repo.Find(context.Background(), "carol")
		assert.ErrorIs(t, findErr, repository.ErrNotFound)
	})

	t.Run("rejected code", func(t *testing.T) {
		var out bytes.Buffer
		err := runConsent(context.Background(), adapter, "dave", nil, strings.NewReader("never-issued\n"), &out)
		require.Error(t, err)
	})

	t.Run("blank user", func(t *testing.T) {
		var out bytes.Buffer
		require.Error(t, runConsent(context.Background(), adapter, "  ", nil, strings.NewReader("x\n"), &out))
		assert.Empty(t, out.String())
	})
}
