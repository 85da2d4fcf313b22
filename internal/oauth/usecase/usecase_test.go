package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"calendar-integration/internal/model"
	"calendar-integration/internal/oauth"
	"calendar-integration/internal/oauth/usecase"
	"calendar-integration/internal/token/repository"
	"calendar-integration/internal/token/repository/memory"
	"calendar-integration/pkg/gcalendar"
	"calendar-integration/pkg/gcalendar/gcaltest"
	pkgLog "calendar-integration/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	mu           sync.Mutex
	refreshCalls int
	refreshErr   error
	refreshTok   *oauth2.Token
	exchangeErr  error
	exchangeTok  *oauth2.Token
	authOpts     int
}

func (p *fakeProvider) AuthCodeURL(state string, scopes []string, opts ...oauth2.AuthCodeOption) string {
	p.authOpts = len(opts)
	cfg := oauth2.Config{ClientID: "c", Scopes: scopes, Endpoint: oauth2.Endpoint{AuthURL: "https://auth.example.com/o"}}
	return cfg.AuthCodeURL(state, opts...)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.exchangeTok, nil
}

func (p *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshCalls++
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	tok := *p.refreshTok
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return &tok, nil
}

// countingRepo records every write so tests can assert none happened.
type countingRepo struct {
	repository.Repository
	writes int
}

func (r *countingRepo) Upsert(ctx context.Context, opt repository.UpsertOptions) error {
	r.writes++
	return r.Repository.Upsert(ctx, opt)
}

func (r *countingRepo) UpdatePartial(ctx context.Context, opt repository.UpdatePartialOptions) error {
	r.writes++
	return r.Repository.UpdatePartial(ctx, opt)
}

func retrieveError(status int, code string) error {
	return &oauth2.RetrieveError{Response: &http.Response{StatusCode: status}, ErrorCode: code}
}

func seed(t *testing.T, repo repository.Repository, c model.Credential) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), repository.UpsertOptions{Credential: c}))
}

func newManager(p oauth.Provider, repo repository.CredentialRepository) oauth.Manager {
	return usecase.New(pkgLog.NewNop(), p, repo, oauth.Config{
		Scopes: []string{"scope-a"},
		Now:    func() time.Time { return now },
	})
}

func TestBuildConsentURL(t *testing.T) {
	p := &fakeProvider{}
	m := newManager(p, memory.New())

	t.Run("defaults scopes and forces offline consent", func(t *testing.T) {
		u, err := url.Parse(m.BuildConsentURL("state-1", nil))
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "scope-a", q.Get("scope"))
		assert.Equal(t, "offline", q.Get("access_type"))
		assert.Equal(t, "consent", q.Get("prompt"))
		assert.Equal(t, "state-1", q.Get("state"))
		assert.Equal(t, 2, p.authOpts)
	})

	t.Run("explicit scopes win", func(t *testing.T) {
		u, err := url.Parse(m.BuildConsentURL("s", []string{"x", "y"}))
		require.NoError(t, err)
		assert.Equal(t, "x y", u.Query().Get("scope"))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, m.BuildConsentURL("s", nil), m.BuildConsentURL("s", nil))
	})
}

func TestExchangeCode(t *testing.T) {
	t.Run("success maps token fields", func(t *testing.T) {
		tok := (&oauth2.Token{AccessToken: "a1", RefreshToken: "r1", TokenType: "Bearer", Expiry: now.Add(time.Hour)}).
			WithExtra(map[string]any{"scope": "s1 s2", "id_token": "id-1"})
		m := newManager(&fakeProvider{exchangeTok: tok}, memory.New())

		got, err := m.ExchangeCode(context.Background(), "auth-code-1")
		require.NoError(t, err)
		assert.Equal(t, oauth.Tokens{
			AccessToken: "a1", RefreshToken: "r1", Scope: []string{"s1", "s2"},
			TokenType: "Bearer", Expiry: now.Add(time.Hour), IDToken: "id-1",
		}, got)
	})

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"invalid_grant", retrieveError(http.StatusBadRequest, "invalid_grant"), oauth.ErrInvalidGrant},
		{"unauthorized client", retrieveError(http.StatusUnauthorized, "invalid_client"), oauth.ErrInvalidGrant},
		{"server error", retrieveError(http.StatusInternalServerError, ""), oauth.ErrExchangeFailed},
		{"transport error", errors.New("connection refused"), oauth.ErrExchangeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(&fakeProvider{exchangeErr: tt.err}, memory.New())
			_, err := m.ExchangeCode(context.Background(), "code")
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("empty code", func(t *testing.T) {
		m := newManager(&fakeProvider{}, memory.New())
		_, err := m.ExchangeCode(context.Background(), " ")
		assert.ErrorIs(t, err, oauth.ErrInvalidGrant)
	})
}

func TestEnsureFresh(t *testing.T) {
	base := model.Credential{
		UserID:       "user-1",
		AccessToken:  "a-old",
		RefreshToken: "r1",
		Scope:        []string{"scope-a"},
		TokenType:    "Bearer",
	}

	t.Run("fresh credential is returned unchanged", func(t *testing.T) {
		p := &fakeProvider{}
		repo := &countingRepo{Repository: memory.New()}
		cred := base
		cred.Expiry = now.Add(time.Hour)

		got, err := newManager(p, repo).EnsureFresh(context.Background(), cred)
		require.NoError(t, err)
		assert.Equal(t, cred, got)
		assert.Zero(t, p.refreshCalls)
		assert.Zero(t, repo.writes)
	})

	t.Run("expiry inside the margin triggers refresh", func(t *testing.T) {
		p := &fakeProvider{refreshTok: &oauth2.Token{AccessToken: "a-new", Expiry: now.Add(time.Hour)}}
		repo := memory.New()
		cred := base
		cred.Expiry = now.Add(2 * time.Minute)
		seed(t, repo, cred)

		got, err := newManager(p, repo).EnsureFresh(context.Background(), cred)
		require.NoError(t, err)
		assert.Equal(t, "a-new", got.AccessToken)
		assert.Equal(t, 1, p.refreshCalls)
	})

	t.Run("expired credential refreshes once and keeps refresh token", func(t *testing.T) {
		p := &fakeProvider{refreshTok: &oauth2.Token{AccessToken: "a-new", TokenType: "Bearer", Expiry: now.Add(time.Hour)}}
		repo := memory.New()
		cred := base
		cred.Expiry = now.Add(-time.Hour)
		seed(t, repo, cred)

		got, err := newManager(p, repo).EnsureFresh(context.Background(), cred)
		require.NoError(t, err)
		assert.Equal(t, 1, p.refreshCalls)
		assert.Equal(t, "a-new", got.AccessToken)
		assert.Equal(t, "r1", got.RefreshToken)
		assert.Equal(t, now.Add(time.Hour), got.Expiry)

		stored, err := repo.Find(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "a-new", stored.AccessToken)
		assert.Equal(t, "r1", stored.RefreshToken)
		assert.True(t, stored.Expiry.Equal(now.Add(time.Hour)))
	})

	t.Run("rotated refresh token is stored", func(t *testing.T) {
		p := &fakeProvider{refreshTok: &oauth2.Token{AccessToken: "a-new", RefreshToken: "r2", Expiry: now.Add(time.Hour)}}
		repo := memory.New()
		cred := base
		cred.Expiry = now.Add(-time.Hour)
		seed(t, repo, cred)

		got, err := newManager(p, repo).EnsureFresh(context.Background(), cred)
		require.NoError(t, err)
		assert.Equal(t, "r2", got.RefreshToken)

		stored, err := repo.Find(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "r2", stored.RefreshToken)
	})

	t.Run("zero expiry is treated as expired", func(t *testing.T) {
		p := &fakeProvider{refreshTok: &oauth2.Token{AccessToken: "a-new", Expiry: now.Add(time.Hour)}}
		repo := memory.New()
		seed(t, repo, base)

		_, err := newManager(p, repo).EnsureFresh(context.Background(), base)
		require.NoError(t, err)
		assert.Equal(t, 1, p.refreshCalls)
	})

	t.Run("missing refresh token fails without store mutation", func(t *testing.T) {
		p := &fakeProvider{}
		repo := &countingRepo{Repository: memory.New()}
		cred := base
		cred.RefreshToken = ""
		cred.Expiry = now.Add(-time.Hour)
		seed(t, repo.Repository, cred)

		_, err := newManager(p, repo).EnsureFresh(context.Background(), cred)
		assert.ErrorIs(t, err, oauth.ErrRefreshTokenMissing)
		assert.Zero(t, p.refreshCalls)
		assert.Zero(t, repo.writes)

		stored, err := repo.Find(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "a-old", stored.AccessToken)
	})

	failures := []struct {
		name string
		err  error
		want error
	}{
		{"revoked token is rejected", retrieveError(http.StatusBadRequest, "invalid_grant"), oauth.ErrRefreshRejected},
		{"server failure is transient", retrieveError(http.StatusServiceUnavailable, ""), oauth.ErrRefreshFailed},
		{"transport failure is transient", errors.New("dial tcp: timeout"), oauth.ErrRefreshFailed},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{refreshErr: tt.err}
			repo := &countingRepo{Repository: memory.New()}
			cred := base
			cred.Expiry = now.Add(-time.Hour)

			_, err := newManager(p, repo).EnsureFresh(context.Background(), cred)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, p.refreshCalls)
			assert.Zero(t, repo.writes)
		})
	}

	t.Run("credential deleted during refresh", func(t *testing.T) {
		p := &fakeProvider{refreshTok: &oauth2.Token{AccessToken: "a-new", Expiry: now.Add(time.Hour)}}
		cred := base
		cred.Expiry = now.Add(-time.Hour)

		_, err := newManager(p, memory.New()).EnsureFresh(context.Background(), cred)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("refreshes even when not expired", func(t *testing.T) {
		p := &fakeProvider{refreshTok: &oauth2.Token{AccessToken: "a-new", Expiry: now.Add(time.Hour)}}
		repo := memory.New()
		cred := model.Credential{UserID: "user-1", AccessToken: "a-old", RefreshToken: "r1", Expiry: now.Add(30 * time.Minute)}
		seed(t, repo, cred)

		got, err := newManager(p, repo).Refresh(context.Background(), cred)
		require.NoError(t, err)
		assert.Equal(t, "a-new", got.AccessToken)
		assert.Equal(t, 1, p.refreshCalls)
	})

	t.Run("concurrent refreshes converge", func(t *testing.T) {
		p := &fakeProvider{refreshTok: &oauth2.Token{AccessToken: "a-new", Expiry: now.Add(time.Hour)}}
		repo := memory.New()
		cred := model.Credential{UserID: "user-1", AccessToken: "a-old", RefreshToken: "r1", Expiry: now.Add(-time.Hour)}
		seed(t, repo, cred)
		m := newManager(p, repo)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := m.EnsureFresh(context.Background(), cred)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored, err := repo.Find(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "a-new", stored.AccessToken)
		assert.Equal(t, "r1", stored.RefreshToken)
	})
}

func TestManagerAgainstProvider(t *testing.T) {
	srv := gcaltest.NewServer()
	defer srv.Close()
	srv.AddCode("auth-code-1", gcaltest.Grant{RefreshToken: "r1", Scope: "scope-a"})

	provider, err := gcalendar.NewOAuthProvider(gcalendar.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/callback",
		Endpoint:     srv.Endpoint(),
	})
	require.NoError(t, err)

	repo := memory.New()
	m := usecase.New(pkgLog.NewNop(), provider, repo, oauth.Config{})
	ctx := context.Background()

	tokens, err := m.ExchangeCode(ctx, "auth-code-1")
	require.NoError(t, err)
	assert.Equal(t, "r1", tokens.RefreshToken)
	assert.Equal(t, []string{"scope-a"}, tokens.Scope)

	_, err = m.ExchangeCode(ctx, "auth-code-1")
	assert.ErrorIs(t, err, oauth.ErrInvalidGrant)

	cred := tokens.Credential("user-1", time.Now())
	require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: cred}))

	refreshed, err := m.Refresh(ctx, cred)
	require.NoError(t, err)
	assert.NotEqual(t, cred.AccessToken, refreshed.AccessToken)
	assert.Equal(t, "r1", refreshed.RefreshToken)
	assert.Equal(t, 1, srv.RefreshCalls())

	srv.RevokeRefreshToken("r1")
	_, err = m.Refresh(ctx, refreshed)
	assert.ErrorIs(t, err, oauth.ErrRefreshRejected)
}
