package usecase

import (
	"time"

	"calendar-integration/internal/oauth"
	"calendar-integration/internal/token/repository"
	pkgLog "calendar-integration/pkg/log"
)

// implUseCase is the private implementation of oauth.Manager.
type implUseCase struct {
	l        pkgLog.Logger
	provider oauth.Provider
	repo     repository.CredentialRepository
	scopes   []string
	policy   oauth.ConsentPolicy
	margin   time.Duration
	now      func() time.Time
}

// New creates a session manager that persists refreshed credentials to repo.
func New(l pkgLog.Logger, provider oauth.Provider, repo repository.CredentialRepository, cfg oauth.Config) *implUseCase {
	if provider == nil || repo == nil {
		panic("oauth: provider and repository are required")
	}

	uc := &implUseCase{
		l:        l,
		provider: provider,
		repo:     repo,
		scopes:   append([]string(nil), cfg.Scopes...),
		policy:   cfg.Policy,
		margin:   cfg.RefreshMargin,
		now:      cfg.Now,
	}
	if uc.policy == (oauth.ConsentPolicy{}) {
		uc.policy = oauth.DefaultConsentPolicy
	}
	if uc.margin <= 0 {
		uc.margin = oauth.DefaultRefreshMargin
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}
