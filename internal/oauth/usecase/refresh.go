package usecase

import (
	"context"
	"fmt"
	"time"

	"calendar-integration/internal/model"
	"calendar-integration/internal/oauth"
	"calendar-integration/internal/token/repository"
)

// EnsureFresh refreshes cred only when its access token expires within the margin.
// A zero expiry is treated as expired.
func (uc *implUseCase) EnsureFresh(ctx context.Context, cred model.Credential) (model.Credential, error) {
	if !cred.Expiry.IsZero() && cred.Expiry.After(uc.now().Add(uc.margin)) {
		return cred, nil
	}
	return uc.Refresh(ctx, cred)
}

// Refresh redeems cred's refresh token and persists the merged credential.
// The store is not touched unless the provider call succeeds.
func (uc *implUseCase) Refresh(ctx context.Context, cred model.Credential) (model.Credential, error) {
	if !cred.HasRefreshToken() {
		uc.l.Warnf(ctx, "credential refresh failed: user_id=%s reason=no_refresh_token", cred.UserID)
		return model.Credential{}, oauth.ErrRefreshTokenMissing
	}

	tok, err := uc.provider.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		uc.l.Warnf(ctx, "credential refresh failed: user_id=%s err=%v", cred.UserID, err)
		if isRejected(err) {
			return model.Credential{}, fmt.Errorf("%w: %w", oauth.ErrRefreshRejected, err)
		}
		return model.Credential{}, fmt.Errorf("%w: %w", oauth.ErrRefreshFailed, err)
	}

	fresh := toTokens(tok)
	// the oauth2 refresher echoes the old refresh token back when none was issued
	if fresh.RefreshToken == cred.RefreshToken {
		fresh.RefreshToken = ""
	}

	if err := uc.repo.UpdatePartial(ctx, refreshUpdate(cred.UserID, fresh)); err != nil {
		uc.l.Errorf(ctx, "oauth.Refresh UpdatePartial: user_id=%s err=%v", cred.UserID, err)
		return model.Credential{}, fmt.Errorf("persist refreshed credential: %w", err)
	}

	merged := oauth.MergeRefreshed(cred, fresh, uc.now())
	uc.l.Infof(ctx, "credential refreshed: user_id=%s expiry=%s rotated=%t",
		cred.UserID, merged.Expiry.Format(time.RFC3339), fresh.RefreshToken != "")
	return merged, nil
}

// refreshUpdate writes the fields MergeRefreshed would change, leaving the
// stored refresh token alone when the provider did not issue a new one.
func refreshUpdate(userID string, fresh oauth.Tokens) repository.UpdatePartialOptions {
	expiry := fresh.Expiry.UTC()
	opt := repository.UpdatePartialOptions{
		UserID:      userID,
		AccessToken: &fresh.AccessToken,
		Expiry:      &expiry,
	}
	if fresh.RefreshToken != "" {
		opt.RefreshToken = &fresh.RefreshToken
	}
	if len(fresh.Scope) > 0 {
		opt.Scope = fresh.Scope
	}
	if fresh.TokenType != "" {
		opt.TokenType = &fresh.TokenType
	}
	if fresh.IDToken != "" {
		opt.IDToken = &fresh.IDToken
	}
	return opt
}
