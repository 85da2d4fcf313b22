package usecase

import (
	"context"
	"fmt"
	"strings"

	"calendar-integration/internal/calendar"
	"calendar-integration/internal/token/repository"
)

// Connect returns the consent URL for input.State.
func (uc *implUseCase) Connect(ctx context.Context, input calendar.ConnectInput) (calendar.ConnectOutput, error) {
	return calendar.ConnectOutput{URL: uc.session.BuildConsentURL(input.State, input.Scopes)}, nil
}

// Authorize exchanges the code and fully replaces the user's stored credential.
func (uc *implUseCase) Authorize(ctx context.Context, input calendar.AuthorizeInput) (calendar.AuthorizeOutput, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.Code) == "" {
		return calendar.AuthorizeOutput{}, fmt.Errorf("%w: user id and code are required", calendar.ErrInvalidInput)
	}

	tokens, err := uc.session.ExchangeCode(ctx, input.Code)
	if err != nil {
		return calendar.AuthorizeOutput{}, err
	}

	cred := tokens.Credential(input.UserID, uc.now())
	if err := uc.repo.Upsert(ctx, repository.UpsertOptions{Credential: cred}); err != nil {
		uc.l.Errorf(ctx, "calendar.Authorize Upsert: user_id=%s err=%v", input.UserID, err)
		return calendar.AuthorizeOutput{}, err
	}

	uc.l.Infof(ctx, "credential stored: user_id=%s has_refresh_token=%t", input.UserID, cred.HasRefreshToken())
	return calendar.AuthorizeOutput{Credential: cred}, nil
}

// RefreshAccessToken refreshes the stored credential regardless of its expiry.
func (uc *implUseCase) RefreshAccessToken(ctx context.Context, input calendar.RefreshInput) (calendar.RefreshOutput, error) {
	cred, err := uc.loadCredential(ctx, input.UserID)
	if err != nil {
		return calendar.RefreshOutput{}, err
	}

	refreshed, err := uc.session.Refresh(ctx, cred)
	if err != nil {
		return calendar.RefreshOutput{}, unregisteredIfGone(err)
	}
	return calendar.RefreshOutput{Credential: refreshed}, nil
}
