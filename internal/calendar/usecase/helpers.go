package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calendar-integration/internal/calendar"
	"calendar-integration/internal/model"
	"calendar-integration/internal/token/repository"
	"calendar-integration/pkg/gcalendar"
)

// loadCredential reads the user's credential from the store.
func (uc *implUseCase) loadCredential(ctx context.Context, userID string) (model.Credential, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Credential{}, fmt.Errorf("%w: user id is required", calendar.ErrInvalidInput)
	}

	cred, err := uc.repo.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Credential{}, calendar.ErrUserNotRegistered
		}
		uc.l.Errorf(ctx, "calendar.loadCredential Find: user_id=%s err=%v", userID, err)
		return model.Credential{}, err
	}
	return cred, nil
}

// freshClient loads the credential, refreshes it if needed and builds a provider client.
func (uc *implUseCase) freshClient(ctx context.Context, userID string) (*gcalendar.Client, error) {
	cred, err := uc.loadCredential(ctx, userID)
	if err != nil {
		return nil, err
	}

	cred, err = uc.session.EnsureFresh(ctx, cred)
	if err != nil {
		return nil, unregisteredIfGone(err)
	}

	return uc.clients.NewClient(ctx, cred.AccessToken, cred.TokenType)
}

// unregisteredIfGone reports a credential removed while it was being refreshed
// as ErrUserNotRegistered, so the caller is sent back through consent.
func unregisteredIfGone(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", calendar.ErrUserNotRegistered, err)
	}
	return err
}

// normalizeRange converts both ends of r to UTC instants.
func (uc *implUseCase) normalizeRange(r model.TimeRange) (time.Time, time.Time, error) {
	start, err := uc.normalizer.ToUTCInstant(r.StartLocal, r.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range start: %w", err)
	}
	end, err := uc.normalizer.ToUTCInstant(r.EndLocal, r.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range end: %w", err)
	}
	return start, end, nil
}

func (uc *implUseCase) calendarOrDefault(id string) string {
	if strings.TrimSpace(id) == "" {
		return uc.calendarID
	}
	return id
}
