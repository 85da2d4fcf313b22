package usecase

import (
	"context"
	"fmt"
	"strings"

	"calendar-integration/internal/oauth"
)

// ExchangeCode trades code for tokens. A reused or expired code yields oauth.ErrInvalidGrant.
func (uc *implUseCase) ExchangeCode(ctx context.Context, code string) (oauth.Tokens, error) {
	if strings.TrimSpace(code) == "" {
		return oauth.Tokens{}, fmt.Errorf("%w: empty code", oauth.ErrInvalidGrant)
	}

	tok, err := uc.provider.Exchange(ctx, code)
	if err != nil {
		if isRejected(err) {
			uc.l.Warnf(ctx, "oauth.ExchangeCode: code rejected: %v", err)
			return oauth.Tokens{}, fmt.Errorf("%w: %w", oauth.ErrInvalidGrant, err)
		}
		uc.l.Errorf(ctx, "oauth.ExchangeCode: %v", err)
		return oauth.Tokens{}, fmt.Errorf("%w: %w", oauth.ErrExchangeFailed, err)
	}

	return toTokens(tok), nil
}
