package usecase

import (
	"errors"
	"net/http"

	"calendar-integration/internal/model"
	"calendar-integration/internal/oauth"
	"calendar-integration/pkg/gcalendar"

	"golang.org/x/oauth2"
)

// isRejected reports whether the token endpoint refused the grant itself,
// as opposed to a transport or server failure.
func isRejected(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	if re.ErrorCode == "invalid_grant" {
		return true
	}
	if re.Response == nil {
		return false
	}
	return re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized
}

func toTokens(tok *oauth2.Token) oauth.Tokens {
	return oauth.Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scope:        model.ParseScope(gcalendar.TokenString(tok, "scope")),
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry.UTC(),
		IDToken:      gcalendar.TokenString(tok, "id_token"),
	}
}
