package sqlstore

import (
	"fmt"
	"strings"

	repo "calendar-integration/internal/token/repository"
)

// buildUpdatePartialQuery builds "col = $n, ... WHERE user_id = $m" + args for UpdatePartial.
// Placeholders are numbered in order of appearance and each is used once.
func (r *implRepository) buildUpdatePartialQuery(opt repo.UpdatePartialOptions) (string, []any) {
	var sets []string
	var args []any
	idx := 1

	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if opt.AccessToken != nil {
		add("access_token", *opt.AccessToken)
	}
	if opt.RefreshToken != nil {
		add("refresh_token", nullString(*opt.RefreshToken))
	}
	if opt.Scope != nil {
		add("scope", strings.Join(opt.Scope, " "))
	}
	if opt.TokenType != nil {
		add("token_type", *opt.TokenType)
	}
	if opt.Expiry != nil {
		add("expiry_date", opt.Expiry.UTC())
	}
	if opt.IDToken != nil {
		add("id_token", nullString(*opt.IDToken))
	}
	add("updated_at", r.now().UTC())

	where := fmt.Sprintf("user_id = $%d", idx)
	args = append(args, opt.UserID)

	return strings.Join(sets, ", ") + " WHERE " + where, args
}
