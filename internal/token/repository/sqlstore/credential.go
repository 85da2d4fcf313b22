package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"calendar-integration/internal/model"
	repo "calendar-integration/internal/token/repository"
)

// Upsert relies on the primary key on user_id plus ON CONFLICT, so concurrent
// writers for one user never produce a second row.
func (r *implRepository) Upsert(ctx context.Context, opt repo.UpsertOptions) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, access_token, refresh_token, scope, token_type, expiry_date, id_token, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token  = excluded.access_token,
			refresh_token = excluded.refresh_token,
			scope         = excluded.scope,
			token_type    = excluded.token_type,
			expiry_date   = excluded.expiry_date,
			id_token      = excluded.id_token,
			updated_at    = excluded.updated_at`, tableName)

	c := opt.Credential
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	_, err := r.db.ExecContext(ctx, query,
		c.UserID,
		c.AccessToken,
		nullString(c.RefreshToken),
		c.ScopeString(),
		c.TokenType,
		c.Expiry.UTC(),
		nullString(c.IDToken),
		updatedAt.UTC(),
	)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("Upsert"), err)
		return repo.ErrFailedToUpsert
	}
	return nil
}

func (r *implRepository) Find(ctx context.Context, userID string) (model.Credential, error) {
	query := fmt.Sprintf(`
		SELECT user_id, access_token, refresh_token, scope, token_type, expiry_date, id_token, updated_at
		FROM %s WHERE user_id = $1 LIMIT 1`, tableName)

	var (
		c            model.Credential
		refreshToken sql.NullString
		idToken      sql.NullString
		scope        string
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&c.UserID, &c.AccessToken, &refreshToken, &scope, &c.TokenType, &c.Expiry, &idToken, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, repo.ErrNotFound
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("Find"), err)
		return model.Credential{}, repo.ErrFailedToGet
	}

	c.RefreshToken = refreshToken.String
	c.IDToken = idToken.String
	c.Scope = model.ParseScope(scope)
	c.Expiry = c.Expiry.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

// UpdatePartial issues a single UPDATE so the supplied field set lands atomically.
func (r *implRepository) UpdatePartial(ctx context.Context, opt repo.UpdatePartialOptions) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	set, args := r.buildUpdatePartialQuery(opt)
	query := fmt.Sprintf("UPDATE %s SET %s", tableName, set)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("UpdatePartial"), err)
		return repo.ErrFailedToUpdate
	}
	n, err := res.RowsAffected()
	if err != nil {
		r.l.Errorf(ctx, "%s rows affected: %v", r.dsn("UpdatePartial"), err)
		return repo.ErrFailedToUpdate
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
