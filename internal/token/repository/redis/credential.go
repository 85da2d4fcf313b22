package redis

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"calendar-integration/internal/model"
	repo "calendar-integration/internal/token/repository"
)

const (
	fieldUserID       = "user_id"
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldScope        = "scope"
	fieldTokenType    = "token_type"
	fieldExpiry       = "expiry_date"
	fieldIDToken      = "id_token"
	fieldUpdatedAt    = "updated_at"
)

// Upsert replaces the whole hash inside MULTI/EXEC so readers never observe a
// mix of old and new fields.
func (r *implRepository) Upsert(ctx context.Context, opt repo.UpsertOptions) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	c := opt.Credential
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}
	key := r.key(c.UserID)

	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldUserID, c.UserID,
			fieldAccessToken, c.AccessToken,
			fieldRefreshToken, c.RefreshToken,
			fieldScope, c.ScopeString(),
			fieldTokenType, c.TokenType,
			fieldExpiry, formatTime(c.Expiry),
			fieldIDToken, c.IDToken,
			fieldUpdatedAt, formatTime(updatedAt),
		)
		return nil
	})
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("Upsert"), err)
		return repo.ErrFailedToUpsert
	}
	return nil
}

func (r *implRepository) Find(ctx context.Context, userID string) (model.Credential, error) {
	fields, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("Find"), err)
		return model.Credential{}, repo.ErrFailedToGet
	}
	if len(fields) == 0 {
		return model.Credential{}, repo.ErrNotFound
	}

	expiry, err := parseTime(fields[fieldExpiry])
	if err != nil {
		r.l.Errorf(ctx, "%s expiry: %v", r.dsn("Find"), err)
		return model.Credential{}, repo.ErrFailedToGet
	}
	updatedAt, _ := parseTime(fields[fieldUpdatedAt])

	return model.Credential{
		UserID:       fields[fieldUserID],
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
		Scope:        model.ParseScope(fields[fieldScope]),
		TokenType:    fields[fieldTokenType],
		Expiry:       expiry,
		IDToken:      fields[fieldIDToken],
		UpdatedAt:    updatedAt,
	}, nil
}

func (r *implRepository) UpdatePartial(ctx context.Context, opt repo.UpdatePartialOptions) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	var args []any
	if opt.AccessToken != nil {
		args = append(args, fieldAccessToken, *opt.AccessToken)
	}
	if opt.RefreshToken != nil {
		args = append(args, fieldRefreshToken, *opt.RefreshToken)
	}
	if opt.Scope != nil {
		args = append(args, fieldScope, strings.Join(opt.Scope, " "))
	}
	if opt.TokenType != nil {
		args = append(args, fieldTokenType, *opt.TokenType)
	}
	if opt.Expiry != nil {
		args = append(args, fieldExpiry, formatTime(*opt.Expiry))
	}
	if opt.IDToken != nil {
		args = append(args, fieldIDToken, *opt.IDToken)
	}
	args = append(args, fieldUpdatedAt, formatTime(r.now()))

	updated, err := updateIfExists.Run(ctx, r.client, []string{r.key(opt.UserID)}, args...).Int()
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("UpdatePartial"), err)
		return repo.ErrFailedToUpdate
	}
	if updated == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
