// Package repotest holds the behaviour every token store backend must share.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-integration/internal/model"
	"calendar-integration/internal/token/repository"
)

// Factory returns a fresh, empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) repository.Repository

// Credential returns a fully populated credential for userID.
func Credential(userID string) model.Credential {
	return model.Credential{
		UserID:       userID,
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		Scope:        []string{"https://www.googleapis.com/auth/calendar", "openid"},
		TokenType:    "Bearer",
		Expiry:       time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC),
		IDToken:      "id-" + userID,
		UpdatedAt:    time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC),
	}
}

// Run exercises factory against the repository.CredentialRepository contract.
func Run(t *testing.T, factory Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("find missing user returns ErrNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Find(ctx, "nobody")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("upsert then find returns the record written", func(t *testing.T) {
		repo := factory(t)
		want := Credential("u1")
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: want}))

		got, err := repo.Find(ctx, "u1")
		require.NoError(t, err)
		assertCredential(t, want, got)
	})

	t.Run("upsert is idempotent", func(t *testing.T) {
		repo := factory(t)
		want := Credential("u1")
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: want}))
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: want}))

		got, err := repo.Find(ctx, "u1")
		require.NoError(t, err)
		assertCredential(t, want, got)
	})

	t.Run("second upsert replaces every field", func(t *testing.T) {
		repo := factory(t)
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: Credential("u1")}))

		replaced := model.Credential{
			UserID:      "u1",
			AccessToken: "access-2",
			Scope:       []string{"openid"},
			TokenType:   "Bearer",
			Expiry:      time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: replaced}))

		got, err := repo.Find(ctx, "u1")
		require.NoError(t, err)
		assertCredential(t, replaced, got)
		assert.Empty(t, got.RefreshToken)
		assert.Empty(t, got.IDToken)
	})

	t.Run("records are isolated per user", func(t *testing.T) {
		repo := factory(t)
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: Credential("u1")}))
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: Credential("u2")}))

		got, err := repo.Find(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, "access-u2", got.AccessToken)
	})

	t.Run("update partial writes only supplied fields", func(t *testing.T) {
		repo := factory(t)
		original := Credential("u1")
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: original}))

		access := "access-new"
		expiry := time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)
		require.NoError(t, repo.UpdatePartial(ctx, repository.UpdatePartialOptions{
			UserID:      "u1",
			AccessToken: &access,
			Expiry:      &expiry,
		}))

		got, err := repo.Find(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "access-new", got.AccessToken)
		assert.True(t, got.Expiry.Equal(expiry), "expiry %v", got.Expiry)
		assert.Equal(t, original.RefreshToken, got.RefreshToken)
		assert.Equal(t, original.Scope, got.Scope)
		assert.Equal(t, original.IDToken, got.IDToken)
		assert.Equal(t, original.TokenType, got.TokenType)
	})

	t.Run("update partial on missing user returns ErrNotFound", func(t *testing.T) {
		repo := factory(t)
		access := "x"
		err := repo.UpdatePartial(ctx, repository.UpdatePartialOptions{UserID: "ghost", AccessToken: &access})
		require.ErrorIs(t, err, repository.ErrNotFound)

		_, err = repo.Find(ctx, "ghost")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("invalid options are rejected", func(t *testing.T) {
		repo := factory(t)
		require.ErrorIs(t, repo.Upsert(ctx, repository.UpsertOptions{}), repository.ErrInvalidOptions)
		require.ErrorIs(t, repo.UpdatePartial(ctx, repository.UpdatePartialOptions{UserID: "u1"}), repository.ErrInvalidOptions)
	})

	t.Run("concurrent upserts keep one record", func(t *testing.T) {
		repo := factory(t)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				c := Credential("u1")
				c.AccessToken = fmt.Sprintf("access-%d", i)
				assert.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: c}))
			}(i)
		}
		wg.Wait()

		got, err := repo.Find(ctx, "u1")
		require.NoError(t, err)
		assert.Contains(t, got.AccessToken, "access-")
		assert.Equal(t, "refresh-u1", got.RefreshToken)
	})

	t.Run("concurrent partial updates converge", func(t *testing.T) {
		repo := factory(t)
		require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: Credential("u1")}))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				access := fmt.Sprintf("access-%d", i)
				expiry := time.Date(2024, 3, 10, 12, i, 0, 0, time.UTC)
				assert.NoError(t, repo.UpdatePartial(ctx, repository.UpdatePartialOptions{
					UserID:      "u1",
					AccessToken: &access,
					Expiry:      &expiry,
				}))
			}(i)
		}
		wg.Wait()

		got, err := repo.Find(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "refresh-u1", got.RefreshToken)
		// last writer wins, but access token and expiry always come from the same write
		var minute int
		_, scanErr := fmt.Sscanf(got.AccessToken, "access-%d", &minute)
		require.NoError(t, scanErr)
		assert.Equal(t, minute, got.Expiry.Minute())
	})
}

func assertCredential(t *testing.T, want, got model.Credential) {
	t.Helper()
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.Equal(t, want.Scope, got.Scope)
	assert.Equal(t, want.TokenType, got.TokenType)
	assert.Equal(t, want.IDToken, got.IDToken)
	assert.True(t, want.Expiry.Equal(got.Expiry), "expiry: want %v got %v", want.Expiry, got.Expiry)
	assert.Equal(t, time.UTC, got.Expiry.Location())
	assert.False(t, got.UpdatedAt.IsZero(), "updated_at must be stamped")
}
