package repository

import (
	"context"

	"calendar-integration/internal/model"
)

// Repository is the composed interface for the token store.
type Repository interface {
	CredentialRepository
	Close() error
}

// CredentialRepository stores at most one Credential per user id.
//
// Implementations must make Upsert and UpdatePartial atomic per user so that
// concurrent writers for the same user converge on a single record.
type CredentialRepository interface {
	// Upsert inserts or fully replaces the record for opt.Credential.UserID.
	Upsert(ctx context.Context, opt UpsertOptions) error
	// Find returns ErrNotFound when the user has no record.
	Find(ctx context.Context, userID string) (model.Credential, error)
	// UpdatePartial writes only the non-nil fields of opt. Returns ErrNotFound when the user has no record.
	UpdatePartial(ctx context.Context, opt UpdatePartialOptions) error
}
