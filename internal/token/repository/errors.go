package repository

import "errors"

var (
	ErrNotFound           = errors.New("credential not found")
	ErrFailedToUpsert     = errors.New("failed to upsert credential")
	ErrFailedToGet        = errors.New("failed to get credential")
	ErrFailedToUpdate     = errors.New("failed to update credential")
	ErrInvalidOptions     = errors.New("invalid repository options")
	ErrUnsupportedBackend = errors.New("unsupported token store backend")
)
