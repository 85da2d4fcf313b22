package memory

import (
	"context"

	"calendar-integration/internal/model"
	"calendar-integration/internal/token/repository"
)

func (r *implRepository) Upsert(ctx context.Context, opt repository.UpsertOptions) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	c := clone(opt.Credential)
	c.Expiry = c.Expiry.UTC()
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = r.now()
	}
	c.UpdatedAt = c.UpdatedAt.UTC()

	r.mu.Lock()
	r.records[c.UserID] = c
	r.mu.Unlock()
	return nil
}

func (r *implRepository) Find(ctx context.Context, userID string) (model.Credential, error) {
	r.mu.RLock()
	c, ok := r.records[userID]
	r.mu.RUnlock()
	if !ok {
		return model.Credential{}, repository.ErrNotFound
	}
	return clone(c), nil
}

func (r *implRepository) UpdatePartial(ctx context.Context, opt repository.UpdatePartialOptions) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.records[opt.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	opt.Apply(&c, r.now())
	r.records[opt.UserID] = c
	return nil
}
