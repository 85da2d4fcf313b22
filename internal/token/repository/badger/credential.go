package badger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"

	"calendar-integration/internal/model"
	repo "calendar-integration/internal/token/repository"
)

type record struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        []string  `json:"scope,omitempty"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry_date"`
	IDToken      string    `json:"id_token,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newRecord(c model.Credential) record {
	return record{
		UserID:       c.UserID,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Scope:        c.Scope,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry.UTC(),
		IDToken:      c.IDToken,
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

func (rec record) toCredential() model.Credential {
	return model.Credential{
		UserID:       rec.UserID,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		Scope:        rec.Scope,
		TokenType:    rec.TokenType,
		Expiry:       rec.Expiry.UTC(),
		IDToken:      rec.IDToken,
		UpdatedAt:    rec.UpdatedAt.UTC(),
	}
}

func (r *implRepository) Upsert(ctx context.Context, opt repo.UpsertOptions) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	c := opt.Credential
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = r.now()
	}
	value, err := json.Marshal(newRecord(c))
	if err != nil {
		r.l.Errorf(ctx, "%s marshal: %v", r.dsn("Upsert"), err)
		return repo.ErrFailedToUpsert
	}

	err = r.update(func(txn *badgerdb.Txn) error {
		return txn.Set(key(c.UserID), value)
	})
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("Upsert"), err)
		return repo.ErrFailedToUpsert
	}
	return nil
}

func (r *implRepository) Find(ctx context.Context, userID string) (model.Credential, error) {
	var rec record
	err := r.db.View(func(txn *badgerdb.Txn) error {
		return get(txn, userID, &rec)
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return model.Credential{}, repo.ErrNotFound
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("Find"), err)
		return model.Credential{}, repo.ErrFailedToGet
	}
	return rec.toCredential(), nil
}

// UpdatePartial reads, merges and writes inside one transaction; Badger aborts
// the commit with ErrConflict if another writer touched the key meanwhile.
func (r *implRepository) UpdatePartial(ctx context.Context, opt repo.UpdatePartialOptions) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	err := r.update(func(txn *badgerdb.Txn) error {
		var rec record
		if err := get(txn, opt.UserID, &rec); err != nil {
			return err
		}
		c := rec.toCredential()
		opt.Apply(&c, r.now())

		value, err := json.Marshal(newRecord(c))
		if err != nil {
			return err
		}
		return txn.Set(key(opt.UserID), value)
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return repo.ErrNotFound
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("UpdatePartial"), err)
		return repo.ErrFailedToUpdate
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on optimistic conflicts.
func (r *implRepository) update(fn func(txn *badgerdb.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = r.db.Update(fn)
		if !errors.Is(err, badgerdb.ErrConflict) {
			return err
		}
	}
	return err
}

func get(txn *badgerdb.Txn, userID string, rec *record) error {
	item, err := txn.Get(key(userID))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, rec)
	})
}
