package badger

import (
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"

	"calendar-integration/internal/token/repository"
	"calendar-integration/pkg/log"
)

const (
	keyPrefix = "calendar_tokens/"

	// maxConflictRetries bounds how often a write is retried after losing an
	// optimistic transaction race to a concurrent writer for the same user.
	maxConflictRetries = 16
)

type implRepository struct {
	db  *badgerdb.DB
	l   log.Logger
	now func() time.Time
}

// New creates a Badger-backed Repository. The repository owns db and closes it on Close.
func New(db *badgerdb.DB, l log.Logger) repository.Repository {
	if db == nil {
		panic("token/repository/badger: db is required")
	}
	return &implRepository{db: db, l: l, now: time.Now}
}

// Open opens (or creates) a Badger database at dir. An empty dir opens an in-memory database.
func Open(dir string) (*badgerdb.DB, error) {
	opts := badgerdb.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("token/repository/badger: open %q: %w", dir, err)
	}
	return db, nil
}

func (r *implRepository) Close() error {
	return r.db.Close()
}

func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("token/repository/badger.%s", method)
}

func key(userID string) []byte {
	return []byte(keyPrefix + userID)
}
