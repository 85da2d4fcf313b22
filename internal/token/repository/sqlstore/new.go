package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"calendar-integration/internal/token/repository"
	"calendar-integration/pkg/log"
)

// Dialect selects dialect-specific DDL. Queries themselves are shared.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

type implRepository struct {
	db      *sql.DB
	dialect Dialect
	l       log.Logger
	now     func() time.Time
}

// New creates a SQL-backed Repository over an open db.
// Call Migrate before first use if the table may not exist.
func New(db *sql.DB, dialect Dialect, l log.Logger) repository.Repository {
	if db == nil {
		panic("token/repository/sqlstore: db is required")
	}
	return &implRepository{db: db, dialect: dialect, l: l, now: time.Now}
}

func (r *implRepository) Close() error {
	return r.db.Close()
}

// dsn is a helper to return a method-scoped context string for logging.
func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("token/repository/sqlstore.%s", method)
}
