package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

const tableName = "calendar_tokens"

func schema(dialect Dialect) string {
	tsType := "TIMESTAMP"
	if dialect == DialectPostgres {
		tsType = "TIMESTAMPTZ"
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			user_id       TEXT PRIMARY KEY,
			access_token  TEXT NOT NULL,
			refresh_token TEXT,
			scope         TEXT NOT NULL DEFAULT '',
			token_type    TEXT NOT NULL DEFAULT '',
			expiry_date   %s NOT NULL,
			id_token      TEXT,
			updated_at    %s NOT NULL
		)`, tableName, tsType, tsType)
}

// Migrate creates the token table when missing. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if _, err := db.ExecContext(ctx, schema(dialect)); err != nil {
		return fmt.Errorf("token/repository/sqlstore: migrate: %w", err)
	}
	return nil
}
