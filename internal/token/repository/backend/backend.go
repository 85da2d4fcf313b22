// Package backend opens a token store from a connection string.
//
// Supported schemes:
//
//	memory://                    in-process map, for tests and local runs
//	sqlite://<path>              SQLite file (sqlite://:memory: for a private in-memory db)
//	postgres://..., postgresql:// PostgreSQL via lib/pq
//	redis://..., rediss://       Redis hash per user
//	badger://<dir>               embedded Badger KV (badger:// alone is in-memory)
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	goredis "github.com/redis/go-redis/v9"

	"calendar-integration/internal/token/repository"
	tokenbadger "calendar-integration/internal/token/repository/badger"
	"calendar-integration/internal/token/repository/memory"
	tokenredis "calendar-integration/internal/token/repository/redis"
	"calendar-integration/internal/token/repository/sqlstore"
	"calendar-integration/pkg/log"
)

// Open parses connectionString and returns a ready Repository. SQL backends are migrated.
func Open(ctx context.Context, connectionString string, l log.Logger) (repository.Repository, error) {
	connectionString = strings.TrimSpace(connectionString)
	if connectionString == "" {
		return nil, fmt.Errorf("%w: empty connection string", repository.ErrUnsupportedBackend)
	}

	scheme, rest, ok := strings.Cut(connectionString, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q has no scheme", repository.ErrUnsupportedBackend, Redact(connectionString))
	}

	switch strings.ToLower(scheme) {
	case "memory":
		return memory.New(), nil
	case "sqlite", "sqlite3":
		return openSQLite(ctx, rest, l)
	case "postgres", "postgresql":
		return openSQL(ctx, "postgres", connectionString, sqlstore.DialectPostgres, l)
	case "redis", "rediss":
		return openRedis(ctx, connectionString, l)
	case "badger":
		db, err := tokenbadger.Open(rest)
		if err != nil {
			return nil, err
		}
		return tokenbadger.New(db, l), nil
	default:
		return nil, fmt.Errorf("%w: scheme %q", repository.ErrUnsupportedBackend, scheme)
	}
}

func openSQLite(ctx context.Context, path string, l log.Logger) (repository.Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", repository.ErrUnsupportedBackend)
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("token store: create sqlite dir: %w", err)
		}
	}
	return openSQL(ctx, "sqlite3", path, sqlstore.DialectSQLite, l)
}

func openSQL(ctx context.Context, driver, dsn string, dialect sqlstore.Dialect, l log.Logger) (repository.Repository, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("token store: open %s: %w", driver, err)
	}
	if dialect == sqlstore.DialectSQLite {
		// one writer at a time; also keeps ":memory:" on a single database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("token store: ping %s: %w", driver, err)
	}
	if err := sqlstore.Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	return sqlstore.New(db, dialect, l), nil
}

func openRedis(ctx context.Context, url string, l log.Logger) (repository.Repository, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("token store: parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("token store: ping redis: %w", err)
	}
	return tokenredis.New(client, tokenredis.DefaultKeyPrefix, l), nil
}

// Redact drops the userinfo part of a connection string so it can be logged.
func Redact(connectionString string) string {
	if at := strings.LastIndex(connectionString, "@"); at >= 0 {
		if scheme, _, ok := strings.Cut(connectionString, "://"); ok {
			return scheme + "://***" + connectionString[at:]
		}
		return "***" + connectionString[at:]
	}
	return connectionString
}
