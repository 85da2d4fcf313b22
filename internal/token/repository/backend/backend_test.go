package backend_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-integration/internal/token/repository"
	"calendar-integration/internal/token/repository/backend"
	"calendar-integration/internal/token/repository/repotest"
	"calendar-integration/pkg/log"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		conn string
	}{
		{name: "memory", conn: "memory://"},
		{name: "sqlite file", conn: "sqlite://" + filepath.Join(t.TempDir(), "nested", "tokens.db")},
		{name: "sqlite in memory", conn: "sqlite://:memory:"},
		{name: "redis", conn: "redis://" + mr.Addr() + "/0"},
		{name: "badger in memory", conn: "badger://"},
		{name: "badger dir", conn: "badger://" + t.TempDir()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo, err := backend.Open(ctx, tt.conn, log.NewNop())
			require.NoError(t, err)
			defer repo.Close()

			require.NoError(t, repo.Upsert(ctx, repository.UpsertOptions{Credential: repotest.Credential("u1")}))
			got, err := repo.Find(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "access-u1", got.AccessToken)
		})
	}
}

func TestOpenRejectsUnknown(t *testing.T) {
	for _, conn := range []string{"", "mongodb://localhost:27017", "no-scheme"} {
		_, err := backend.Open(context.Background(), conn, log.NewNop())
		assert.ErrorIs(t, err, repository.ErrUnsupportedBackend, conn)
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://***@db:5432/tokens", backend.Redact("postgres://user:secret@db:5432/tokens"))
	assert.Equal(t, "memory://", backend.Redact("memory://"))
}
