package redis

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"calendar-integration/internal/token/repository"
	"calendar-integration/pkg/log"
)

// DefaultKeyPrefix namespaces the per-user hashes.
const DefaultKeyPrefix = "calendar_tokens:"

// updateIfExists writes the given field/value pairs only when the hash exists,
// in one server-side step.
var updateIfExists = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

type implRepository struct {
	client goredis.UniversalClient
	prefix string
	l      log.Logger
	now    func() time.Time
}

// New creates a Redis-backed Repository storing one hash per user.
func New(client goredis.UniversalClient, prefix string, l log.Logger) repository.Repository {
	if client == nil {
		panic("token/repository/redis: client is required")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &implRepository{client: client, prefix: prefix, l: l, now: time.Now}
}

func (r *implRepository) Close() error {
	return r.client.Close()
}

func (r *implRepository) key(userID string) string {
	return r.prefix + userID
}

func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("token/repository/redis.%s", method)
}
