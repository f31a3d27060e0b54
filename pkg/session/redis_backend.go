package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys in Redis.
const DefaultRedisPrefix = "authkit:session:"

// RedisBackend implements Backend on Redis. Data is stored as JSON and
// expiry is delegated to key TTLs.
type RedisBackend struct {
	db     redis.UniversalClient
	prefix string
}

// NewRedisBackend wraps client. An empty prefix selects DefaultRedisPrefix.
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisBackend{db: client, prefix: prefix}
}

func (b *RedisBackend) Create(ctx context.Context, data map[string]any, expires time.Time) (string, error) {
	id := uuid.NewString()
	if err := b.write(ctx, id, data, expires); err != nil {
		return "", err
	}
	return id, nil
}

func (b *RedisBackend) Read(ctx context.Context, id string) (map[string]any, error) {
	raw, err := b.db.Get(ctx, b.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}
	return data, nil
}

func (b *RedisBackend) Update(ctx context.Context, id string, data map[string]any, expires time.Time) error {
	return b.write(ctx, id, data, expires)
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return b.db.Del(ctx, b.key(id)).Err()
}

func (b *RedisBackend) write(ctx context.Context, id string, data map[string]any, expires time.Time) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Join(ErrEncoding, err)
	}

	// Zero TTL means no expiration for SET.
	var ttl time.Duration
	if !expires.IsZero() {
		ttl = time.Until(expires)
		if ttl <= 0 {
			return b.Delete(ctx, id)
		}
	}

	return b.db.Set(ctx, b.key(id), raw, ttl).Err()
}

func (b *RedisBackend) key(id string) string {
	return b.prefix + id
}
