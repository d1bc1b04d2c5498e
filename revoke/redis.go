// Package revoke provides a Redis-backed token denylist. Entries are keyed
// by token id (jti) and expire together with the token itself, so the set
// stays bounded by the number of tokens revoked within one token lifetime.
package revoke

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "rvk"

// Redis denylists token ids in a Redis instance shared across server
// processes.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. prefix namespaces the keys; empty
// selects "rvk".
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Revoke denylists jti for ttl. A non-positive ttl is a no-op: the token is
// already past its natural expiry.
func (r *Redis) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti is currently denylisted.
func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) key(jti string) string {
	return r.prefix + ":" + jti
}
