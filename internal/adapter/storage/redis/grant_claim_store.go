package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// GrantClaimStore implements ports.GrantClaimStore using Redis SET NX. It is
// the fast-path daily-grant marker; the ledger key stays authoritative.
type GrantClaimStore struct {
	client *goredis.Client
	prefix string
}

// NewGrantClaimStore creates a new Redis-backed grant claim store.
func NewGrantClaimStore(client *goredis.Client) *GrantClaimStore {
	return &GrantClaimStore{
		client: client,
		prefix: "grant:",
	}
}

// CheckAndSet atomically records the claim marker for (owner, day).
// Returns true if the claim is new for that day, false if already claimed.
func (s *GrantClaimStore) CheckAndSet(ctx context.Context, owner string, day string, ttl time.Duration) (bool, error) {
	key := s.prefix + owner + ":" + day
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — grant was already claimed today
			return false, nil
		}
		return false, fmt.Errorf("redis grant claim check: %w", err)
	}
	return result == "OK", nil
}
