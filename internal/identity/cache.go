package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedDirectory memoizes lookups of another Directory in Redis.
// Negative results are cached too. Cache failures never fail a lookup.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewCachedDirectory caches lookups from next in Redis for ttl.
func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{next: next, client: client, ttl: ttl}
}

func cacheKey(requestingUser, email string) string {
	return "identity:" + requestingUser + ":" + NormalizeEmail(email)
}

// LookupUserByEmail serves from Redis when it can and falls back to the wrapped directory.
func (c *CachedDirectory) LookupUserByEmail(ctx context.Context, requestingUser, email string) (*User, error) {
	if requestingUser == "" {
		return nil, ErrRequestingUserRequired
	}
	key := cacheKey(requestingUser, email)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var u User
		if jerr := json.Unmarshal(raw, &u); jerr == nil {
			return &u, nil
		}
		slog.Warn("identity cache entry corrupt", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.Warn("identity cache read failed", "err", err)
	}

	u, err := c.next.LookupUserByEmail(ctx, requestingUser, email)
	if err != nil {
		return nil, err
	}
	if data, jerr := json.Marshal(u); jerr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			slog.Warn("identity cache write failed", "err", serr)
		}
	}
	return u, nil
}
