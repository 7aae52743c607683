package cache

import "context"

// Store is the key-addressed storage behind the recency buffer, turn counter,
// summary and derived context snapshot. Implementations must make Incr and
// IncrementWithReset atomic with respect to concurrent callers on one key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	LPush(ctx context.Context, key, value string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
	Incr(ctx context.Context, key string) (int64, error)

	// IncrementWithReset increments the counter at key and, when the new value
	// reaches threshold, resets it to zero in the same atomic step. Returns the
	// post-increment value and whether the threshold was crossed.
	IncrementWithReset(ctx context.Context, key string, threshold int64) (int64, bool, error)

	Close() error
}

// New creates a redis-backed store when configured, otherwise in-memory.
func New(ctx context.Context, redisURL string) (Store, error) {
	if redisURL == "" {
		return NewInMemoryStore(), nil
	}
	return NewRedisStore(ctx, redisURL)
}
