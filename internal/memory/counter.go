package memory

import (
	"context"
	"fmt"

	"github.com/ent0n29/amorine/internal/cache"
)

// Counter fires the summarization trigger every threshold user turns.
// Increment-and-reset is one atomic step at the store, so concurrent turns
// for the same user cannot double-fire a crossing.
type Counter struct {
	store     cache.Store
	threshold int64
}

func NewCounter(store cache.Store, threshold int) *Counter {
	return &Counter{store: store, threshold: int64(threshold)}
}

// Increment returns the post-increment count and whether this call crossed
// the threshold. On a crossing the counter is already reset to zero.
func (c *Counter) Increment(ctx context.Context, userID string) (int64, bool, error) {
	count, triggered, err := c.store.IncrementWithReset(ctx, counterKey(userID), c.threshold)
	if err != nil {
		return 0, false, fmt.Errorf("%w: increment turn counter: %v", ErrUpstreamUnavailable, err)
	}
	return count, triggered, nil
}
