package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ent0n29/amorine/internal/cache"
)

// ContextCache is the derived, refresh-on-write snapshot of the most
// relevant recent turns. Never the source of truth; always rebuilt from the
// similarity index.
type ContextCache struct {
	store cache.Store
}

func NewContextCache(store cache.Store) *ContextCache {
	return &ContextCache{store: store}
}

// Refresh overwrites the per-user snapshot.
func (c *ContextCache) Refresh(ctx context.Context, userID string, items []ContextItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode context snapshot: %w", err)
	}
	if err := c.store.Set(ctx, contextKey(userID), string(raw)); err != nil {
		return fmt.Errorf("%w: store context snapshot: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// Read returns the last successfully written snapshot, or empty when none
// exists or the payload does not decode.
func (c *ContextCache) Read(ctx context.Context, userID string) []ContextItem {
	raw, ok, err := c.store.Get(ctx, contextKey(userID))
	if err != nil {
		log.Printf("memory: context snapshot read failed for user %s: %v", userID, err)
		return nil
	}
	if !ok {
		return nil
	}
	var items []ContextItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("memory: dropping malformed context snapshot for user %s: %v", userID, err)
		return nil
	}
	return items
}
