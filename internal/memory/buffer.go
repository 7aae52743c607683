package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ent0n29/amorine/internal/cache"
)

// Buffer is the bounded, newest-first recency buffer of raw turns.
type Buffer struct {
	store cache.Store
	cap   int
}

func NewBuffer(store cache.Store, cap int) *Buffer {
	return &Buffer{store: store, cap: cap}
}

// Append prepends the turn and trims the list back to capacity. The trim is
// best effort: a failed trim leaves the buffer transiently over capacity
// until the next successful append.
func (b *Buffer) Append(ctx context.Context, userID string, turn Turn) error {
	raw, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}
	key := messagesKey(userID)
	if err := b.store.LPush(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("%w: append turn: %v", ErrUpstreamUnavailable, err)
	}
	if err := b.store.LTrim(ctx, key, 0, int64(b.cap-1)); err != nil {
		log.Printf("memory: buffer trim failed for user %s: %v", userID, err)
	}
	return nil
}

// Read returns the newest-first slice [from, to] (inclusive, zero-based).
// Entries that fail to decode are dropped, never surfaced as failures.
func (b *Buffer) Read(ctx context.Context, userID string, from, to int64) ([]Turn, error) {
	raws, err := b.store.LRange(ctx, messagesKey(userID), from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: read turns: %v", ErrUpstreamUnavailable, err)
	}

	turns := make([]Turn, 0, len(raws))
	for _, raw := range raws {
		var t Turn
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			log.Printf("memory: dropping malformed turn for user %s: %v", userID, err)
			continue
		}
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Recent returns up to n most recent turns in chronological order, oldest
// of the n first.
func (b *Buffer) Recent(ctx context.Context, userID string, n int) ([]Turn, error) {
	turns, err := b.Read(ctx, userID, 0, int64(n-1))
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
