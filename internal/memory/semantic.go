package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ent0n29/amorine/internal/embedding"
	"github.com/ent0n29/amorine/internal/reliability"
	"github.com/ent0n29/amorine/internal/vector"
)

// SemanticIndexer maintains the capped per-user window of embedded turns
// inside the similarity index.
type SemanticIndexer struct {
	index    vector.Index
	embedder embedding.Embedder
	cap      int
	topK     int
	retries  int
	backoff  time.Duration

	seq atomic.Int64
}

func NewSemanticIndexer(index vector.Index, embedder embedding.Embedder, cap, topK, retries int, backoff time.Duration) *SemanticIndexer {
	return &SemanticIndexer{
		index:    index,
		embedder: embedder,
		cap:      cap,
		topK:     topK,
		retries:  retries,
		backoff:  backoff,
	}
}

// Store embeds the text, upserts it, evicts any entries beyond the cap, and
// returns the top neighbors of the new vector for the context cache.
// Eviction failures are logged, not returned: the next Store re-evaluates
// the cap and re-trims.
func (s *SemanticIndexer) Store(ctx context.Context, userID, text string, timestamp int64) ([]ContextItem, error) {
	var vec []float32
	err := reliability.Do(ctx, s.retries, s.backoff, 8*s.backoff, func(ctx context.Context) error {
		var eErr error
		vec, eErr = s.embedder.Embed(ctx, text)
		return eErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	entry := vector.Entry{
		// The sequence suffix keeps ids unique when two turns share a
		// timestamp. Zero-padded so lexicographic id order matches
		// insertion order during eviction.
		ID:        fmt.Sprintf("%s-%d-%09d", userID, timestamp, s.seq.Add(1)),
		UserID:    userID,
		Content:   text,
		Timestamp: timestamp,
		Vector:    vec,
	}
	if err := s.index.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: upsert entry: %v", ErrUpstreamUnavailable, err)
	}

	if err := s.evict(ctx, userID); err != nil {
		log.Printf("memory: semantic eviction failed for user %s: %v", userID, err)
	}

	return s.query(ctx, userID, vec)
}

// Candidates returns the current top neighbors for the user against the
// neutral query vector, without recording anything.
func (s *SemanticIndexer) Candidates(ctx context.Context, userID string) ([]ContextItem, error) {
	return s.query(ctx, userID, vector.NeutralVector(s.embedder.Dimension()))
}

func (s *SemanticIndexer) query(ctx context.Context, userID string, vec []float32) ([]ContextItem, error) {
	var matches []vector.Match
	err := reliability.Do(ctx, s.retries, s.backoff, 8*s.backoff, func(ctx context.Context) error {
		var qErr error
		matches, qErr = s.index.Query(ctx, userID, vec, s.topK)
		return qErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query neighbors: %v", ErrUpstreamUnavailable, err)
	}

	items := make([]ContextItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, ContextItem{Content: m.Content, Timestamp: m.Timestamp})
	}
	return items, nil
}

func (s *SemanticIndexer) evict(ctx context.Context, userID string) error {
	all, err := s.index.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	excess := len(all) - s.cap
	if excess <= 0 {
		return nil
	}

	// Victims are the oldest entries; ids break timestamp ties so the
	// choice is deterministic.
	sort.Slice(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp < all[j].Timestamp
		}
		return all[i].ID < all[j].ID
	})
	ids := make([]string, 0, excess)
	for _, m := range all[:excess] {
		ids = append(ids, m.ID)
	}
	if err := s.index.Delete(ctx, userID, ids); err != nil {
		return fmt.Errorf("delete %d entries: %w", len(ids), err)
	}
	return nil
}
