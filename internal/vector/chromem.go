package vector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemIndex keeps embedded turns in chromem-go, a pure Go in-process
// vector database. Each user gets their own collection so queries never
// cross user boundaries.
type ChromemIndex struct {
	db          *chromem.DB
	dim         int
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

func NewChromemIndex(dim int) *ChromemIndex {
	return &ChromemIndex{
		db:          chromem.NewDB(),
		dim:         dim,
		collections: make(map[string]*chromem.Collection),
	}
}

func (x *ChromemIndex) collection(userID string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, ok := x.collections[userID]
	x.mu.RUnlock()
	if ok {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if col, ok := x.collections[userID]; ok {
		return col, nil
	}

	col, err := x.db.CreateCollection("user_"+userID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	x.collections[userID] = col
	return col, nil
}

func (x *ChromemIndex) Upsert(ctx context.Context, entry Entry) error {
	col, err := x.collection(entry.UserID)
	if err != nil {
		return err
	}
	doc := chromem.Document{
		ID:        entry.ID,
		Content:   entry.Content,
		Embedding: entry.Vector,
		Metadata: map[string]string{
			"user_id":   entry.UserID,
			"timestamp": strconv.FormatInt(entry.Timestamp, 10),
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

func (x *ChromemIndex) Query(ctx context.Context, userID string, vec []float32, topK int) ([]Match, error) {
	col, err := x.collection(userID)
	if err != nil {
		return nil, err
	}
	n := col.Count()
	if n == 0 {
		return nil, nil
	}
	if topK > n {
		topK = n
	}
	results, err := col.QueryEmbedding(ctx, vec, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			ID:        r.ID,
			Content:   r.Content,
			Timestamp: parseTimestamp(r.Metadata["timestamp"]),
			Score:     r.Similarity,
		})
	}
	return matches, nil
}

// List fetches every entry's metadata by querying with a neutral unit vector
// sized to the stored embeddings. chromem has no scan API.
func (x *ChromemIndex) List(ctx context.Context, userID string) ([]Match, error) {
	col, err := x.collection(userID)
	if err != nil {
		return nil, err
	}
	n := col.Count()
	if n == 0 {
		return nil, nil
	}
	results, err := col.QueryEmbedding(ctx, NeutralVector(x.dim), n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem list: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			ID:        r.ID,
			Content:   r.Content,
			Timestamp: parseTimestamp(r.Metadata["timestamp"]),
		})
	}
	return matches, nil
}

func (x *ChromemIndex) Delete(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	col, err := x.collection(userID)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("chromem delete: %w", err)
	}
	return nil
}

func (x *ChromemIndex) Close() error { return nil }

func parseTimestamp(raw string) int64 {
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// NeutralVector is the representative query used when no fresh text exists.
// The single unit component keeps it valid under cosine normalization.
func NeutralVector(dim int) []float32 {
	vec := make([]float32, dim)
	if dim > 0 {
		vec[0] = 1
	}
	return vec
}