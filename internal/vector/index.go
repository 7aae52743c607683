package vector

import "context"

// Entry is one embedded turn owned by the semantic index.
type Entry struct {
	ID        string
	UserID    string
	Content   string
	Timestamp int64 // unix milliseconds
	Vector    []float32
}

// Match is a query hit. Score is cosine similarity in [0,1]; List results
// carry a zero score.
type Match struct {
	ID        string
	Content   string
	Timestamp int64
	Score     float32
}

// Index is the similarity store behind the semantic index manager.
type Index interface {
	Upsert(ctx context.Context, entry Entry) error
	Query(ctx context.Context, userID string, vec []float32, topK int) ([]Match, error)
	// List returns the metadata of every entry for the user, unordered.
	List(ctx context.Context, userID string) ([]Match, error)
	Delete(ctx context.Context, userID string, ids []string) error
	Close() error
}

// New creates a pgvector-backed index when a database is configured,
// otherwise an embedded chromem index.
func New(ctx context.Context, databaseURL string, dim int) (Index, error) {
	if databaseURL == "" {
		return NewChromemIndex(dim), nil
	}
	return NewPostgresIndex(ctx, databaseURL, dim)
}
