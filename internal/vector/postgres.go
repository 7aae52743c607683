package vector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// PostgresIndex persists embedded turns in PostgreSQL with pgvector.
type PostgresIndex struct {
	pool *pgxpool.Pool
}

func NewPostgresIndex(ctx context.Context, databaseURL string, dim int) (*PostgresIndex, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool, dim); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresIndex{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool, dim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS semantic_turns (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			ts BIGINT NOT NULL,
			embedding vector(%d) NOT NULL
		);`, dim),
		`CREATE INDEX IF NOT EXISTS idx_semantic_turns_user_ts ON semantic_turns (user_id, ts);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (x *PostgresIndex) Upsert(ctx context.Context, entry Entry) error {
	_, err := x.pool.Exec(ctx,
		`INSERT INTO semantic_turns (id, user_id, content, ts, embedding)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, ts = EXCLUDED.ts, embedding = EXCLUDED.embedding`,
		entry.ID,
		entry.UserID,
		entry.Content,
		entry.Timestamp,
		pgvector.NewVector(entry.Vector),
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

func (x *PostgresIndex) Query(ctx context.Context, userID string, vec []float32, topK int) ([]Match, error) {
	if topK < 1 {
		return nil, nil
	}

	rows, err := x.pool.Query(ctx,
		`SELECT id, content, ts, 1 - (embedding <=> $2) AS score
		 FROM semantic_turns WHERE user_id = $1
		 ORDER BY embedding <=> $2 LIMIT $3`,
		userID,
		pgvector.NewVector(vec),
		topK,
	)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows, true)
}

func (x *PostgresIndex) List(ctx context.Context, userID string) ([]Match, error) {
	rows, err := x.pool.Query(ctx,
		`SELECT id, content, ts FROM semantic_turns WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows, false)
}

func (x *PostgresIndex) Delete(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := x.pool.Exec(ctx,
		`DELETE FROM semantic_turns WHERE user_id = $1 AND id = ANY($2)`,
		userID,
		ids,
	)
	if err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

func (x *PostgresIndex) Close() error {
	x.pool.Close()
	return nil
}

func scanMatches(rows pgx.Rows, withScore bool) ([]Match, error) {
	var matches []Match
	for rows.Next() {
		var m Match
		var err error
		if withScore {
			var score float64
			err = rows.Scan(&m.ID, &m.Content, &m.Timestamp, &score)
			m.Score = float32(score)
		} else {
			err = rows.Scan(&m.ID, &m.Content, &m.Timestamp)
		}
		if err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}
	return matches, nil
}
