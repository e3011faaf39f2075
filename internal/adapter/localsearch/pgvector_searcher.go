package localsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"agent-orchestrator/internal/domain"
)

// PgvectorSearcher retrieves document chunks by embedding similarity from a
// pgvector-backed table. The query text is encoded on every call; the cosine
// distance comes back as the initial score, smaller meaning closer.
type PgvectorSearcher struct {
	pool    *pgxpool.Pool
	encoder domain.VectorEncoder
}

// NewPgvectorSearcher creates a searcher over the given pool and encoder.
func NewPgvectorSearcher(pool *pgxpool.Pool, encoder domain.VectorEncoder) *PgvectorSearcher {
	return &PgvectorSearcher{pool: pool, encoder: encoder}
}

func (s *PgvectorSearcher) Search(ctx context.Context, query string, topK int) ([]domain.LocalItem, int64, error) {
	start := time.Now()

	embeddings, err := s.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, 0, fmt.Errorf("encoder returned no embedding")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT chunk_id, section, content, embedding <=> $1 AS distance
		FROM doc_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embeddings[0]), topK)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query doc chunks: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LocalItem, 0, topK)
	for rows.Next() {
		var item domain.LocalItem
		if err := rows.Scan(&item.ChunkID, &item.Section, &item.Text, &item.InitScore); err != nil {
			return nil, 0, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read chunk rows: %w", err)
	}

	return items, time.Since(start).Milliseconds(), nil
}
