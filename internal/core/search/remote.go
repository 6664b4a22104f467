package search

import (
	"context"
	"database/sql"
	"fmt"

	"nutrimori-ai/internal/pkg/common"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// PgVectorIndex queries a Postgres/pgvector database through the
// match_foods SQL function. The query embedding is computed locally and
// shipped to the database; ranking happens server-side.
type PgVectorIndex struct {
	db             *sql.DB
	embedder       Embedder
	matchThreshold float64
}

// NewPgVectorIndex opens the database connection and verifies it
func NewPgVectorIndex(dsn string, embedder Embedder, matchThreshold float64) (*PgVectorIndex, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	common.LogInfo("pgvector index ready",
		zap.Float64("match_threshold", matchThreshold),
	)

	return &PgVectorIndex{
		db:             db,
		embedder:       embedder,
		matchThreshold: matchThreshold,
	}, nil
}

// Search embeds text and runs the match_foods similarity query
func (idx *PgVectorIndex) Search(ctx context.Context, text string, k int) ([]Match, error) {
	query, err := idx.embedder.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := idx.db.QueryContext(ctx,
		`SELECT food_id, nama, nama_clean, similarity, nutrition_data FROM match_foods($1, $2, $3)`,
		pgvector.NewVector(query), k, idx.matchThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("match_foods query failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var nutrientsJSON []byte
		if err := rows.Scan(&m.FoodID, &m.Name, &m.NormalizedName, &m.Similarity, &nutrientsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		if len(nutrientsJSON) > 0 {
			if err := common.ParseJSONBytes(nutrientsJSON, &m.Nutrients); err != nil {
				common.LogWarn("malformed nutrition snapshot, falling back to corpus lookup",
					zap.Int64("food_id", m.FoodID),
					zap.Error(err),
				)
				m.Nutrients = nil
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match_foods rows failed: %w", err)
	}

	return matches, nil
}

// Close closes the database connection
func (idx *PgVectorIndex) Close() error {
	return idx.db.Close()
}
