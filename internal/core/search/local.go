package search

import (
	"context"
	"fmt"
	"sort"

	"nutrimori-ai/internal/core/corpus"
	"nutrimori-ai/internal/pkg/common"

	"go.uber.org/zap"
)

type indexItem struct {
	id             int64
	name           string
	normalizedName string
	vec            []float32
}

// LocalIndex is the in-process vector index. Corpus embeddings are
// L2-normalized at build time and never mutated afterwards, so concurrent
// searches need no locking.
type LocalIndex struct {
	embedder Embedder
	items    []indexItem
}

// NewLocalIndex builds the index from corpus records carrying embeddings
func NewLocalIndex(store *corpus.Store, embedder Embedder) (*LocalIndex, error) {
	records := store.All()

	items := make([]indexItem, 0, len(records))
	skipped := 0
	dim := 0
	for i := range records {
		rec := &records[i]
		if len(rec.Embedding) == 0 {
			skipped++
			continue
		}
		if dim == 0 {
			dim = len(rec.Embedding)
		} else if len(rec.Embedding) != dim {
			return nil, fmt.Errorf("corpus embedding dimension mismatch for food %d: got %d, want %d", rec.ID, len(rec.Embedding), dim)
		}

		vec := make([]float32, len(rec.Embedding))
		copy(vec, rec.Embedding)
		NormalizeL2(vec)

		items = append(items, indexItem{
			id:             rec.ID,
			name:           rec.Name,
			normalizedName: rec.NormalizedName,
			vec:            vec,
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no corpus records carry embeddings; rebuild the corpus with the embedding pipeline")
	}
	if skipped > 0 {
		common.LogWarn("corpus records without embeddings skipped",
			zap.Int("skipped", skipped),
			zap.Int("indexed", len(items)),
		)
	}

	common.LogInfo("local vector index ready",
		zap.Int("items", len(items)),
		zap.Int("dimension", dim),
	)

	return &LocalIndex{embedder: embedder, items: items}, nil
}

// Search embeds text and returns the k nearest corpus entries by cosine
// similarity
func (idx *LocalIndex) Search(ctx context.Context, text string, k int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query, err := idx.embedder.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches := make([]Match, 0, len(idx.items))
	for i := range idx.items {
		item := &idx.items[i]
		matches = append(matches, Match{
			FoodID:         item.id,
			Name:           item.name,
			NormalizedName: item.normalizedName,
			Similarity:     Dot(query, item.vec),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
